package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// ReadCompactSize reads a variable length integer from r using the
// bitcoin-family CompactSize encoding and returns it as a uint64.
func ReadCompactSize(r io.Reader) (uint64, error) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, err
	}

	switch prefix[0] {
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(buf[:])), nil
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(buf[:])), nil
	default:
		return uint64(prefix[0]), nil
	}
}

// WriteCompactSize writes val to w using the CompactSize encoding.
func WriteCompactSize(w io.Writer, val uint64) error {
	if val < 0xfd {
		_, err := w.Write([]byte{byte(val)})
		return err
	}
	if val <= 0xffff {
		buf := make([]byte, 3)
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(val))
		_, err := w.Write(buf)
		return err
	}
	if val <= 0xffffffff {
		buf := make([]byte, 5)
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(val))
		_, err := w.Write(buf)
		return err
	}
	buf := make([]byte, 9)
	buf[0] = 0xff
	binary.LittleEndian.PutUint64(buf[1:], val)
	_, err := w.Write(buf)
	return err
}

// ReadVarBytes reads a CompactSize-prefixed byte slice, rejecting anything
// larger than maxAllowed to bound allocation from untrusted input.
func ReadVarBytes(r io.Reader, maxAllowed uint64) ([]byte, error) {
	count, err := ReadCompactSize(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, errors.Errorf("var bytes count %d exceeds max allowed %d", count, maxAllowed)
	}
	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteVarBytes writes a CompactSize-prefixed byte slice.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteCompactSize(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
