package wire

import (
	"encoding/binary"
	"io"

	"github.com/blackcoin-project/blkd/chainhash"
)

// OutPoint defines a bitcoin-family data type that is used to track
// previous transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new bitcoin transaction outpoint.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{Hash: *hash, Index: index}
}

// IsNull returns whether or not the outpoint refers to a null coinbase
// input, per spec.md §3's vin[0].prev.is_null() coinbase test.
func (o OutPoint) IsNull() bool {
	return o.Index == maxOutPointIndex && o.Hash.IsZero()
}

const maxOutPointIndex = 0xffffffff

func readOutPoint(r io.Reader, op *OutPoint) error {
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return err
	}
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	op.Index = binary.LittleEndian.Uint32(buf[:])
	return nil
}

func writeOutPoint(w io.Writer, op *OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], op.Index)
	_, err := w.Write(buf[:])
	return err
}
