package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/blackcoin-project/blkd/chainhash"
)

// ProtocolVersion gates the optional PoS-marker flags field on the wire,
// mirroring the way the teacher's wire.BlockHeader conditions fields on
// negotiated protocol capabilities (e.g. MaxNumPrevBlocks-era fields).
type ProtocolVersion uint32

// PosMarkerVersion is the minimum negotiated protocol version at which
// peers exchange the header's Flags field, per spec.md §3/§6.
const PosMarkerVersion ProtocolVersion = 70002

// HeaderFlag values stored in BlockHeader.Flags.
const (
	// FlagProofOfStake marks a header as belonging to a proof-of-stake
	// block.
	FlagProofOfStake uint32 = 1 << 0
)

// BaseBlockHeaderPayload is the number of bytes a block header occupies
// on the wire, not counting the out-of-band Flags field: four int32/
// uint32 fields (16 bytes) plus two 32-byte hashes.
const BaseBlockHeaderPayload = 16 + 2*chainhash.HashSize

// BlockHeader defines information about a block, per spec.md §3.
//
// BlockHeader is immutable once hashed: Flags is serialized only when
// not hashing and only when the negotiated protocol version supports the
// PoS marker (see Serialize vs SerializeForHash).
type BlockHeader struct {
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
	Flags      uint32
}

// IsNull reports whether bits==0, the null-header marker named in
// spec.md §3.
func (h *BlockHeader) IsNull() bool {
	return h.Bits == 0
}

// IsProofOfStake reports whether the PoS marker bit is set.
func (h *BlockHeader) IsProofOfStake() bool {
	return h.Flags&FlagProofOfStake != 0
}

// BlockHash computes the block identifier: SHA256d of the header exactly
// as it appears when hashing — i.e. without the Flags field, per
// spec.md §3's "flags field is NOT included when hashing" invariant.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = h.serialize(&buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Serialize writes the full wire representation of the header, including
// Flags when peerVersion negotiates the PoS marker.
func (h *BlockHeader) Serialize(w io.Writer, peerVersion ProtocolVersion) error {
	if err := h.serialize(w); err != nil {
		return err
	}
	if peerVersion >= PosMarkerVersion {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], h.Flags)
		_, err := w.Write(buf[:])
		return err
	}
	return nil
}

func (h *BlockHeader) serialize(w io.Writer) error {
	buf := make([]byte, BaseBlockHeaderPayload)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Version))
	copy(buf[4:4+chainhash.HashSize], h.PrevBlock[:])
	offset := 4 + chainhash.HashSize
	copy(buf[offset:offset+chainhash.HashSize], h.MerkleRoot[:])
	offset += chainhash.HashSize
	binary.LittleEndian.PutUint32(buf[offset:offset+4], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[offset+4:offset+8], h.Bits)
	binary.LittleEndian.PutUint32(buf[offset+8:offset+12], h.Nonce)
	_, err := w.Write(buf)
	return err
}

// Deserialize reads a header from r. peerVersion indicates whether the
// caller negotiated the PoS marker and so whether a trailing Flags field
// is present on the wire.
func (h *BlockHeader) Deserialize(r io.Reader, peerVersion ProtocolVersion) error {
	buf := make([]byte, BaseBlockHeaderPayload)
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	h.Version = int32(binary.LittleEndian.Uint32(buf[0:4]))
	copy(h.PrevBlock[:], buf[4:4+chainhash.HashSize])
	offset := 4 + chainhash.HashSize
	copy(h.MerkleRoot[:], buf[offset:offset+chainhash.HashSize])
	offset += chainhash.HashSize
	h.Timestamp = binary.LittleEndian.Uint32(buf[offset : offset+4])
	h.Bits = binary.LittleEndian.Uint32(buf[offset+4 : offset+8])
	h.Nonce = binary.LittleEndian.Uint32(buf[offset+8 : offset+12])

	if peerVersion >= PosMarkerVersion {
		var flagBuf [4]byte
		if _, err := io.ReadFull(r, flagBuf[:]); err != nil {
			return err
		}
		h.Flags = binary.LittleEndian.Uint32(flagBuf[:])
	}
	return nil
}
