package wire

import (
	"io"

	"github.com/pkg/errors"
)

// MaxTxPerBlock bounds allocation when decoding a block's transaction
// vector from an untrusted byte stream.
const MaxTxPerBlock = 1_000_000

// MaxBlockSigSize bounds the coinstake-proving block signature appended
// to PoS blocks, per spec.md §3.
const MaxBlockSigSize = 100_000

// MsgBlock defines a block, per spec.md §3: header + ordered txs (at
// least one) + an optional block signature used only by PoS blocks.
type MsgBlock struct {
	Header   BlockHeader
	Txs      []*MsgTx
	BlockSig []byte
}

// CoinbaseTx returns the block's coinbase transaction (always index 0).
func (b *MsgBlock) CoinbaseTx() *MsgTx {
	if len(b.Txs) == 0 {
		return nil
	}
	return b.Txs[0]
}

// CoinstakeTx returns the block's coinstake transaction (index 1) when
// the header's PoS marker is set, or nil for a PoW block.
func (b *MsgBlock) CoinstakeTx() *MsgTx {
	if !b.Header.IsProofOfStake() || len(b.Txs) < 2 {
		return nil
	}
	return b.Txs[1]
}

// Serialize encodes the block: header, CompactSize tx count + vector,
// then a CompactSize-length-prefixed block signature.
func (b *MsgBlock) Serialize(w io.Writer, peerVersion ProtocolVersion) error {
	if err := b.Header.Serialize(w, peerVersion); err != nil {
		return err
	}
	if err := WriteCompactSize(w, uint64(len(b.Txs))); err != nil {
		return err
	}
	for _, tx := range b.Txs {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}
	return WriteVarBytes(w, b.BlockSig)
}

// Deserialize decodes a block from r.
func (b *MsgBlock) Deserialize(r io.Reader, peerVersion ProtocolVersion) error {
	// One shared buffered reader, so bytes MsgTx.Deserialize reads ahead
	// while peeking for the segwit marker stay available to the next tx.
	r = bufioReaderOf(r)
	if err := b.Header.Deserialize(r, peerVersion); err != nil {
		return err
	}
	count, err := ReadCompactSize(r)
	if err != nil {
		return err
	}
	if count > MaxTxPerBlock {
		return errors.Errorf("too many transactions in block: %d", count)
	}
	b.Txs = make([]*MsgTx, count)
	for i := range b.Txs {
		tx := &MsgTx{}
		if err := tx.Deserialize(r); err != nil {
			return err
		}
		b.Txs[i] = tx
	}
	sig, err := ReadVarBytes(r, MaxBlockSigSize)
	if err != nil {
		return err
	}
	b.BlockSig = sig
	return nil
}
