package validate

import (
	"math/big"
	"testing"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/chaincfg/difficulty"
	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/wire"
)

// mineNonce finds a nonce that makes h's hash satisfy its own Bits
// target, the same search header_test.go uses, since regtest's
// 0x207fffff target is easy but not trivial (roughly half the hash
// space).
func mineNonce(t *testing.T, h *wire.BlockHeader, powLimit *big.Int) {
	t.Helper()
	for nonce := uint32(0); nonce < 256; nonce++ {
		h.Nonce = nonce
		hash := h.BlockHash()
		if difficulty.CheckProofOfWork(hash[:], h.Bits, powLimit) {
			return
		}
	}
	t.Fatalf("did not find a passing nonce within 256 tries")
}

func coinbaseTx() *wire.MsgTx {
	return &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{
			{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}},
		},
		TxOut: []*wire.TxOut{
			{Value: 50, PkScript: []byte{0x51}},
		},
	}
}

func buildPoWBlock(t *testing.T) *wire.MsgBlock {
	t.Helper()
	params := regtestParams(t)
	cb := coinbaseTx()
	b := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   1,
			Timestamp: 5000,
			Bits:      0x207fffff,
		},
		Txs: []*wire.MsgTx{cb},
	}
	b.Header.MerkleRoot = MerkleRoot([]chainhash.Hash{cb.TxHash()})
	mineNonce(t, &b.Header, params.PowLimit)
	return b
}

func TestCheckBlockAcceptsWellFormedPoWBlock(t *testing.T) {
	b := buildPoWBlock(t)
	if err := CheckBlock(b, nil, nil, regtestParams(t), 10000, nil, nil); err != nil {
		t.Errorf("expected a well-formed single-coinbase PoW block to pass, got %v", err)
	}
}

func TestCheckBlockRejectsBadMerkleRoot(t *testing.T) {
	b := buildPoWBlock(t)
	b.Header.MerkleRoot = chainhash.Hash{0x01}
	if err := CheckBlock(b, nil, nil, regtestParams(t), 10000, nil, nil); err == nil {
		t.Errorf("expected a mismatched merkle root to be rejected")
	}
}

func TestCheckBlockRejectsEmptyTxList(t *testing.T) {
	b := buildPoWBlock(t)
	b.Txs = nil
	if err := CheckBlock(b, nil, nil, regtestParams(t), 10000, nil, nil); err == nil {
		t.Errorf("expected an empty transaction list to be rejected")
	}
}

func TestCheckBlockRejectsFirstTxNotCoinbase(t *testing.T) {
	b := buildPoWBlock(t)
	notCoinbase := coinbaseTx()
	notCoinbase.TxIn[0].PreviousOutPoint.Index = 0 // no longer IsNull
	b.Txs[0] = notCoinbase
	b.Header.MerkleRoot = MerkleRoot([]chainhash.Hash{notCoinbase.TxHash()})
	mineNonce(t, &b.Header, regtestParams(t).PowLimit)
	if err := CheckBlock(b, nil, nil, regtestParams(t), 10000, nil, nil); err == nil {
		t.Errorf("expected a block whose first tx is not a coinbase to be rejected")
	}
}

func TestCheckBlockRejectsPoWPastCutoffHeight(t *testing.T) {
	params := *regtestParams(t)
	params.LastPoWBlock = 0

	prev := &blockchain.BlockIndex{Height: 0, BlockTime: 1000, Bits: 0x207fffff}

	cb := coinbaseTx()
	b := &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:   1,
			Timestamp: 1001,
			Bits:      0x207fffff,
		},
		Txs: []*wire.MsgTx{cb},
	}
	b.Header.MerkleRoot = MerkleRoot([]chainhash.Hash{cb.TxHash()})
	mineNonce(t, &b.Header, params.PowLimit)

	if err := CheckBlock(b, prev, nil, &params, 10000, nil, nil); err == nil {
		t.Errorf("expected a PoW block past LastPoWBlock to be rejected")
	}
}

func TestCheckBlockRejectsUnexpectedCoinstakeInPoWBlock(t *testing.T) {
	b := buildPoWBlock(t)
	coinstake := &wire.MsgTx{
		TxIn:  []*wire.TxIn{{PreviousOutPoint: wire.OutPoint{Index: 0}}},
		TxOut: []*wire.TxOut{{Value: 0}, {Value: 10, PkScript: []byte{0x51}}},
	}
	b.Txs = append(b.Txs, coinstake)
	b.Header.MerkleRoot = MerkleRoot([]chainhash.Hash{b.Txs[0].TxHash(), coinstake.TxHash()})
	mineNonce(t, &b.Header, regtestParams(t).PowLimit)

	if err := CheckBlock(b, nil, nil, regtestParams(t), 10000, nil, nil); err == nil {
		t.Errorf("expected a coinstake transaction inside a PoW block to be rejected")
	}
}
