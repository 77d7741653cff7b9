package blockchain

import "github.com/blackcoin-project/blkd/wire"

// Coin is the UTXO data model named in spec.md §3: keyed by OutPoint,
// created when the containing block is connected and destroyed when a
// later connected block spends it. The persistence engine that owns the
// UTXO set is an external collaborator (spec.md §1); consensus code only
// reads through the CoinView interface below.
type Coin struct {
	Amount      int64
	PkScript    []byte
	Height      int32
	IsCoinBase  bool
	IsCoinStake bool

	// BlockFromTime is the timestamp of the block that contains this
	// output's transaction, the kernel formula's block_from_time.
	BlockFromTime int64

	// TxTime is the owning transaction's own Time field, the kernel
	// formula's prev_tx_time_or_0.
	TxTime uint32
}

// CoinView is the read-only UTXO query surface consensus code consumes,
// per spec.md §1: "the block/UTXO persistence engine... only its query
// surface is consumed".
type CoinView interface {
	FetchCoin(op wire.OutPoint) (*Coin, bool)
}
