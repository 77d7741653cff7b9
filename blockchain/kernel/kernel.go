// Package kernel realizes the KernelValidator component (spec.md §4.3):
// the proof-of-stake kernel hash test, stake modifier derivation, and the
// timestamp and maturity rules a coinstake's kernel input must satisfy.
//
// Grounded on original_source/src/pos.h's function signatures
// (CheckCoinStakeTimestamp, CheckStakeBlockTimestamp, CheckKernel,
// CheckStakeKernelHash, CheckProofOfStake, CStakeCache, CacheKernel) for
// exact semantics the distilled spec leaves implicit, and on the
// teacher's domain/consensus/ruleerrors typed-error shape for the error
// family in errors.go.
package kernel

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/chaincfg/difficulty"
	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/wire"
)

func leUint32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

// CheckCoinstakeTimestamp reports whether a coinstake's own Time field is
// consistent with its containing block's header Time, per spec.md §4.3:
// before V2 the two must simply match; from V2 on the transaction time
// must additionally satisfy the stake timestamp mask.
func CheckCoinstakeTimestamp(params *chaincfg.Params, blockTime int64, txTime uint32) bool {
	if !params.IsV2(blockTime) {
		return blockTime == int64(txTime)
	}
	return blockTime == int64(txTime) && txTime&params.StakeTimestampMask == 0
}

// CheckStakeBlockTimestamp reports whether a PoS block header's own
// timestamp satisfies the stake timestamp mask.
func CheckStakeBlockTimestamp(params *chaincfg.Params, blockTime int64) bool {
	return uint32(blockTime)&params.StakeTimestampMask == 0
}

// kernelHash computes H = SHA256d(modifier ‖ u32(blockFromTime) ‖
// u32(prevTxTime) ‖ outpoint.txid ‖ u32(outpoint.vout) ‖ u32(tryTime)),
// the kernel hash formula of spec.md §4.3.
func kernelHash(modifier chainhash.Hash, blockFromTime int64, prevTxTime uint32, outpoint wire.OutPoint, tryTime uint32) chainhash.Hash {
	w := chainhash.NewHashWriter()
	w.InfallibleWrite(modifier[:])
	w.InfallibleWrite(leUint32(uint32(blockFromTime)))
	w.InfallibleWrite(leUint32(prevTxTime))
	w.InfallibleWrite(outpoint.Hash[:])
	w.InfallibleWrite(leUint32(outpoint.Index))
	w.InfallibleWrite(leUint32(tryTime))
	return w.Finalize()
}

// CheckStakeKernelHash reports whether the kernel built from the given
// inputs satisfies bits' target once divided by the staked amount, per
// spec.md §4.3: arith_u256(H) / amount <= target(bits).
func CheckStakeKernelHash(pindexPrev *blockchain.BlockIndex, bits uint32, blockFromTime int64, amount int64, outpoint wire.OutPoint, tryTime uint32, prevTxTime uint32) bool {
	if amount <= 0 {
		return false
	}
	modifier := pindexPrev.StakeModifier
	h := kernelHash(modifier, blockFromTime, prevTxTime, outpoint, tryTime)

	target := difficulty.CompactToBig(bits)
	hashNum := chainhash.HashToBig(&h)
	quotient := new(big.Int).Div(hashNum, big.NewInt(amount))
	return quotient.Cmp(target) <= 0
}

// CacheEntry is the StakeCache value named in spec.md §3: the origin
// block's timestamp and the output's amount, enough to re-run
// CheckStakeKernelHash without a fresh CoinView lookup.
type CacheEntry struct {
	BlockFromTime int64
	Amount        int64
	TxTime        uint32
}

// Cache is the process-wide, per-search StakeCache of spec.md §3,
// grounded directly on original_source/src/pos.h's
// map<COutPoint, CStakeCache>.
type Cache map[wire.OutPoint]CacheEntry

// CacheKernel populates cache[prevout] from coins if not already
// present, mirroring original_source/src/pos.h's CacheKernel.
func CacheKernel(cache Cache, prevout wire.OutPoint, coins blockchain.CoinView) {
	if _, ok := cache[prevout]; ok {
		return
	}
	coin, ok := coins.FetchCoin(prevout)
	if !ok {
		return
	}
	cache[prevout] = CacheEntry{
		BlockFromTime: coin.BlockFromTime,
		Amount:        coin.Amount,
		TxTime:        coin.TxTime,
	}
}

// CheckKernel locates the staked UTXO (via cache when available,
// otherwise coins) and its origin block, then runs CheckStakeKernelHash
// against it, per spec.md §4.3's check_kernel.
func CheckKernel(pindexPrev *blockchain.BlockIndex, bits uint32, tryTime uint32, outpoint wire.OutPoint, coins blockchain.CoinView, cache Cache) (bool, error) {
	var entry CacheEntry
	if cache != nil {
		if cached, ok := cache[outpoint]; ok {
			entry = cached
		} else {
			coin, ok := coins.FetchCoin(outpoint)
			if !ok {
				return false, errors.WithStack(ErrCoinNotFound)
			}
			entry = CacheEntry{BlockFromTime: coin.BlockFromTime, Amount: coin.Amount, TxTime: coin.TxTime}
			cache[outpoint] = entry
		}
	} else {
		coin, ok := coins.FetchCoin(outpoint)
		if !ok {
			return false, errors.WithStack(ErrCoinNotFound)
		}
		entry = CacheEntry{BlockFromTime: coin.BlockFromTime, Amount: coin.Amount, TxTime: coin.TxTime}
	}

	return CheckStakeKernelHash(pindexPrev, bits, entry.BlockFromTime, entry.Amount, outpoint, tryTime, entry.TxTime), nil
}

// CheckMaturity reports whether a coin first confirmed at coinHeight has
// CoinbaseMaturity confirmations as of a block built on top of
// pindexPrev (i.e. at height pindexPrev.Height+1).
func CheckMaturity(params *chaincfg.Params, pindexPrev *blockchain.BlockIndex, coinHeight int32) bool {
	confirmations := pindexPrev.Height + 1 - coinHeight
	return confirmations >= params.CoinbaseMaturity
}

// CheckProofOfStake is the full kernel-input validation named in
// spec.md §4.3: the kernel input's coin must be mature, its hash test
// must pass, and the coinstake's claimed signature over the kernel input
// must verify against the output key the coin pays to. verifySignature
// is supplied by the caller (txscript) to keep this package free of a
// script-evaluation dependency.
func CheckProofOfStake(
	params *chaincfg.Params,
	pindexPrev *blockchain.BlockIndex,
	tx *wire.MsgTx,
	bits uint32,
	txTime uint32,
	coins blockchain.CoinView,
	verifySignature func(coin *blockchain.Coin, tx *wire.MsgTx, inputIndex int) bool,
) error {
	if !tx.IsCoinStake() {
		return errors.WithStack(ErrBadCoinstakeFormat)
	}

	kernelInput := tx.TxIn[0]
	outpoint := kernelInput.PreviousOutPoint

	coin, ok := coins.FetchCoin(outpoint)
	if !ok {
		return errors.WithStack(ErrCoinNotFound)
	}

	if !CheckMaturity(params, pindexPrev, coin.Height) {
		return errors.WithStack(ErrKernelImmature)
	}

	if pindexPrev.StakeModifier.IsZero() && pindexPrev.Parent != nil {
		return errors.WithStack(ErrStakeModifierUnavailable)
	}

	ok = CheckStakeKernelHash(pindexPrev, bits, coin.BlockFromTime, coin.Amount, outpoint, txTime, coin.TxTime)
	if !ok {
		log.Debugf("kernel hash miss for outpoint %s:%d", outpoint.Hash, outpoint.Index)
		return errors.WithStack(ErrKernelHashMiss)
	}

	if verifySignature != nil && !verifySignature(coin, tx, 0) {
		return errors.WithStack(ErrBadKernelSignature)
	}

	return nil
}
