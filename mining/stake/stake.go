// Package stake realizes the StakeSearcher component (spec.md §4.7):
// given a wallet's owned coins, search a bounded time window for a
// passing proof-of-stake kernel and assemble the resulting coinstake
// transaction.
//
// Grounded structurally on mining/txselection.go's candidate-filtering
// loop shape (iterate candidates, test, accumulate, bound by a hard
// resource cap), generalized here from mempool transactions to wallet
// UTXOs; the kernel hash test itself is blockchain/kernel's own
// CheckStakeKernelHash, called directly against the candidate's own
// cached metadata rather than through a CoinView (the wallet's owned
// coins are not a chain UTXO lookup).
package stake

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/blockchain/kernel"
	"github.com/blackcoin-project/blkd/blockchain/validate"
	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/txscript"
	"github.com/blackcoin-project/blkd/wire"
)

// Cent is the rounding unit the stake-split step rounds output amounts
// to, the same COIN/100 convention bitcoin-family chains use throughout
// their fee and dust logic.
const Cent = 1_000_000

// maxSearchWindow bounds the per-candidate time window CreateCoinstake
// ever searches, regardless of the caller's requested search interval,
// per spec.md §4.7 step 4.
const maxSearchWindow = 60

// maxCombineInputs bounds the coinstake's total input count during coin
// combining (step 6), the kernel input included.
const maxCombineInputs = 10

// StakeableCoin is an owned UTXO the wallet collaborator reports as a
// staking candidate, carrying the kernel-formula metadata
// (BlockFromTime/TxTime) blockchain.Coin exposes to consensus code plus
// the wallet-only maturity/trust bits spec.md §4.7 step 1 filters on.
type StakeableCoin struct {
	OutPoint  wire.OutPoint
	Value     int64
	PkScript  []byte
	Depth     int32
	Trusted   bool
	Spendable bool

	BlockFromTime int64
	TxTime        uint32
}

// CoinProvider enumerates the wallet's owned UTXOs — the external
// collaborator spec.md §1/§6 keep out of this package's scope beyond
// this one narrow read.
type CoinProvider interface {
	StakeableCoins() ([]StakeableCoin, error)
}

// SigningProvider resolves the keys a coinstake search needs without
// this package ever touching a keystore directly, grounded on the
// teacher's KeyDB/ScriptDB split (txscript/sign.go, itself adapted from
// domain/consensus/utils/txscript/sign.go) generalized from "find the
// redeem script" to "find the staking key".
type SigningProvider interface {
	// PubKeyForHash resolves the public key behind a P2PKH output's
	// 20-byte hash, for the PUBKEYHASH kernel branch of step 4.
	PubKeyForHash(pkHash []byte) ([]byte, bool)
	// PrivateKeyForScript resolves the private key that spends pkScript,
	// for signing every coinstake input in step 9.
	PrivateKeyForScript(pkScript []byte) (*btcec.PrivateKey, bool)
}

// Params groups CreateCoinstake's wallet/miner-local tunables, sourced
// from the `-staking`/`reservebalance` environment (spec.md §6) rather
// than chaincfg.Params.
type Params struct {
	// ReserveBalance is subtracted from the eligible coin total before
	// searching; search is skipped entirely once the remainder is ≤0
	// (step 2), and combining (step 6) never crosses it either.
	ReserveBalance int64
	// Destination is the "minter key" output the witness-kernel branch
	// of step 4 derives a fresh payout from.
	Destination []byte
}

// CreateCoinstake implements spec.md §4.7's create_coinstake end to end.
// now is the search round's current (adjusted) time; fees is the
// package-selection fee total the caller (mining.Generator) has already
// chosen for this round, embedded in the coinstake reward per step 7.
// subsidy is proof_of_stake_subsidy for this height. It returns
// ErrNoEligibleCoins when no candidate yields a passing kernel anywhere
// in the search window.
func CreateCoinstake(
	params *chaincfg.Params,
	prev *blockchain.BlockIndex,
	coins CoinProvider,
	signer SigningProvider,
	bits uint32,
	now int64,
	searchInterval int64,
	fees int64,
	subsidy int64,
	cfg Params,
) (*wire.MsgTx, error) {
	raw, err := coins.StakeableCoins()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating staking coins")
	}

	eligible := filterEligible(raw, params.CoinbaseMaturity, params.StakeMinAmount)
	if len(eligible) == 0 {
		return nil, errors.WithStack(ErrNoEligibleCoins)
	}

	var total int64
	for _, c := range eligible {
		total += c.Value
	}
	available := total - cfg.ReserveBalance
	if available <= 0 {
		return nil, errors.WithStack(ErrNoEligibleCoins)
	}

	window := searchInterval
	if window > maxSearchWindow {
		window = maxSearchWindow
	}
	maskStep := int64(params.StakeTimestampMask) + 1
	maskedNow := now &^ int64(params.StakeTimestampMask)

	var (
		foundIdx  = -1
		foundTime uint32
		payouts   [][]byte
	)
search:
	for i, c := range eligible {
		for t := maskedNow; t > maskedNow-window && t >= 0; t -= maskStep {
			if !kernel.CheckStakeKernelHash(prev, bits, c.BlockFromTime, c.Value, c.OutPoint, uint32(t), c.TxTime) {
				continue
			}
			p, ok := kernelPayouts(c.PkScript, signer, cfg.Destination)
			if !ok {
				// Step 4's "abort this candidate": a passing kernel on an
				// unsupported script type doesn't end the search, it just
				// disqualifies this UTXO.
				break
			}
			foundIdx, foundTime, payouts = i, uint32(t), p
			break search
		}
	}
	if foundIdx < 0 {
		log.Debugf("no passing kernel among %d eligible coins", len(eligible))
		return nil, errors.WithStack(ErrNoEligibleCoins)
	}
	found := eligible[foundIdx]
	log.Debugf("found kernel for outpoint %s:%d at try-time %d", found.OutPoint.Hash, found.OutPoint.Index, foundTime)

	tx := &wire.MsgTx{
		Version: 1,
		Time:    foundTime,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: found.OutPoint}},
		TxOut:   []*wire.TxOut{{}},
	}
	combined := []StakeableCoin{found}
	credit := found.Value

	for i, c := range eligible {
		if i == foundIdx {
			continue
		}
		if len(tx.TxIn) >= maxCombineInputs {
			break
		}
		if credit >= params.StakeCombineThreshold {
			break
		}
		if !bytes.Equal(c.PkScript, found.PkScript) {
			continue
		}
		if c.Value >= params.StakeCombineThreshold {
			continue
		}
		if credit+c.Value > available {
			continue
		}
		tx.TxIn = append(tx.TxIn, &wire.TxIn{PreviousOutPoint: c.OutPoint})
		combined = append(combined, c)
		credit += c.Value
	}

	devCut := int64(0)
	if len(params.DevFundScript) > 0 && params.DevDonationPercent > 0 {
		devCut = subsidy * params.DevDonationPercent / 100
	}
	credit += fees + (subsidy - devCut)

	tx.TxOut = append(tx.TxOut, &wire.TxOut{Value: credit, PkScript: payouts[0]})
	if len(payouts) > 1 {
		// The witness-kernel branch's kernel-derived passthrough output
		// carries no independent value of its own; the minter-key output
		// above carries the round's entire credit.
		tx.TxOut = append(tx.TxOut, &wire.TxOut{Value: 0, PkScript: payouts[1]})
	}
	if devCut > 0 {
		tx.TxOut = append(tx.TxOut, &wire.TxOut{Value: devCut, PkScript: params.DevFundScript})
	}

	if credit >= params.StakeSplitThreshold {
		half := roundToCent(credit / 2)
		tx.TxOut[1].Value = half
		tx.TxOut = insertTxOut(tx.TxOut, 2, &wire.TxOut{Value: credit - half, PkScript: payouts[0]})
	}

	for i, txIn := range tx.TxIn {
		c := combined[i]
		privKey, ok := signer.PrivateKeyForScript(c.PkScript)
		if !ok {
			return nil, errors.WithStack(ErrSignatureFailed)
		}
		if err := signInput(txIn, c.PkScript, privKey); err != nil {
			return nil, errors.Wrap(err, "signing coinstake input")
		}
	}

	if tx.SerializeSize() >= 200_000 {
		return nil, errors.WithStack(ErrSizeLimitExceeded)
	}

	return tx, nil
}

// filterEligible keeps the wallet's owned coins that satisfy step 1's
// maturity/trust/value conditions, ordered deterministically by
// outpoint so the search (and its combining pass) is reproducible given
// the same coin set.
func filterEligible(coins []StakeableCoin, maturity int32, minAmount int64) []StakeableCoin {
	var eligible []StakeableCoin
	for _, c := range coins {
		if c.Depth < maturity || !c.Trusted || !c.Spendable || c.Value < minAmount {
			continue
		}
		eligible = append(eligible, c)
	}
	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i].OutPoint, eligible[j].OutPoint
		if a.Hash != b.Hash {
			return lessHash(a.Hash, b.Hash)
		}
		return a.Index < b.Index
	})
	return eligible
}

func lessHash(a, b chainhash.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// kernelPayouts selects the coinstake's payout script(s) by the
// kernel's own script class, per spec.md §4.7 step 4's branch table.
// ok is false for any script type the step names as grounds to abort
// the candidate.
func kernelPayouts(kernelScript []byte, signer SigningProvider, destination []byte) ([][]byte, bool) {
	switch txscript.ExtractScriptClass(kernelScript) {
	case txscript.PubKeyTy:
		return [][]byte{kernelScript}, true
	case txscript.PubKeyHashTy:
		hash, ok := txscript.ExtractPkHash(kernelScript)
		if !ok {
			return nil, false
		}
		pubKey, ok := signer.PubKeyForHash(hash)
		if !ok {
			return nil, false
		}
		script, err := txscript.PayToPubKeyScript(pubKey)
		if err != nil {
			return nil, false
		}
		return [][]byte{script}, true
	case txscript.WitnessV0KeyHashTy, txscript.WitnessV1TaprootTy:
		if len(destination) == 0 {
			return nil, false
		}
		return [][]byte{destination, kernelScript}, true
	default:
		return nil, false
	}
}

// signInput fills txIn's spend of pkScript, shaped by pkScript's own
// class: a legacy sigScript for P2PK/P2PKH, a witness stack for
// P2WPKH.
func signInput(txIn *wire.TxIn, pkScript []byte, privKey *btcec.PrivateKey) error {
	digest := txscript.SignHash(pkScript)
	sig := txscript.RawSignature(digest, privKey)
	switch txscript.ExtractScriptClass(pkScript) {
	case txscript.PubKeyTy:
		script, err := txscript.NewScriptBuilder().AddData(sig).Script()
		if err != nil {
			return err
		}
		txIn.SignatureScript = script
	case txscript.PubKeyHashTy:
		script, err := txscript.SignatureScript(digest, privKey)
		if err != nil {
			return err
		}
		txIn.SignatureScript = script
	case txscript.WitnessV0KeyHashTy:
		txIn.Witness = [][]byte{sig, privKey.PubKey().SerializeCompressed()}
	default:
		return errors.New("unsupported script class for signing")
	}
	return nil
}

func roundToCent(v int64) int64 {
	return (v / Cent) * Cent
}

// insertTxOut inserts out at position i of outs, shifting the rest
// right, for the stake-split step's second output.
func insertTxOut(outs []*wire.TxOut, i int, out *wire.TxOut) []*wire.TxOut {
	result := make([]*wire.TxOut, 0, len(outs)+1)
	result = append(result, outs[:i]...)
	result = append(result, out)
	result = append(result, outs[i:]...)
	return result
}

// Searcher adapts CreateCoinstake to mining.StakeSearchFunc's shape,
// bound to one block-assembly round's chain tip and wallet
// collaborators.
type Searcher struct {
	params  *chaincfg.Params
	prev    *blockchain.BlockIndex
	coins   CoinProvider
	signer  SigningProvider
	cfg     Params
	subsidy validate.SubsidyFunc
	now     func() int64
}

// NewSearcher returns a Searcher for one assembly round against prev.
func NewSearcher(
	params *chaincfg.Params,
	prev *blockchain.BlockIndex,
	coins CoinProvider,
	signer SigningProvider,
	cfg Params,
	subsidy validate.SubsidyFunc,
	now func() int64,
) *Searcher {
	return &Searcher{params: params, prev: prev, coins: coins, signer: signer, cfg: cfg, subsidy: subsidy, now: now}
}

// Search implements mining.StakeSearchFunc.
func (s *Searcher) Search(bits uint32, searchInterval int64, fees int64) (*wire.MsgTx, bool) {
	height := int32(0)
	if s.prev != nil {
		height = s.prev.Height + 1
	}
	subsidy := int64(0)
	if s.subsidy != nil {
		subsidy = s.subsidy(height, true, s.params)
	}
	tx, err := CreateCoinstake(s.params, s.prev, s.coins, s.signer, bits, s.now(), searchInterval, fees, subsidy, s.cfg)
	if err != nil {
		return nil, false
	}
	return tx, true
}
