// Package mining realizes the BlockAssembler component (spec.md §4.6):
// given a read-only mempool view and the chain tip, produce a fully
// formed, ready-to-solve block template.
//
// Grounded on the teacher's mining.BlkTmplGenerator/NewBlockTemplate
// (mining/mining.go): a generator value constructed once against its
// collaborators (policy, params, tx source) that produces templates on
// demand. The teacher's own package-selection algorithm
// (mining/txselection.go) draws candidates by a probabilistic
// SelectionValue^alpha weighting appropriate to its DAG-wide ordering
// problem; this chain's package selection is the deterministic
// ancestor-fee-score greedy walk of spec.md §4.6a (mirroring Bitcoin
// Core's BlockAssembler::addPackageTxs), implemented in packageselect.go
// from the algorithm description rather than adapted from the teacher.
package mining

import (
	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/blockchain/validate"
	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/chaincfg/difficulty"
	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/mining/mempool"
	"github.com/blackcoin-project/blkd/txscript"
	"github.com/blackcoin-project/blkd/wire"
)

// Block accounting constants, carried over from Bitcoin Core's
// BlockAssembler (the teacher has no analogous notion: kaspad blocks are
// bounded by mass, not weight+sigops-cost): a block reserves 4000 weight
// units and 400 sigop-cost units for its own header/coinbase overhead
// before any package is ever considered.
const (
	baseBlockWeight     = 4_000
	baseBlockSigOpsCost = 400

	// MinBlockMaxWeight and DefaultBlockMaxWeight bound Policy.BlockMaxWeight,
	// per spec.md §4.6a's "clamped to [4000, DEFAULT_BLOCK_MAX_WEIGHT]".
	MinBlockMaxWeight     = baseBlockWeight
	DefaultBlockMaxWeight = 4_000_000

	// MaxBlockSigOpsCost is the hard sigop-cost ceiling package selection
	// never crosses, independent of Policy.
	MaxBlockSigOpsCost = 80_000
)

// Policy groups the miner-local knobs that the consensus-level selection
// algorithm in packageselect.go is parameterized by.
type Policy struct {
	// BlockMaxWeight caps the assembled block's total weight, clamped to
	// [MinBlockMaxWeight, DefaultBlockMaxWeight].
	BlockMaxWeight int64
	// BlockMinFeeRate is the minimum package fee rate (fee per 1000
	// bytes of package size, as mempool.Entry.Size counts it) package
	// selection will still include.
	BlockMinFeeRate int64
}

func (p Policy) clampedMaxWeight() int64 {
	switch {
	case p.BlockMaxWeight < MinBlockMaxWeight:
		return MinBlockMaxWeight
	case p.BlockMaxWeight > DefaultBlockMaxWeight:
		return DefaultBlockMaxWeight
	default:
		return p.BlockMaxWeight
	}
}

// BlockTemplate is a block that is ready to be solved (PoW) or signed
// (PoS): fully valid except for satisfying the proof-of-work/kernel
// requirement, grounded on the teacher's mining.BlockTemplate.
type BlockTemplate struct {
	Block      *wire.MsgBlock
	Height     int32
	Fees       int64
	Weight     int64
	SigOpsCost int64
}

// StakeSearchFunc is the CreateCoinstake collaborator (mining/stake, C7)
// a PoS-capable Generator is given; nil disables PoS assembly (pure PoW
// mining). fees is the already-selected mempool package fees, which
// CreateCoinstake embeds in the coinstake's own reward per spec.md §4.7
// step 7 ("nReward = fees + proof_of_stake_subsidy") rather than leaving
// them to the (empty, for PoS blocks) coinbase. ok is false if no
// eligible kernel was found in the search window.
type StakeSearchFunc func(bits uint32, searchInterval int64, fees int64) (coinstake *wire.MsgTx, ok bool)

// Generator produces block templates against a fixed set of
// collaborators, grounded on the teacher's BlkTmplGenerator.
type Generator struct {
	policy  Policy
	params  *chaincfg.Params
	pool    mempool.View
	subsidy validate.SubsidyFunc
	now     func() int64
}

// NewGenerator returns a Generator. now is the adjusted-clock
// collaborator, injected the same way kaspad's BlkTmplGenerator takes a
// blockdag.TimeSource, so tests can drive it deterministically.
func NewGenerator(policy Policy, params *chaincfg.Params, pool mempool.View, subsidy validate.SubsidyFunc, now func() int64) *Generator {
	return &Generator{policy: policy, params: params, pool: pool, subsidy: subsidy, now: now}
}

// CreateNewBlock implements spec.md §4.6's create_new_block. When
// stakeSearch is nil, it builds a PoW template paying scriptPubKey. When
// stakeSearch is non-nil, it attempts PoS assembly via C7; posCancel is
// true (and template nil) if no eligible kernel was found this round.
func (g *Generator) CreateNewBlock(prev *blockchain.BlockIndex, scriptPubKey []byte, stakeSearch StakeSearchFunc, searchInterval int64) (template *BlockTemplate, posCancel bool, err error) {
	height := int32(0)
	if prev != nil {
		height = prev.Height + 1
	}
	version := computeBlockVersion(prev, g.params)
	lockTimeCutoff := blockchain.MedianTimePast(prev)
	blockTime := g.now()
	includeWitness := g.segwitActive(blockTime)

	chosen, selFees, selWeight, selSigOps := selectPackages(g.pool, g.policy, blockTime, g.now(), includeWitness)

	txs := make([]*wire.MsgTx, 0, len(chosen)+2)
	txs = append(txs, nil) // coinbase slot, filled in below
	weight := int64(baseBlockWeight) + selWeight
	sigOpsCost := int64(baseBlockSigOpsCost) + selSigOps

	header := wire.BlockHeader{Version: version, Bits: 0}

	isPoS := stakeSearch != nil
	var coinstake *wire.MsgTx
	if isPoS {
		bits := difficulty.NextTarget(prev, true, g.params)
		var ok bool
		coinstake, ok = stakeSearch(bits, searchInterval, selFees)
		if !ok {
			log.Debug("no eligible proof-of-stake kernel found this round")
			return nil, true, nil
		}
		header.Bits = bits
		header.Flags = wire.FlagProofOfStake
		header.Timestamp = coinstake.Time
	} else {
		header.Bits = difficulty.NextTarget(prev, false, g.params)
	}

	reward := int64(0)
	if g.subsidy != nil {
		reward = g.subsidy(height, isPoS, g.params)
	}

	var coinbase *wire.MsgTx
	if isPoS {
		coinbase, err = buildCoinbase(height, nil, 0)
	} else {
		coinbase, err = buildCoinbase(height, scriptPubKey, reward+selFees)
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "building coinbase")
	}
	txs[0] = coinbase

	totalFees := selFees
	if isPoS {
		txs = append(txs, coinstake)
	}
	for _, e := range chosen {
		txs = append(txs, e.Tx())
	}

	if includeWitness {
		anyWitness := false
		for _, tx := range txs {
			if tx.HasWitness() {
				anyWitness = true
				break
			}
		}
		if anyWitness {
			wtxids := make([]chainhash.Hash, len(txs))
			for i, tx := range txs {
				if i == 0 {
					continue
				}
				wtxids[i] = tx.WitnessHash()
			}
			root := validate.WitnessMerkleRoot(wtxids)
			coinbase.TxOut = append(coinbase.TxOut, &wire.TxOut{
				PkScript: validate.BuildWitnessCommitmentScript(root),
			})
		}
	}

	block := &wire.MsgBlock{Header: header, Txs: txs}

	if !isPoS {
		blockTxTime := maxTxTime(txs)
		finalTime := lockTimeCutoff + 1
		if blockTxTime > finalTime {
			finalTime = blockTxTime
		}
		block.Header.Timestamp = uint32(finalTime)
	}

	txHashes := make([]chainhash.Hash, len(txs))
	for i, tx := range txs {
		txHashes[i] = tx.TxHash()
	}
	block.Header.MerkleRoot = validate.MerkleRoot(txHashes)

	if !isPoS {
		// test_block_validity, minus the proof-of-work test: at assembly
		// time the block doesn't carry a passing nonce yet, so only the
		// self-inconsistency checks spec.md §4.6 step 10 actually wants
		// run here.
		if err := checkTimeWellFormed(&block.Header, prev, g.now()); err != nil {
			return nil, false, errors.Wrap(err, "self-check of assembled header failed")
		}
		if !block.Txs[0].IsCoinBase() {
			return nil, false, errors.New("self-check: assembled coinbase is not recognized as one")
		}
	}

	return &BlockTemplate{Block: block, Height: height, Fees: totalFees, Weight: weight, SigOpsCost: sigOpsCost}, false, nil
}

// UpdateBlockTime refreshes a previously built template's timestamp to
// the current adjusted time (never earlier than lockTimeCutoff+1) and,
// when params.NoPowRetargeting is set, re-derives its bits from prev
// through NextTarget, per
// spec.md §4.6 step 9 and the teacher's UpdateBlockTime.
func (g *Generator) UpdateBlockTime(prev *blockchain.BlockIndex, block *wire.MsgBlock) {
	if block.Header.IsProofOfStake() {
		return
	}
	cutoff := blockchain.MedianTimePast(prev) + 1
	now := g.now()
	newTime := now
	if newTime < cutoff {
		newTime = cutoff
	}
	block.Header.Timestamp = uint32(newTime)
	if g.params.NoPowRetargeting {
		block.Header.Bits = difficulty.NextTarget(prev, false, g.params)
	}
}

// computeBlockVersion returns the block version new templates are built
// with. No BIP9-style versionbits state machine is modeled anywhere in
// this repository (chaincfg.Params.Deployments is reserved for it but
// unconsulted elsewhere too), so — mirroring the teacher's own
// constants.BlockVersion, a plain fixed value — this returns a single
// current version rather than fabricating a bit-signaling scheme no
// other component implements.
func computeBlockVersion(prev *blockchain.BlockIndex, params *chaincfg.Params) int32 {
	return currentBlockVersion
}

const currentBlockVersion = 7

// segwitActive reports whether the assembler should produce witness
// commitments. Witness activation has no dedicated deployment bit in
// chaincfg.Params (spec.md is silent on exactly when), so it piggybacks
// on the V3.1 protocol-version gate already threaded through the rest of
// the codebase (chaincfg/params.go's IsV3_1) rather than inventing a
// second, unspecified gate.
func (g *Generator) segwitActive(blockTime int64) bool {
	return g.params.IsV3_1(blockTime)
}

// checkTimeWellFormed runs the timestamp half of validate.CheckBlockHeader
// without the proof-of-work test, which a freshly assembled template
// cannot yet pass (spec.md §4.6 step 10 wants the assembler's own
// self-inconsistency checks, not a solved block).
func checkTimeWellFormed(h *wire.BlockHeader, prev *blockchain.BlockIndex, now int64) error {
	mtp := blockchain.MedianTimePast(prev)
	if prev != nil && int64(h.Timestamp) <= mtp {
		return errors.Errorf("header time %d is not after median time past %d", h.Timestamp, mtp)
	}
	if int64(h.Timestamp) > now+validate.MaxFutureDrift {
		return errors.Errorf("header time %d exceeds now+drift %d", h.Timestamp, now+validate.MaxFutureDrift)
	}
	return nil
}

func maxTxTime(txs []*wire.MsgTx) int64 {
	var max int64
	for _, tx := range txs {
		if int64(tx.Time) > max {
			max = int64(tx.Time)
		}
	}
	return max
}

// buildCoinbase constructs the block's coinbase transaction: a single
// null-previous-outpoint input whose signature script begins with the
// BIP34-style serialized height, and a single payout output (or none,
// for the PoS case where the reward instead lands in the coinstake).
func buildCoinbase(height int32, scriptPubKey []byte, reward int64) (*wire.MsgTx, error) {
	scriptSig, err := coinbaseScriptSig(height)
	if err != nil {
		return nil, err
	}
	tx := &wire.MsgTx{
		Version: 1,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
			SignatureScript:  scriptSig,
			Sequence:         0xffffffff,
		}},
	}
	if scriptPubKey != nil {
		tx.TxOut = append(tx.TxOut, &wire.TxOut{Value: reward, PkScript: scriptPubKey})
	} else {
		tx.TxOut = append(tx.TxOut, &wire.TxOut{})
	}
	return tx, nil
}

// coinbaseScriptSig builds the BIP34-style "push(height), OP_0" script
// sig spec.md §4.6 step 7 names.
func coinbaseScriptSig(height int32) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddData(scriptNumBytes(int64(height))).
		AddOp(txscript.OpFalse).
		Script()
}

// scriptNumBytes encodes n the way a script number is serialized: the
// minimal little-endian magnitude with a sign bit in the high bit of the
// final byte, matching the classic CScriptNum encoding used throughout
// the bitcoin-family ecosystem.
func scriptNumBytes(n int64) []byte {
	if n == 0 {
		return nil
	}
	negative := n < 0
	absolute := n
	if negative {
		absolute = -n
	}
	var result []byte
	for absolute > 0 {
		result = append(result, byte(absolute&0xff))
		absolute >>= 8
	}
	if result[len(result)-1]&0x80 != 0 {
		if negative {
			result = append(result, 0x80)
		} else {
			result = append(result, 0x00)
		}
	} else if negative {
		result[len(result)-1] |= 0x80
	}
	return result
}

// txWeight returns the BIP141-style weight of tx: 3*base size + total
// size, equal to 4*base size for a transaction that carries no witness
// data.
func txWeight(tx *wire.MsgTx) int64 {
	return 3*int64(tx.BaseSerializeSize()) + int64(tx.SerializeSize())
}
