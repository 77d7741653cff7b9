// Package blockchain holds the in-memory block index arena that the
// external chain-manager collaborator owns and every consensus
// subsystem reads, per spec.md §3's BlockIndex data model and DESIGN
// NOTES §9's "arena of BlockIndex, never owning references" guidance.
//
// Grounded on the teacher's blockdag.blockNode (parent pointer, bits,
// timestamp, height fields) generalized from a DAG-with-blue-set walk to
// a single-predecessor linear chain.
package blockchain

import (
	"math/big"
	"sort"

	"github.com/blackcoin-project/blkd/chainhash"
)

// IndexFlags records per-block status bits the validator consults,
// grounded on the teacher's blockstatusstore split between the
// consensus-owned graph and read-only consumers.
type IndexFlags uint32

const (
	// FlagProofOfStake marks the block as a PoS block.
	FlagProofOfStake IndexFlags = 1 << 0
	// FlagValid marks the block as having passed full validation.
	FlagValid IndexFlags = 1 << 1
)

// BlockIndex is an in-memory node of the block chain. Ownership: the
// chain-manager collaborator owns the index graph; consensus code only
// reads it (spec.md §3).
type BlockIndex struct {
	Hash      chainhash.Hash
	Height    int32
	Parent    *BlockIndex
	BlockTime int64
	Bits      uint32
	Flags     IndexFlags
	ChainWork *big.Int

	// StakeModifier is the 256-bit value computed for this block by
	// blockchain/kernel's ComputeStakeModifier, consulted when validating
	// or searching kernels built on top of this block.
	StakeModifier chainhash.Hash
	// ModifierTime is the timestamp at which StakeModifier was last
	// rolled forward (as opposed to inherited unchanged from Parent).
	ModifierTime int64
	// KernelProofHash is the kernel commitment the chain manager records
	// for this block: kernel.OutpointCommitment of its coinstake's kernel
	// outpoint, or of its coinbase for PoW blocks; zero for genesis. It
	// feeds the next block's ComputeStakeModifier call.
	KernelProofHash chainhash.Hash
}

// IsProofOfStake reports whether this block is a PoS block.
func (bi *BlockIndex) IsProofOfStake() bool {
	return bi.Flags&FlagProofOfStake != 0
}

// Time returns the block's timestamp as used by the difficulty and
// kernel algorithms (they use BlockTime directly; Time is a
// spec.md-friendly alias).
func (bi *BlockIndex) Time() int64 {
	return bi.BlockTime
}

// Ancestor returns the ancestor of bi at the given absolute height (bi
// itself when height equals bi.Height). It returns nil if height is
// negative or above bi.Height.
func (bi *BlockIndex) Ancestor(height int32) *BlockIndex {
	if height < 0 || height > bi.Height {
		return nil
	}
	cur := bi
	for cur != nil && cur.Height > height {
		cur = cur.Parent
	}
	return cur
}

// GetLastBlockOfKind walks back from start (inclusive) to the most
// recent block whose kind (PoW/PoS) matches isPoS, per spec.md §4.2
// step 2's get_last_block_of_kind.
func GetLastBlockOfKind(start *BlockIndex, isPoS bool) *BlockIndex {
	cur := start
	for cur != nil && cur.IsProofOfStake() != isPoS {
		cur = cur.Parent
	}
	return cur
}

// MedianTimePastWindow is the number of blocks whose timestamps
// MedianTimePast takes the median of, per the GLOSSARY's median-time-past
// definition.
const MedianTimePastWindow = 11

// MedianTimePast returns the median of the timestamps of the
// MedianTimePastWindow blocks up to and including bi, used as a
// monotonic clock for consensus time checks (spec.md §3 invariant,
// §4.4 step 2).
func MedianTimePast(bi *BlockIndex) int64 {
	if bi == nil {
		return 0
	}
	times := make([]int64, 0, MedianTimePastWindow)
	cur := bi
	for i := 0; i < MedianTimePastWindow && cur != nil; i++ {
		times = append(times, cur.BlockTime)
		cur = cur.Parent
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times[len(times)/2]
}
