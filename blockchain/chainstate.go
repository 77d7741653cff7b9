package blockchain

import (
	"sync"

	"github.com/blackcoin-project/blkd/chainhash"
)

// ChainState tracks the active chain's tip under a single mutex,
// standing in for the teacher's cs_main global lock (spec.md §5):
// every read or write that crosses the consensus boundary acquires it.
// The index graph itself remains owned by the external chain-manager
// collaborator; ChainState only remembers which of its nodes is
// currently the tip, the minimum a staking-only node needs.
type ChainState struct {
	mu  sync.RWMutex
	tip *BlockIndex
}

// NewChainState returns an empty ChainState.
func NewChainState() *ChainState {
	return &ChainState{}
}

// Tip returns the current chain tip.
func (cs *ChainState) Tip() *BlockIndex {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.tip
}

// SetTip updates the chain tip. Callers must already hold whatever
// external lock orders this update relative to concurrent block
// connection (spec.md §5: "header-chain extension is serialized").
func (cs *ChainState) SetTip(tip *BlockIndex) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.tip = tip
}

// IndexByHash is a minimal read-only lookup surface a chain-manager
// collaborator exposes to consensus code (spec.md §1: "only its query
// surface is consumed").
type IndexByHash interface {
	BlockIndexByHash(hash chainhash.Hash) (*BlockIndex, bool)
}
