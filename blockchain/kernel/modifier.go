package kernel

import (
	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/chainhash"
)

// StakeModifierInterval bounds how often a block's stake modifier is
// allowed to roll forward, in seconds. Within the interval, a block
// inherits its parent's modifier unchanged; this is the "protocol-
// version in/out selection interval" named in spec.md §4.3, grounded on
// original_source/src/pos.h's ComputeStakeModifier intent (each UTXO's
// staking future must be pseudo-random but bound to chain history, not
// re-rollable every block by a staker picking which kernel to try).
const StakeModifierInterval = 6 * 60 * 60

// ComputeStakeModifier derives the stake modifier a block rooted at
// pindexPrev should carry, from pindexPrev's own modifier, the kernel
// proof hash pindexPrev selected for its own coinstake, and the
// candidate kernel's commitment hash. Returns the zero hash for genesis
// (pindexPrev == nil).
func ComputeStakeModifier(pindexPrev *blockchain.BlockIndex, kernel chainhash.Hash) chainhash.Hash {
	if pindexPrev == nil {
		return chainhash.Hash{}
	}
	if pindexPrev.BlockTime-pindexPrev.ModifierTime < StakeModifierInterval {
		return pindexPrev.StakeModifier
	}
	w := chainhash.NewHashWriter()
	w.InfallibleWrite(pindexPrev.StakeModifier[:])
	w.InfallibleWrite(pindexPrev.KernelProofHash[:])
	w.InfallibleWrite(kernel[:])
	return w.Finalize()
}

// OutpointCommitment returns the hash fed to ComputeStakeModifier as the
// candidate kernel's identity: SHA256d of the outpoint's txid and index.
func OutpointCommitment(txid chainhash.Hash, vout uint32) chainhash.Hash {
	w := chainhash.NewHashWriter()
	w.InfallibleWrite(txid[:])
	w.InfallibleWrite(leUint32(vout))
	return w.Finalize()
}
