package mining

import (
	"sort"

	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/mining/mempool"
)

// packageInfo is a candidate's totals as the selection loop accounts
// for it: either a fresh mempool pick's full ancestor package, or a
// modified_set entry's package recomputed as if its already-selected
// ancestors were free.
type packageInfo struct {
	entry  mempool.Entry
	size   int64
	fees   int64
	sigOps int64
}

func (p packageInfo) score() float64 {
	if p.size <= 0 {
		return 0
	}
	return float64(p.fees) / float64(p.size)
}

// selectPackages implements spec.md §4.6a's package-selection loop: it
// walks the mempool's ancestor-score order, greedily including whole
// unconfirmed-ancestor packages while the block has room, and reprices
// descendants of whatever it just included via modified_set.
func selectPackages(pool mempool.View, policy Policy, blockTime, now int64, includeWitness bool) (chosen []mempool.Entry, totalFees, totalWeight, totalSigOps int64) {
	maxWeight := policy.clampedMaxWeight() - baseBlockWeight
	maxSigOps := int64(MaxBlockSigOpsCost) - baseBlockSigOpsCost

	inBlock := make(map[chainhash.Hash]bool)
	failed := make(map[chainhash.Hash]bool)
	modified := make(map[chainhash.Hash]packageInfo)

	it := pool.NewIterator()
	var peeked mempool.Entry

	nextFromIterator := func() (mempool.Entry, bool) {
		if peeked != nil {
			return peeked, true
		}
		for {
			e, ok := it.Next()
			if !ok {
				return nil, false
			}
			if inBlock[e.ID()] || failed[e.ID()] {
				continue
			}
			if _, isModified := modified[e.ID()]; isModified {
				continue
			}
			peeked = e
			return e, true
		}
	}

	consecutiveFailed := 0

	for {
		mempoolCandidate, haveMempool := nextFromIterator()
		bestID, bestPkg, haveModified := bestModified(modified)

		if !haveMempool && !haveModified {
			break
		}

		var pkg packageInfo
		switch {
		case haveModified && (!haveMempool || higherScoring(bestPkg, mempoolCandidate)):
			pkg = bestPkg
			delete(modified, bestID)
		default:
			pkg = freshPackage(mempoolCandidate)
			peeked = nil
		}

		if policy.BlockMinFeeRate > 0 && pkg.fees*1000 < policy.BlockMinFeeRate*pkg.size {
			// Everything later in the index scores no better, per the
			// ancestor-score index's monotonicity.
			break
		}

		members := packageMembers(pkg.entry, inBlock, blockTime, now, includeWitness)
		var pkgWeight int64
		for _, m := range members {
			pkgWeight += txWeight(m.Tx())
		}
		if members == nil || !testPackage(totalWeight, totalSigOps, pkgWeight, pkg.sigOps, maxWeight, maxSigOps) {
			failed[pkg.entry.ID()] = true
			consecutiveFailed++
			if consecutiveFailed > 1000 && totalWeight > maxWeight-4000 {
				break
			}
			continue
		}

		for _, m := range members {
			chosen = append(chosen, m)
			inBlock[m.ID()] = true
			totalFees += m.Fee()
			totalWeight += txWeight(m.Tx())
			totalSigOps += m.SigOpCost()
		}
		consecutiveFailed = 0

		for _, d := range pkg.entry.Descendants() {
			if inBlock[d.ID()] || failed[d.ID()] {
				continue
			}
			modified[d.ID()] = packageAssumingAncestorsFree(d, inBlock)
		}
	}

	return chosen, totalFees, totalWeight, totalSigOps
}

// testPackage reports whether adding a package of the given size/sigops
// keeps the block within maxWeight/maxSigOps.
func testPackage(weightSoFar, sigOpsSoFar, pkgWeight, pkgSigOps, maxWeight, maxSigOps int64) bool {
	return weightSoFar+pkgWeight <= maxWeight && sigOpsSoFar+pkgSigOps <= maxSigOps
}

// freshPackage builds a packageInfo for a mempool pick that has not yet
// had any of its ancestors included: its totals are its full ancestor
// package (AncestorSize/AncestorFees plus this entry's own sigop cost
// added across the ancestor set).
func freshPackage(e mempool.Entry) packageInfo {
	return packageInfo{
		entry:  e,
		size:   e.AncestorSize(),
		fees:   e.AncestorFees(),
		sigOps: ancestorSigOps(e),
	}
}

// packageAssumingAncestorsFree recomputes e's package totals excluding
// whichever ancestors are already in the block — they cost nothing more
// once included, per spec.md §4.6a step 8.
func packageAssumingAncestorsFree(e mempool.Entry, inBlock map[chainhash.Hash]bool) packageInfo {
	size := e.Size()
	fees := e.Fee()
	sigOps := e.SigOpCost()
	for _, a := range e.Ancestors() {
		if inBlock[a.ID()] {
			continue
		}
		size += a.Size()
		fees += a.Fee()
		sigOps += a.SigOpCost()
	}
	return packageInfo{entry: e, size: size, fees: fees, sigOps: sigOps}
}

func ancestorSigOps(e mempool.Entry) int64 {
	total := e.SigOpCost()
	for _, a := range e.Ancestors() {
		total += a.SigOpCost()
	}
	return total
}

// packageMembers returns e's package — its unconfirmed ancestors not
// already in the block, plus e itself — topologically ordered by
// ancestor count ascending (step 7) so each is added only after its own
// ancestors, or nil if any member of the package fails the
// TestPackageTransactions conditions spec.md §4.6a step 6 names (final
// w.r.t. block time, witness-compatible if the block doesn't carry
// witness data yet): a package either goes in whole or not at all.
func packageMembers(e mempool.Entry, inBlock map[chainhash.Hash]bool, blockTime, now int64, includeWitness bool) []mempool.Entry {
	members := []mempool.Entry{e}
	for _, a := range e.Ancestors() {
		if !inBlock[a.ID()] {
			members = append(members, a)
		}
	}

	for _, m := range members {
		tx := m.Tx()
		if int64(tx.Time) > now || int64(tx.Time) > blockTime {
			return nil
		}
		if !includeWitness && tx.HasWitness() {
			return nil
		}
	}

	set := make(map[chainhash.Hash]bool, len(members))
	for _, m := range members {
		set[m.ID()] = true
	}
	sort.Slice(members, func(i, j int) bool {
		ci, cj := countAncestorsIn(members[i], set), countAncestorsIn(members[j], set)
		if ci != cj {
			return ci < cj
		}
		return lessHash(members[i].ID(), members[j].ID())
	})
	return members
}

func countAncestorsIn(e mempool.Entry, set map[chainhash.Hash]bool) int {
	n := 0
	for _, a := range e.Ancestors() {
		if set[a.ID()] {
			n++
		}
	}
	return n
}

// bestModified returns the highest-scoring entry of modified_set, or
// ok=false if it is empty.
func bestModified(modified map[chainhash.Hash]packageInfo) (chainhash.Hash, packageInfo, bool) {
	var bestID chainhash.Hash
	var best packageInfo
	found := false
	for id, pkg := range modified {
		if !found || pkg.score() > best.score() || (pkg.score() == best.score() && lessHash(id, bestID)) {
			bestID, best, found = id, pkg, true
		}
	}
	return bestID, best, found
}

// higherScoring reports whether pkg outscores candidate, ties broken
// deterministically by entry id (spec.md §4.6a step 2).
func higherScoring(pkg packageInfo, candidate mempool.Entry) bool {
	scoreA, scoreB := pkg.score(), candidate.AncestorScore()
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	return lessHash(pkg.entry.ID(), candidate.ID())
}

func lessHash(a, b chainhash.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
