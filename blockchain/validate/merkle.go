package validate

import "github.com/blackcoin-project/blkd/chainhash"

// MaxFutureDrift is the maximum number of seconds a block's header time
// may exceed the validator's notion of "now", per spec.md §4.4 step 2.
const MaxFutureDrift = 2 * 60 * 60

// nextPowerOfTwo returns the smallest power of two greater than or equal
// to n.
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 0
	}
	if n&(n-1) == 0 {
		return n
	}
	exponent := 0
	for 1<<uint(exponent) < n {
		exponent++
	}
	return 1 << uint(exponent)
}

// hashMerkleBranches returns the hash of the concatenation of left and
// right, the interior-node hash function of a standard merkle tree.
func hashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	buf := make([]byte, 0, chainhash.HashSize*2)
	buf = append(buf, left[:]...)
	buf = append(buf, right[:]...)
	return chainhash.DoubleHashH(buf)
}

// MerkleRoot builds the standard Bitcoin-family merkle tree over leaves
// (a single node's hash is returned as its own root; an empty list
// returns the zero hash) and returns its root. The odd-leaf-count rule
// duplicates the last unpaired hash at each level, the long-standing
// btcsuite BuildHashMerkleTreeStore algorithm: the function itself was
// filtered out of the retrieved pack (only blockdag/merkle_test.go
// survived, exercising it by name), so this reimplements the well-known
// standard the test's fixture commits to rather than guessing a new one.
func MerkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.Hash{}
	}
	if len(leaves) == 1 {
		return leaves[0]
	}

	nextPoT := nextPowerOfTwo(len(leaves))
	arraySize := nextPoT*2 - 1
	nodes := make([]chainhash.Hash, arraySize)
	present := make([]bool, arraySize)
	copy(nodes, leaves)
	for i := range leaves {
		present[i] = true
	}

	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		case !present[i]:
			nodes[offset] = chainhash.Hash{}
		case !present[i+1]:
			nodes[offset] = hashMerkleBranches(&nodes[i], &nodes[i])
			present[offset] = true
		default:
			nodes[offset] = hashMerkleBranches(&nodes[i], &nodes[i+1])
			present[offset] = true
		}
		offset++
	}

	return nodes[arraySize-1]
}

// WitnessMerkleRoot builds the merkle root over transaction hashes where
// the coinbase's leaf is replaced by the zero hash, the standard segwit
// commitment root construction.
func WitnessMerkleRoot(wtxids []chainhash.Hash) chainhash.Hash {
	if len(wtxids) == 0 {
		return chainhash.Hash{}
	}
	leaves := make([]chainhash.Hash, len(wtxids))
	copy(leaves, wtxids)
	leaves[0] = chainhash.Hash{}
	return MerkleRoot(leaves)
}
