package validate

import (
	"testing"

	"github.com/blackcoin-project/blkd/chainhash"
)

func TestMerkleRootSingleLeaf(t *testing.T) {
	leaf := chainhash.HashH([]byte("only-tx"))
	got := MerkleRoot([]chainhash.Hash{leaf})
	if got != leaf {
		t.Errorf("single-leaf merkle root should equal the leaf itself, got %s want %s", got, leaf)
	}
}

func TestMerkleRootEmpty(t *testing.T) {
	got := MerkleRoot(nil)
	if !got.IsZero() {
		t.Errorf("empty merkle root should be the zero hash, got %s", got)
	}
}

func TestMerkleRootPairAndOddCount(t *testing.T) {
	a := chainhash.HashH([]byte("a"))
	b := chainhash.HashH([]byte("b"))
	c := chainhash.HashH([]byte("c"))

	pairRoot := MerkleRoot([]chainhash.Hash{a, b})
	wantPair := chainhash.DoubleHashH(append(append([]byte{}, a[:]...), b[:]...))
	if pairRoot != wantPair {
		t.Errorf("two-leaf root mismatch: got %s want %s", pairRoot, wantPair)
	}

	// Odd leaf count duplicates the last unpaired leaf, so three leaves
	// root the same way as [a, b, c, c] would at the padded level.
	oddRoot := MerkleRoot([]chainhash.Hash{a, b, c})
	level1C := chainhash.DoubleHashH(append(append([]byte{}, c[:]...), c[:]...))
	wantOdd := chainhash.DoubleHashH(append(append([]byte{}, wantPair[:]...), level1C[:]...))
	if oddRoot != wantOdd {
		t.Errorf("odd-leaf-count root mismatch: got %s want %s", oddRoot, wantOdd)
	}
}

func TestWitnessMerkleRootZeroesCoinbaseLeaf(t *testing.T) {
	coinbaseWtxid := chainhash.HashH([]byte("coinbase"))
	other := chainhash.HashH([]byte("other"))

	got := WitnessMerkleRoot([]chainhash.Hash{coinbaseWtxid, other})
	want := MerkleRoot([]chainhash.Hash{{}, other})
	if got != want {
		t.Errorf("witness merkle root did not zero the coinbase leaf: got %s want %s", got, want)
	}
}
