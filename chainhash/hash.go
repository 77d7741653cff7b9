// Package chainhash provides the 256-bit hash type and the double-SHA256
// ("SHA256d") hashing primitives used throughout the consensus packages.
package chainhash

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"math/big"

	"github.com/pkg/errors"
)

// HashSize is the number of bytes in a hash.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a
// hash string that has too many characters.
var ErrHashStrSize = errors.Errorf("max hash string length is %v bytes", MaxHashStringSize)

// Hash is used in several of the consensus messages and common structures.
// It typically represents the double sha256 of data.
type Hash [HashSize]byte

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, matching the convention used when displaying bitcoin-family hashes.
func (h Hash) String() string {
	for i := 0; i < HashSize/2; i++ {
		h[i], h[HashSize-1-i] = h[HashSize-1-i], h[i]
	}
	return hex.EncodeToString(h[:])
}

// CloneBytes returns a copy of the bytes which represent the hash as a byte
// slice.
func (h *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, h[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash. An error is returned if
// the number of bytes passed in is not HashSize.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return errors.Errorf("invalid hash length of %v, want %v", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as h.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// IsZero reports whether the hash is the all-zero null hash, used as the
// sentinel previous-outpoint of a coinbase input.
func (h *Hash) IsZero() bool {
	return *h == Hash{}
}

// NewHash returns a new Hash from a byte slice.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// HashH computes the single SHA256 hash of the given data.
func HashH(b []byte) Hash {
	return sha256.Sum256(b)
}

// DoubleHashH computes the double SHA256 ("SHA256d") hash of the given
// data, the hash function used for block and transaction identifiers
// throughout the Bitcoin/Blackcoin family.
func DoubleHashH(b []byte) Hash {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return Hash(second)
}

// DoubleHashB computes the double SHA256 hash of the given data and returns
// it as a byte slice.
func DoubleHashB(b []byte) []byte {
	h := DoubleHashH(b)
	return h[:]
}

// HashToBig interprets a hash as a 256-bit little-endian unsigned integer,
// the byte order SHA256d digests are compared in throughout the PoW and
// PoS target checks (Bitcoin-family convention: the digest's bytes are
// reversed relative to big.Int's big-endian SetBytes).
func HashToBig(h *Hash) *big.Int {
	buf := *h
	blen := len(buf)
	for i := 0; i < blen/2; i++ {
		buf[i], buf[blen-1-i] = buf[blen-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// HashWriter incrementally hashes data without concatenating all of it into
// a single buffer first. It exposes an io.Writer API plus a Finalize
// function that produces the SHA256d digest of everything written so far.
//
// Grounded on domain/consensus/utils/hashes.HashWriter in the teacher,
// which wraps a single running hash.Hash; here Finalize runs the outer
// SHA256 pass to turn the running single hash into a SHA256d digest.
type HashWriter struct {
	hash.Hash
}

// NewHashWriter returns a HashWriter ready to accept writes.
func NewHashWriter() HashWriter {
	return HashWriter{sha256.New()}
}

// InfallibleWrite writes to the running hash. hash.Hash guarantees Write
// never returns an error, so this drops the unused return values at call
// sites that build up a digest field by field.
func (h HashWriter) InfallibleWrite(p []byte) {
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "hash.Hash.Write must never return an error"))
	}
}

// Finalize returns the SHA256d digest of everything written so far.
func (h HashWriter) Finalize() Hash {
	first := h.Sum(nil)
	return sha256.Sum256(first)
}
