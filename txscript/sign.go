package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/chainhash"
)

// KeyDB is an interface type provided to SignTxOutput, it encapsulates
// any user state required to get the private keys for an address,
// grounded on the teacher's KeyDB/KeyClosure shape (sign.go) adapted
// from a Schnorr key pair to an ECDSA private key.
type KeyDB interface {
	GetKey(address string) (*btcec.PrivateKey, error)
}

// KeyClosure implements KeyDB with a closure.
type KeyClosure func(address string) (*btcec.PrivateKey, error)

// GetKey implements KeyDB by returning the result of calling the closure.
func (kc KeyClosure) GetKey(address string) (*btcec.PrivateKey, error) {
	return kc(address)
}

// ScriptDB is an interface type provided to SignTxOutput, it encapsulates
// any user state required to get the redeem scripts for a P2SH address.
type ScriptDB interface {
	GetScript(address string) ([]byte, error)
}

// ScriptClosure implements ScriptDB with a closure.
type ScriptClosure func(address string) ([]byte, error)

// GetScript implements ScriptDB by returning the result of calling the
// closure.
func (sc ScriptClosure) GetScript(address string) ([]byte, error) {
	return sc(address)
}

// SignHash computes the digest a legacy sigScript signs: SHA256d of the
// spent scriptPubKey, the simplest sighash this chain's kernel and block
// signatures need (no SIGHASH flags: the signature always covers the
// whole claim it is attached to).
func SignHash(data []byte) chainhash.Hash {
	return chainhash.DoubleHashH(data)
}

// RawSignature produces a DER-encoded ECDSA signature over hash using
// privKey.
func RawSignature(hash chainhash.Hash, privKey *btcec.PrivateKey) []byte {
	sig := ecdsa.Sign(privKey, hash[:])
	return sig.Serialize()
}

// VerifySignature reports whether sig is a valid DER-encoded ECDSA
// signature by pubKeyBytes over hash.
func VerifySignature(hash chainhash.Hash, sig, pubKeyBytes []byte) bool {
	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}
	parsedSig, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsedSig.Verify(hash[:], pubKey)
}

// SignatureScript builds a standard P2PKH signature script
// (<sig><pubkey>) that spends a P2PKH output whose spending digest is
// hash, using privKey.
func SignatureScript(hash chainhash.Hash, privKey *btcec.PrivateKey) ([]byte, error) {
	sig := RawSignature(hash, privKey)
	pubKey := privKey.PubKey().SerializeCompressed()
	return NewScriptBuilder().AddData(sig).AddData(pubKey).Script()
}

// ExtractPubKeyFromSigScript returns the public key pushed in a standard
// P2PKH signature script (the second and last data push), parsing the
// minimal push-only encoding SignatureScript produces.
func ExtractPubKeyFromSigScript(sigScript []byte) ([]byte, bool) {
	pushes, err := parsePushes(sigScript)
	if err != nil || len(pushes) == 0 {
		return nil, false
	}
	return pushes[len(pushes)-1], true
}

// ExtractSignatureFromSigScript returns the signature pushed in a
// standard P2PKH signature script (the first data push).
func ExtractSignatureFromSigScript(sigScript []byte) ([]byte, bool) {
	pushes, err := parsePushes(sigScript)
	if err != nil || len(pushes) < 2 {
		return nil, false
	}
	return pushes[0], true
}

// parsePushes decodes a push-only script (as SignatureScript produces)
// into its individual data pushes.
func parsePushes(script []byte) ([][]byte, error) {
	var pushes [][]byte
	i := 0
	for i < len(script) {
		op := script[i]
		i++
		var length int
		switch {
		case op < OpPushData1:
			length = int(op)
		case op == OpPushData1:
			if i >= len(script) {
				return nil, errors.New("truncated OP_PUSHDATA1")
			}
			length = int(script[i])
			i++
		case op == OpPushData2:
			if i+2 > len(script) {
				return nil, errors.New("truncated OP_PUSHDATA2")
			}
			length = int(script[i]) | int(script[i+1])<<8
			i += 2
		default:
			return nil, errors.Errorf("unsupported opcode %#x in push-only script", op)
		}
		if i+length > len(script) {
			return nil, errors.New("push length exceeds script")
		}
		pushes = append(pushes, script[i:i+length])
		i += length
	}
	return pushes, nil
}
