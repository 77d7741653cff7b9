package txscript

import (
	"crypto/sha256"

	"github.com/btcsuite/btcutil/base58"
	"golang.org/x/crypto/ripemd160"

	"github.com/blackcoin-project/blkd/chaincfg"
)

// ScriptClass names the standard script patterns this package
// recognizes, grounded on the teacher's ScriptClass enum
// (domain/consensus/utils/txscript/standard_test.go's expectations).
type ScriptClass int

const (
	NonStandardTy ScriptClass = iota
	PubKeyTy
	PubKeyHashTy
	ScriptHashTy
	NullDataTy
	WitnessV0KeyHashTy
	WitnessV1TaprootTy
)

func (c ScriptClass) String() string {
	switch c {
	case PubKeyTy:
		return "pubkey"
	case PubKeyHashTy:
		return "pubkeyhash"
	case ScriptHashTy:
		return "scripthash"
	case NullDataTy:
		return "nulldata"
	case WitnessV0KeyHashTy:
		return "witness_v0_keyhash"
	case WitnessV1TaprootTy:
		return "witness_v1_taproot"
	default:
		return "nonstandard"
	}
}

// Hash160 computes RIPEMD160(SHA256(data)), the address-hash algorithm
// named in spec.md §6 for deriving a P2PKH/P2SH hash from a public key
// or redeem script.
func Hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}

// PayToPubKeyHashScript builds the standard P2PKH scriptPubKey:
// OP_DUP OP_HASH160 <pkHash> OP_EQUALVERIFY OP_CHECKSIG.
func PayToPubKeyHashScript(pkHash []byte) ([]byte, error) {
	return NewScriptBuilder().
		AddOp(OpDup).
		AddOp(OpHash160).
		AddData(pkHash).
		AddOp(OpEqualVerify).
		AddOp(OpCheckSig).
		Script()
}

// PayToScriptHashScript builds the standard P2SH scriptPubKey:
// OP_HASH160 <scriptHash> OP_EQUAL.
func PayToScriptHashScript(scriptHash []byte) ([]byte, error) {
	return NewScriptBuilder().
		AddOp(OpHash160).
		AddData(scriptHash).
		AddOp(OpEqual).
		Script()
}

// PayToPubKeyScript builds a bare P2PK scriptPubKey: <pubKey>
// OP_CHECKSIG, the kernel output form a stake-split/dev-fund payout
// never uses but a plain coinbase-to-self payout may.
func PayToPubKeyScript(pubKey []byte) ([]byte, error) {
	return NewScriptBuilder().AddData(pubKey).AddOp(OpCheckSig).Script()
}

// PayToWitnessPubKeyHashScript builds a P2WPKH scriptPubKey: OP_0
// <20-byte pkHash>, the "minter key" output a coinstake derives when its
// kernel pays a witness program it cannot reuse directly.
func PayToWitnessPubKeyHashScript(pkHash []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(Op0).AddData(pkHash).Script()
}

// ExtractScriptClass classifies pkScript as one of the standard
// templates, per the byte-shape matches the teacher's GetScriptClass
// performs (opcode-by-opcode comparison rather than a generic script
// interpreter).
func ExtractScriptClass(pkScript []byte) ScriptClass {
	switch {
	case isPubKeyHash(pkScript):
		return PubKeyHashTy
	case isScriptHash(pkScript):
		return ScriptHashTy
	case isPubKey(pkScript):
		return PubKeyTy
	case isWitnessV0KeyHash(pkScript):
		return WitnessV0KeyHashTy
	case isWitnessV1Taproot(pkScript):
		return WitnessV1TaprootTy
	case len(pkScript) >= 1 && pkScript[0] == OpReturn:
		return NullDataTy
	default:
		return NonStandardTy
	}
}

func isWitnessV0KeyHash(s []byte) bool {
	return len(s) == 22 && s[0] == Op0 && s[1] == 20
}

func isWitnessV1Taproot(s []byte) bool {
	return len(s) == 34 && s[0] == Op1 && s[1] == 32
}

func isPubKeyHash(s []byte) bool {
	return len(s) == 25 &&
		s[0] == OpDup && s[1] == OpHash160 && s[2] == 20 &&
		s[23] == OpEqualVerify && s[24] == OpCheckSig
}

func isScriptHash(s []byte) bool {
	return len(s) == 23 &&
		s[0] == OpHash160 && s[1] == 20 && s[22] == OpEqual
}

func isPubKey(s []byte) bool {
	return (len(s) == 35 && s[0] == 33 || len(s) == 67 && s[0] == 65) &&
		s[len(s)-1] == OpCheckSig
}

// ExtractPkHash returns the 20-byte hash embedded in a P2PKH script, or
// false if pkScript isn't one.
func ExtractPkHash(pkScript []byte) ([]byte, bool) {
	if !isPubKeyHash(pkScript) {
		return nil, false
	}
	return pkScript[3:23], true
}

// EncodeAddress base58check-encodes hash under ver, the same convention
// chaincfg.AddressParams.PubKeyHashAddrID/ScriptHashAddrID select
// between, per spec.md §6's address encoding.
func EncodeAddress(hash []byte, ver byte) string {
	return base58.CheckEncode(hash, ver)
}

// ExtractAddress returns the base58check address pkScript pays to, using
// params to pick the version byte for the script's class.
func ExtractAddress(pkScript []byte, params *chaincfg.Params) (ScriptClass, string, bool) {
	class := ExtractScriptClass(pkScript)
	switch class {
	case PubKeyHashTy:
		hash, _ := ExtractPkHash(pkScript)
		return class, EncodeAddress(hash, params.AddressParams.PubKeyHashAddrID), true
	case ScriptHashTy:
		hash := pkScript[2:22]
		return class, EncodeAddress(hash, params.AddressParams.ScriptHashAddrID), true
	default:
		return class, "", false
	}
}
