// Package txscript realizes the minimal script-classification, scripting,
// and signing surface spec.md's kernel and block-signature checks defer
// to: P2PKH/P2PK/P2SH classification, a canonical ScriptBuilder, and
// ECDSA sign/verify over secp256k1.
//
// Grounded on the teacher's domain/consensus/utils/txscript package for
// the KeyDB/ScriptDB collaborator shape (sign.go) and on the standard
// btcd script-opcode conventions present throughout the pack (the
// teacher itself uses Schnorr signatures over go-secp256k1, appropriate
// for its UTXO set; this chain's kernel signatures are classic ECDSA
// over btcec/v2, so the signing half is adapted rather than copied).
package txscript

// A minimal opcode set: only what P2PK/P2PKH/P2SH scripts and their
// signature scripts need.
const (
	OpFalse       = 0x00
	Op0           = 0x00
	OpPushData1   = 0x4c
	OpPushData2   = 0x4d
	OpPushData4   = 0x4e
	Op1Negate     = 0x4f
	Op1           = 0x51
	OpDup         = 0x76
	OpEqual       = 0x87
	OpEqualVerify = 0x88
	OpHash160     = 0xa9
	OpCheckSig    = 0xac
	OpReturn      = 0x6a
)

// MaxScriptSize bounds the size of a script a ScriptBuilder will
// produce, matching wire.MaxScriptSize.
const MaxScriptSize = 10_000
