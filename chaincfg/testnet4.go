package chaincfg

import (
	"math/big"

	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/wire"
)

// testNet4Params is intentionally incomplete: per spec.md §9's Open
// Question, testnet4 support upstream is "partially stubbed (genesis
// assertions commented out)". This module leaves EnforceBIP94 false and
// the genesis block unset rather than guessing at unfinalized values —
// ForNetwork("testnet4") returns constants usable for difficulty/kernel
// unit testing but callers must not treat GenesisBlock/GenesisHash as
// final until upstream finalizes them.
var testNet4Params = Params{
	Name:        "testnet4",
	Net:         wire.TestNet,
	DefaultPort: "25716",

	// GenesisBlock/GenesisHash deliberately left nil/zero: see comment
	// above.
	GenesisBlock: nil,
	GenesisHash:  chainhash.Hash{},

	PowLimit:     testPowLimit,
	PosLimit:     testPosLimit,
	PosLimitV2:   testPosLimitV2,
	PowLimitBits: 0x1f00ffff,

	TargetTimespan:     16 * 60,
	TargetSpacingV1:    60,
	TargetSpacingV2:    64,
	StakeTimestampMask: 0x0000000f,
	CoinbaseMaturity:   10,
	LastPoWBlock:       1000,

	V1RetargetFixTime:      0,
	V1RetargetFixException: -1,
	V2Time:                 0,
	V2Exception:            -1,
	V3Time:                 0,
	V3Exception:            -1,
	V3_1Time:               0,
	V3_1Exception:          -1,

	// EnforceBIP94 stays false until testnet4's genesis is finalized
	// upstream (spec.md §9).
	EnforceBIP94: false,

	StakeMinAmount:        1 * coin,
	StakeCombineThreshold: 500 * coin,
	StakeSplitThreshold:   1000 * coin,

	Checkpoints:      map[int32]chainhash.Hash{},
	MinimumChainWork: new(big.Int),

	AddressParams: AddressParams{
		PubKeyHashAddrID: 111,
		ScriptHashAddrID: 196,
		PrivateKeyID:     239,
		Bech32HRP:        "tblk",
	},
}

// signetChallengeMainnet is a placeholder signet challenge script; a
// real deployment replaces this with its own network's challenge. The
// magic is derived from it at package init time per spec.md §6.
var signetChallengeMainnet = []byte{0x51} // OP_TRUE, the simplest possible challenge

var sigNetParams = Params{
	Name:        "signet",
	DefaultPort: "25717",

	GenesisBlock: testNetGenesisBlock,
	GenesisHash:  testNetGenesisHash,

	PowLimit:     testPowLimit,
	PosLimit:     testPosLimit,
	PosLimitV2:   testPosLimitV2,
	PowLimitBits: 0x1e0fffff,

	TargetTimespan:     16 * 60,
	TargetSpacingV1:    60,
	TargetSpacingV2:    64,
	StakeTimestampMask: 0x0000000f,
	CoinbaseMaturity:   10,
	LastPoWBlock:       1000,

	V1RetargetFixTime:      0,
	V1RetargetFixException: -1,
	V2Time:                 0,
	V2Exception:            -1,
	V3Time:                 0,
	V3Exception:            -1,
	V3_1Time:               0,
	V3_1Exception:          -1,

	StakeMinAmount:        1 * coin,
	StakeCombineThreshold: 500 * coin,
	StakeSplitThreshold:   1000 * coin,

	Checkpoints:      map[int32]chainhash.Hash{},
	MinimumChainWork: new(big.Int),

	AddressParams: AddressParams{
		PubKeyHashAddrID: 111,
		ScriptHashAddrID: 196,
		PrivateKeyID:     239,
		Bech32HRP:        "tblk",
	},
}

func init() {
	digest := chainhash.DoubleHashH(signetChallengeMainnet)
	magic := wire.BlkNet(uint32(digest[0]) | uint32(digest[1])<<8 | uint32(digest[2])<<16 | uint32(digest[3])<<24)
	sigNetParams.Net = magic
}
