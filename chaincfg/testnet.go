package chaincfg

import (
	"math/big"

	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/wire"
)

var testPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)
var testPosLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)
var testPosLimitV2 = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

// regtestLimit is the target 0x207fffff decodes to: 0x7fffff·2^232, just
// under 2^255. Regtest's
// PowLimit/PosLimit must be at least this large, or CheckBlockHeader would
// reject the very easy blocks RegtestFixedBits produces.
var regtestLimit = new(big.Int).Lsh(big.NewInt(0x7fffff), 232)

var testNetParams = Params{
	Name:        "testnet",
	Net:         wire.TestNet,
	DefaultPort: "25714",

	GenesisBlock: testNetGenesisBlock,
	GenesisHash:  testNetGenesisHash,

	PowLimit:     testPowLimit,
	PosLimit:     testPosLimit,
	PosLimitV2:   testPosLimitV2,
	PowLimitBits: 0x1f00ffff,

	TargetTimespan:     16 * 60,
	TargetSpacingV1:    60,
	TargetSpacingV2:    64,
	StakeTimestampMask: 0x0000000f,
	CoinbaseMaturity:   10,
	LastPoWBlock:        1000,

	V1RetargetFixTime:      1362934113,
	V1RetargetFixException: 1395631999,
	V2Time:                 1438822800,
	V2Exception:            1407053678,
	V3Time:                 1431453600,
	V3Exception:            1444028400,
	// nProtocolV3_1Time differs per-network (spec.md §9); testnet's
	// exact-value exception uses testnet's own gate value, not main's.
	V3_1Time:      1667779200,
	V3_1Exception: 1667779200,

	StakeMinAmount:        1 * coin,
	StakeCombineThreshold: 500 * coin,
	StakeSplitThreshold:   1000 * coin,

	DevFundAddress:     "n14L5xqAs7QRzNiTLPNaPeqaF9CRoxzVnU",
	DevDonationPercent: 0,

	Checkpoints:      map[int32]chainhash.Hash{},
	MinimumChainWork: new(big.Int),

	AddressParams: AddressParams{
		PubKeyHashAddrID: 111,
		ScriptHashAddrID: 196,
		PrivateKeyID:     239,
		Bech32HRP:        "tblk",
	},
}

var regressionNetParams = Params{
	Name:        "regtest",
	Net:         wire.RegNet,
	DefaultPort: "25715",

	GenesisBlock: regtestGenesisBlock,
	GenesisHash:  regtestGenesisHash,

	PowLimit:     regtestLimit,
	PosLimit:     regtestLimit,
	PosLimitV2:   regtestLimit,
	PowLimitBits: 0x207fffff,

	TargetTimespan:     16 * 60,
	TargetSpacingV1:    60,
	TargetSpacingV2:    64,
	StakeTimestampMask: 0x0000000f,
	CoinbaseMaturity:   10,
	LastPoWBlock:       999999999,

	V1RetargetFixTime:      0,
	V1RetargetFixException: -1,
	V2Time:                 0,
	V2Exception:            -1,
	V3Time:                 0,
	V3Exception:            -1,
	V3_1Time:               0,
	V3_1Exception:          -1,

	NoPowRetargeting: true,
	NoPosRetargeting: true,
	// RegtestFixedBits is the easy target spec.md §4.2 step 6 returns on
	// regtest once a kind is past its first two blocks.
	RegtestFixedBits: 0x207fffff,

	StakeMinAmount:        1 * coin,
	StakeCombineThreshold: 500 * coin,
	StakeSplitThreshold:   1000 * coin,

	Checkpoints:      map[int32]chainhash.Hash{},
	MinimumChainWork: new(big.Int),

	AddressParams: AddressParams{
		PubKeyHashAddrID: 111,
		ScriptHashAddrID: 196,
		PrivateKeyID:     239,
		Bech32HRP:        "blrt",
	},
}

func init() {
	testNetParams.DevFundScript = devFundP2SHScript(testNetParams.DevFundAddress)
}
