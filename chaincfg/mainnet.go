package chaincfg

import (
	"math/big"

	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/wire"
)

// bigOne is 1 represented as a big.Int, defined once to avoid repeated
// allocation, mirroring the teacher's dagconfig.bigOne.
var bigOne = big.NewInt(1)

// mainPowLimit is the highest PoW target a main-network block can have:
// 2^236 - 1, matching Blackcoin's original 0x1e0fffff floor.
var mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)

// mainPosLimit and mainPosLimitV2 are the PoS difficulty floors before
// and after the V2 protocol gate.
var mainPosLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)
var mainPosLimitV2 = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 224), bigOne)

var mainNetParams = Params{
	Name:        "main",
	Net:         wire.MainNet,
	DefaultPort: "15714",

	GenesisBlock: mainGenesisBlock,
	GenesisHash:  mainGenesisHash,

	PowLimit:     mainPowLimit,
	PosLimit:     mainPosLimit,
	PosLimitV2:   mainPosLimitV2,
	PowLimitBits: 0x1e0fffff,

	TargetTimespan:     16 * 60,
	TargetSpacingV1:    60,
	TargetSpacingV2:    64,
	StakeTimestampMask: 0x0000000f,
	CoinbaseMaturity:   500,
	LastPoWBlock:       10000,

	V1RetargetFixTime:      1364901146,
	V1RetargetFixException: 1395631999,
	V2Time:                 1447200000,
	V2Exception:            1407053678,
	V3Time:                 1442577504,
	V3Exception:            1444028400,
	V3_1Time:               1713938400,
	V3_1Exception:          1713938400,

	StakeMinAmount:        1 * coin,
	StakeCombineThreshold: 500 * coin,
	StakeSplitThreshold:   1000 * coin,

	DevFundAddress:     "BKDvboD1CzZ5KycP1FRSXRoi7XXhHoQhS1",
	DevDonationPercent: 0,

	Checkpoints:      map[int32]chainhash.Hash{},
	MinimumChainWork: new(big.Int),

	AddressParams: AddressParams{
		PubKeyHashAddrID: 25,
		ScriptHashAddrID: 85,
		PrivateKeyID:     153,
		Bech32HRP:        "blk",
	},
}

func init() {
	mainNetParams.DevFundScript = devFundP2SHScript(mainNetParams.DevFundAddress)
}

// coin is the smallest-unit scale factor (1 BLK = 1e8 base units),
// matching the reference client's COIN constant.
const coin = 100000000
