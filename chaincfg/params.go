// Package chaincfg defines the ChainParams component (spec.md §4.1): a
// value object, produced once at startup for a named network, that every
// other consensus subsystem is constructed against. There is no runtime
// dispatch between network "kinds" — the variant IS the value, per
// DESIGN NOTES §9's "polymorphic network params -> single value type"
// guidance, grounded on the teacher's dagconfig.Params value-table
// pattern (dagconfig/params.go).
package chaincfg

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/wire"
)

// ConsensusDeployment defines a BIP0009-style soft-fork deployment,
// carried over verbatim from the teacher's dagconfig.ConsensusDeployment.
type ConsensusDeployment struct {
	BitNumber  uint8
	StartTime  uint64
	ExpireTime uint64
}

// Params defines a Blackcoin network by its consensus constants. Build
// one with ForNetwork; every subsystem is constructed with a *Params and
// never consults global state.
type Params struct {
	Name        string
	Net         wire.BlkNet
	DefaultPort string

	GenesisBlock *wire.MsgBlock
	GenesisHash  chainhash.Hash

	// PowLimit and PosLimit are the per-kind proof difficulty floors;
	// PosLimitV2 replaces PosLimit once IsV2 holds, per spec.md §4.2.
	PowLimit   *big.Int
	PosLimit   *big.Int
	PosLimitV2 *big.Int

	PowLimitBits uint32

	TargetTimespan   int64
	TargetSpacingV1  int64
	TargetSpacingV2  int64
	StakeTimestampMask uint32
	CoinbaseMaturity int32
	LastPoWBlock     int32

	// Protocol-version gate timestamps and their historical exact-value
	// exceptions, preserved verbatim per spec.md §9 — these are
	// intentionally opaque; do not attempt to "fix" them. Each gate's
	// exception is a per-network value, not a global constant (spec.md
	// §9's resolved Open Question about nProtocolV3_1Time).
	V1RetargetFixTime      int64
	V1RetargetFixException int64
	V2Time                 int64
	V2Exception            int64
	V3Time                 int64
	V3Exception            int64
	V3_1Time               int64
	V3_1Exception          int64

	// EnforceBIP94 gates the testnet4 first-of-window special case in
	// chaincfg/difficulty; left false everywhere until that network's
	// genesis is finalized upstream (spec.md §9 open question).
	EnforceBIP94 bool

	// NoPowRetargeting / NoPosRetargeting disable retargeting for the
	// corresponding kind (regtest uses this).
	NoPowRetargeting bool
	NoPosRetargeting bool

	// RegtestFixedBits, when nonzero, is returned by NextTarget for
	// either kind instead of running the retarget algorithm, per spec.md
	// §4.2 step 6; the first and second block of a kind still get the
	// kind's limit.
	RegtestFixedBits uint32

	StakeMinAmount        int64
	StakeCombineThreshold int64
	StakeSplitThreshold   int64

	DevFundAddress      string
	DevFundScript       []byte
	DevDonationPercent  int64

	Checkpoints      map[int32]chainhash.Hash
	MinimumChainWork *big.Int

	Deployments [DefinedDeployments]ConsensusDeployment

	AddressParams AddressParams
}

// Deployment offsets, carried over from the teacher's dagconfig.
const (
	DeploymentTestDummy = iota
	DefinedDeployments
)

// AddressParams groups the base58/bech32 encoding constants named in
// spec.md §6.
type AddressParams struct {
	PubKeyHashAddrID byte
	ScriptHashAddrID byte
	PrivateKeyID     byte
	Bech32HRP        string
}

// ErrUnknownNetwork is returned by ForNetwork for an unrecognized name,
// realizing the Params::UnknownNetwork error kind of spec.md §7.
var ErrUnknownNetwork = errors.New("unknown network")

// ForNetwork returns the named network's constants. name is one of
// "main", "testnet", "testnet4", "signet", "regtest".
func ForNetwork(name string) (*Params, error) {
	switch name {
	case "main":
		return &mainNetParams, nil
	case "testnet":
		return &testNetParams, nil
	case "testnet4":
		return &testNet4Params, nil
	case "signet":
		return &sigNetParams, nil
	case "regtest":
		return &regressionNetParams, nil
	default:
		return nil, errors.Wrapf(ErrUnknownNetwork, "network %q", name)
	}
}

// IsProtocolV1RetargetFixed reports whether t is past the V1-retarget-fix
// gate. Per spec.md §4.1, each predicate is t > gate AND t != the
// historical exact-match skip value for that gate, independently of the
// other gates (testable property #1).
func (p *Params) IsProtocolV1RetargetFixed(t int64) bool {
	return t > p.V1RetargetFixTime && t != p.V1RetargetFixException
}

// IsV2 reports whether t is past the V2 protocol gate, respecting the
// network's historical exact-value skip.
func (p *Params) IsV2(t int64) bool {
	return t > p.V2Time && t != p.V2Exception
}

// IsV3 reports whether t is past the V3 protocol gate, respecting the
// network's historical exact-value skip.
func (p *Params) IsV3(t int64) bool {
	return t > p.V3Time && t != p.V3Exception
}

// IsV3_1 reports whether t is past the V3.1 protocol gate, respecting
// the network's historical exact-value skip. V3.1Time and its exception
// are per-Params fields (spec.md §9: main and testnet differ).
func (p *Params) IsV3_1(t int64) bool {
	return t > p.V3_1Time && t != p.V3_1Exception
}

// TargetSpacing returns the expected seconds between blocks at time t:
// 60 before V2, 64 from V2 on, per spec.md §4.1.
func (p *Params) TargetSpacing(t int64) int64 {
	if p.IsV2(t) {
		return p.TargetSpacingV2
	}
	return p.TargetSpacingV1
}

// ActivePosLimit returns the PoS difficulty floor in effect at time t.
func (p *Params) ActivePosLimit(t int64) *big.Int {
	if p.IsV2(t) {
		return p.PosLimitV2
	}
	return p.PosLimit
}

// DevRewardScript returns the dev-fund scriptPubKey, or nil for networks
// without one configured.
func (p *Params) DevRewardScript() []byte {
	return p.DevFundScript
}
