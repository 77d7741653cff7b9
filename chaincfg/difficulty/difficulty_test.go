package difficulty

import (
	"math/big"
	"testing"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/chaincfg"
)

func TestCompactToBigAndBack(t *testing.T) {
	tests := []struct {
		name string
		n    int64
	}{
		{"zero", 0},
		{"small positive", 1},
		{"fits in three bytes", 0x123456},
		{"needs a larger exponent", 0x80000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			n := big.NewInt(test.n)
			compact := BigToCompact(n)
			got := CompactToBig(compact)
			if got.Cmp(n) != 0 {
				t.Errorf("round trip mismatch: started with %d, got %s back through compact %08x", test.n, got, compact)
			}
		})
	}
}

func TestCompactToBigNegative(t *testing.T) {
	n := big.NewInt(-5000)
	compact := BigToCompact(n)
	if !IsNegative(compact) {
		t.Errorf("expected a negative big.Int to encode with the sign bit set")
	}
	got := CompactToBig(compact)
	if got.Cmp(n) != 0 {
		t.Errorf("got %s want %s", got, n)
	}
}

func TestIsOverflow(t *testing.T) {
	if IsOverflow(0x207fffff) {
		t.Errorf("0x207fffff (exponent 32) must not be flagged as overflow")
	}
	if !IsOverflow(0x21123456) {
		t.Errorf("exponent 33 with a nonzero mantissa must be flagged as overflow")
	}
}

func TestCheckProofOfWork(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 255) // an easy, maximal-ish limit
	bits := BigToCompact(limit)

	passingHash := make([]byte, 32) // all zero, trivially <= any nonzero target
	if !CheckProofOfWork(passingHash, bits, limit) {
		t.Errorf("an all-zero hash should satisfy any positive target")
	}

	failingHash := make([]byte, 32)
	for i := range failingHash {
		failingHash[i] = 0xff
	}
	if CheckProofOfWork(failingHash, bits, limit) {
		t.Errorf("an all-0xff hash should not satisfy a target below the maximum")
	}
}

func TestCheckProofOfWorkRejectsOverflowBits(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 255)
	if CheckProofOfWork(make([]byte, 32), 0x21123456, limit) {
		t.Errorf("an overflowing bits value must never pass")
	}
}

func testNextTargetParams() *chaincfg.Params {
	p, err := chaincfg.ForNetwork("main")
	if err != nil {
		panic(err)
	}
	return p
}

func TestNextTargetGenesisReturnsPowLimit(t *testing.T) {
	params := testNextTargetParams()
	got := NextTarget(nil, false, params)
	if got != params.PowLimitBits {
		t.Errorf("got %08x want %08x", got, params.PowLimitBits)
	}
}

func TestNextTargetSecondBlockOfKindReturnsLimit(t *testing.T) {
	params := testNextTargetParams()

	genesis := &blockchain.BlockIndex{Height: 0, Bits: params.PowLimitBits, BlockTime: 1000}
	first := &blockchain.BlockIndex{Height: 1, Parent: genesis, Bits: params.PowLimitBits, BlockTime: 1060}

	got := NextTarget(first, false, params)
	want := BigToCompact(params.PowLimit)
	if got != want {
		t.Errorf("second PoW block (only one PoW ancestor, whose parent has no parent) should return the limit: got %08x want %08x", got, want)
	}
}

func TestNextTargetThirdBlockDelegatesToCalculateNextTarget(t *testing.T) {
	params := testNextTargetParams()

	genesis := &blockchain.BlockIndex{Height: 0, Bits: params.PowLimitBits, BlockTime: 1000}
	first := &blockchain.BlockIndex{Height: 1, Parent: genesis, Bits: params.PowLimitBits, BlockTime: 1060}
	second := &blockchain.BlockIndex{Height: 2, Parent: first, Bits: params.PowLimitBits, BlockTime: 1120}

	got := NextTarget(second, false, params)
	want := CalculateNextTarget(second.Bits, second.Time(), first.Time(), false, params)
	if got != want {
		t.Errorf("got %08x want %08x", got, want)
	}
}

func TestNextTargetRegtestReturnsFixedBits(t *testing.T) {
	params := testNextTargetParamsFor("regtest")

	a := &blockchain.BlockIndex{Height: 0, Bits: params.RegtestFixedBits, BlockTime: 1000}
	b := &blockchain.BlockIndex{Height: 1, Parent: a, Bits: params.RegtestFixedBits, BlockTime: 1010}
	c := &blockchain.BlockIndex{Height: 2, Parent: b, Bits: params.RegtestFixedBits, BlockTime: 1020}

	got := NextTarget(c, false, params)
	if got != params.RegtestFixedBits {
		t.Errorf("got %08x want %08x", got, params.RegtestFixedBits)
	}
}

func testNextTargetParamsFor(name string) *chaincfg.Params {
	p, err := chaincfg.ForNetwork(name)
	if err != nil {
		panic(err)
	}
	return p
}

func TestCalculateNextTargetNoRetargeting(t *testing.T) {
	// Copy rather than mutate the shared mainnet Params value, since
	// ForNetwork hands back the same pointer to every caller.
	params := *testNextTargetParams()
	params.NoPowRetargeting = true
	got := CalculateNextTarget(0x1e0fffff, 2000, 1000, false, &params)
	if got != 0x1e0fffff {
		t.Errorf("no-retargeting should echo prevBits unchanged, got %08x", got)
	}
}

func TestCalculateNextTargetClampsToLimit(t *testing.T) {
	params := testNextTargetParams()
	// A previous target already at the limit, retargeted against an
	// actual spacing vastly larger than the target spacing (blocks mined
	// far too slowly), would compute a target above the limit; it must
	// clamp back down instead.
	bits := BigToCompact(params.PowLimit)
	got := CalculateNextTarget(bits, 100000, 0, false, params)
	limitBits := BigToCompact(params.PowLimit)
	if got != limitBits {
		t.Errorf("expected the result to clamp at the pow limit, got %08x want %08x", got, limitBits)
	}
}

func TestCalcWorkIncreasesAsTargetShrinks(t *testing.T) {
	highTargetBits := BigToCompact(new(big.Int).Lsh(big.NewInt(1), 250))
	lowTargetBits := BigToCompact(new(big.Int).Lsh(big.NewInt(1), 200))

	highTargetWork := CalcWork(highTargetBits)
	lowTargetWork := CalcWork(lowTargetBits)

	if lowTargetWork.Cmp(highTargetWork) <= 0 {
		t.Errorf("a smaller target should represent more cumulative work")
	}
}
