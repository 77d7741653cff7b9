package kernel

import (
	"math/big"
	"testing"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/chaincfg/difficulty"
	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/wire"
)

func testParams() *chaincfg.Params {
	p, err := chaincfg.ForNetwork("regtest")
	if err != nil {
		panic(err)
	}
	return p
}

func TestCheckCoinstakeTimestamp(t *testing.T) {
	params := testParams()

	tests := []struct {
		name      string
		blockTime int64
		txTime    uint32
		v2Time    int64
		want      bool
	}{
		{"pre-v2 matching times pass", 1000, 1000, 5000, true},
		{"pre-v2 mismatched times fail", 1000, 1001, 5000, false},
		{"post-v2 matching unmasked time fails mask", 1601, 1601, 1000, false},
		{"post-v2 matching masked time passes", 1600, 1600, 1000, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := *params
			p.V2Time = test.v2Time
			p.V2Exception = -1
			p.StakeTimestampMask = 0x0000000f
			got := CheckCoinstakeTimestamp(&p, test.blockTime, test.txTime)
			if got != test.want {
				t.Errorf("got %v want %v", got, test.want)
			}
		})
	}
}

func TestCheckStakeBlockTimestamp(t *testing.T) {
	params := testParams()
	if !CheckStakeBlockTimestamp(params, 1600) {
		t.Errorf("expected 1600 (divisible by mask+1) to satisfy the mask")
	}
	if CheckStakeBlockTimestamp(params, 1601) {
		t.Errorf("expected 1601 to violate the mask")
	}
}

func TestComputeStakeModifierGenesis(t *testing.T) {
	got := ComputeStakeModifier(nil, chainhash.Hash{})
	if !got.IsZero() {
		t.Errorf("expected genesis modifier to be zero, got %s", got)
	}
}

func TestComputeStakeModifierRollsAfterInterval(t *testing.T) {
	prev := &blockchain.BlockIndex{
		BlockTime:    StakeModifierInterval + 100,
		ModifierTime: 0,
	}
	prev.StakeModifier = chainhash.HashH([]byte("prev-modifier"))
	prev.KernelProofHash = chainhash.HashH([]byte("prev-proof"))

	kernel := OutpointCommitment(chainhash.HashH([]byte("txid")), 0)
	got := ComputeStakeModifier(prev, kernel)
	if got.IsEqual(&prev.StakeModifier) {
		t.Errorf("expected modifier to roll forward past the interval boundary")
	}
}

func TestComputeStakeModifierReusesWithinInterval(t *testing.T) {
	prev := &blockchain.BlockIndex{
		BlockTime:    100,
		ModifierTime: 50,
	}
	prev.StakeModifier = chainhash.HashH([]byte("prev-modifier"))

	kernel := OutpointCommitment(chainhash.HashH([]byte("txid")), 0)
	got := ComputeStakeModifier(prev, kernel)
	if !got.IsEqual(&prev.StakeModifier) {
		t.Errorf("expected modifier to be reused inside the interval")
	}
}

func TestCheckStakeKernelHash(t *testing.T) {
	prev := &blockchain.BlockIndex{}
	outpoint := wire.OutPoint{Hash: chainhash.HashH([]byte("coin")), Index: 0}

	// bits 0x207fffff (exponent 32, a target just under 2^255) passes for
	// any kernel hash once the amount is at least 3, giving a
	// deterministic "definitely passes" fixture without hand-computing a
	// SHA256d preimage.
	maxTarget := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	bits := difficulty.BigToCompact(maxTarget)

	if !CheckStakeKernelHash(prev, bits, 1000, 100000000, outpoint, 2000, 1000) {
		t.Errorf("expected kernel to pass against a maximal target")
	}

	if CheckStakeKernelHash(prev, bits, 1000, 0, outpoint, 2000, 1000) {
		t.Errorf("expected kernel with zero amount to fail")
	}
}

type fakeCoinView struct {
	coins map[wire.OutPoint]*blockchain.Coin
}

func (f *fakeCoinView) FetchCoin(op wire.OutPoint) (*blockchain.Coin, bool) {
	c, ok := f.coins[op]
	return c, ok
}

func TestCheckKernelUsesCache(t *testing.T) {
	prev := &blockchain.BlockIndex{}
	outpoint := wire.OutPoint{Hash: chainhash.HashH([]byte("coin")), Index: 0}

	maxTarget := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	bits := difficulty.BigToCompact(maxTarget)

	cache := Cache{
		outpoint: CacheEntry{BlockFromTime: 1000, Amount: 100000000, TxTime: 1000},
	}
	coins := &fakeCoinView{coins: map[wire.OutPoint]*blockchain.Coin{}}

	ok, err := CheckKernel(prev, bits, 2000, outpoint, coins, cache)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Errorf("expected cached kernel lookup to pass")
	}
}

func TestCheckKernelMissingCoin(t *testing.T) {
	prev := &blockchain.BlockIndex{}
	outpoint := wire.OutPoint{Hash: chainhash.HashH([]byte("coin")), Index: 0}
	coins := &fakeCoinView{coins: map[wire.OutPoint]*blockchain.Coin{}}

	_, err := CheckKernel(prev, 0x207fffff, 2000, outpoint, coins, nil)
	if err == nil {
		t.Errorf("expected an error when the coin cannot be resolved")
	}
}

func TestCheckMaturity(t *testing.T) {
	params := testParams()
	params.CoinbaseMaturity = 10

	prev := &blockchain.BlockIndex{Height: 20}

	if CheckMaturity(params, prev, 15) {
		t.Errorf("expected coin at height 15 with only 6 confirmations to be immature")
	}
	if !CheckMaturity(params, prev, 11) {
		t.Errorf("expected coin at height 11 with exactly 10 confirmations to be mature")
	}
}
