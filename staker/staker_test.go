package staker

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/mining"
	"github.com/blackcoin-project/blkd/mining/mempool"
	"github.com/blackcoin-project/blkd/mining/stake"
	"github.com/blackcoin-project/blkd/txscript"
	"github.com/blackcoin-project/blkd/wire"
)

func testParams(t *testing.T) *chaincfg.Params {
	t.Helper()
	p, err := chaincfg.ForNetwork("regtest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

// fakeWait lets each condition spec.md §4.8 step 1 waits on be toggled
// independently.
type fakeWait struct {
	locked   bool
	enabled  bool
	importng bool
	reindex  bool
	peers    int
	progress float64
}

func readyWait() *fakeWait {
	return &fakeWait{enabled: true, peers: 1, progress: 1}
}

func (w *fakeWait) WalletLocked() bool    { return w.locked }
func (w *fakeWait) StakingEnabled() bool  { return w.enabled }
func (w *fakeWait) Importing() bool       { return w.importng }
func (w *fakeWait) Reindexing() bool      { return w.reindex }
func (w *fakeWait) PeerCount() int        { return w.peers }
func (w *fakeWait) SyncProgress() float64 { return w.progress }

type fakeTip struct {
	tip *blockchain.BlockIndex
}

func (f *fakeTip) Tip() *blockchain.BlockIndex { return f.tip }

type fakeSubmitter struct {
	submitted []*wire.MsgBlock
	err       error
}

func (f *fakeSubmitter) ProcessNewBlock(block *wire.MsgBlock) error {
	f.submitted = append(f.submitted, block)
	return f.err
}

type fakeCoins struct {
	coins []stake.StakeableCoin
	err   error
}

func (f *fakeCoins) StakeableCoins() ([]stake.StakeableCoin, error) {
	return f.coins, f.err
}

type fakeSigner struct {
	pubKeys  map[string][]byte
	privKeys map[string]*btcec.PrivateKey
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{pubKeys: map[string][]byte{}, privKeys: map[string]*btcec.PrivateKey{}}
}

func (f *fakeSigner) PubKeyForHash(pkHash []byte) ([]byte, bool) {
	key, ok := f.pubKeys[string(pkHash)]
	return key, ok
}

func (f *fakeSigner) PrivateKeyForScript(pkScript []byte) (*btcec.PrivateKey, bool) {
	key, ok := f.privKeys[string(pkScript)]
	return key, ok
}

type fakeCoinView struct {
	coins map[wire.OutPoint]*blockchain.Coin
}

func newFakeCoinView() *fakeCoinView {
	return &fakeCoinView{coins: map[wire.OutPoint]*blockchain.Coin{}}
}

func (v *fakeCoinView) FetchCoin(op wire.OutPoint) (*blockchain.Coin, bool) {
	c, ok := v.coins[op]
	return c, ok
}

func testPrivKey(seedByte byte) *btcec.PrivateKey {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = seedByte
	}
	priv, _ := btcec.PrivKeyFromBytes(seed)
	return priv
}

// incrementingNow returns a clock whose successive reads advance by step
// seconds, enough to always clear runRound's "no time elapsed since the
// last search" early return (masked by StakeTimestampMask=0xf on
// regtest, so any step of 16 or more always advances past the mask).
func incrementingNow(start int64, step int64) func() int64 {
	next := start
	return func() int64 {
		t := next
		next += step
		return t
	}
}

func baseConfig(t *testing.T) Config {
	params := testParams(t)
	pool := mempool.NewPool()
	gen := mining.NewGenerator(mining.Policy{}, params, pool, func(int32, bool, *chaincfg.Params) int64 { return 1000 }, func() int64 { return 5000 })
	return Config{
		Params:    params,
		Tip:       &fakeTip{},
		Wait:      readyWait(),
		Generator: gen,
		Coins:     &fakeCoins{},
		Signer:    newFakeSigner(),
		CoinView:  newFakeCoinView(),
		Submitter: &fakeSubmitter{},
		Subsidy:   func(int32, bool, *chaincfg.Params) int64 { return 1000 },
		IsRegtest: true,
	}
}

func withTimeout(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("timed out after %s", d)
	}
}

func TestWaitUntilReadyReturnsImmediatelyWhenConditionsAreMet(t *testing.T) {
	s := New(baseConfig(t))
	withTimeout(t, time.Second, func() {
		if err := s.waitUntilReady(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestWaitUntilReadySkipsPeerWaitOnRegtest(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Wait = &fakeWait{enabled: true, peers: 0, progress: 1}
	cfg.IsRegtest = true
	s := New(cfg)

	withTimeout(t, time.Second, func() {
		if err := s.waitUntilReady(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestWaitUntilReadyReturnsPromptlyWhenCancelledWhileLocked(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Wait = &fakeWait{locked: true, enabled: true, peers: 1, progress: 1}
	s := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	withTimeout(t, time.Second, func() {
		if err := s.waitUntilReady(ctx); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestComputeTimeoutUsesBaseWithNoCoins(t *testing.T) {
	s := New(baseConfig(t))
	timeout, err := s.computeTimeout(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timeout != baseStakeTimeout {
		t.Errorf("got %s want base timeout %s with zero staking coins", timeout, baseStakeTimeout)
	}
}

func TestComputeTimeoutScalesWithCoinCount(t *testing.T) {
	cfg := baseConfig(t)
	coins := make([]stake.StakeableCoin, 9)
	cfg.Coins = &fakeCoins{coins: coins}
	s := New(cfg)

	timeout, err := s.computeTimeout(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := baseStakeTimeout + time.Duration(30*math.Sqrt(9))*time.Millisecond
	if timeout != want {
		t.Errorf("got %s want %s for 9 staking coins", timeout, want)
	}
}

func TestComputeTimeoutPropagatesCoinProviderError(t *testing.T) {
	cfg := baseConfig(t)
	wantErr := context.DeadlineExceeded
	cfg.Coins = &fakeCoins{err: wantErr}
	s := New(cfg)

	_, err := s.computeTimeout(context.Background())
	if err == nil {
		t.Fatalf("expected an error from a failing coin provider")
	}
}

func TestRunRoundCatchingPanicsRecoversPanic(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Tip = panicTip{}
	s := New(cfg)

	cancelled, err := s.runRoundCatchingPanics(context.Background(), time.Millisecond)
	if cancelled {
		t.Errorf("a recovered panic should not report cancellation")
	}
	if err == nil {
		t.Fatalf("expected a recovered panic to surface as an error")
	}
}

type panicTip struct{}

func (panicTip) Tip() *blockchain.BlockIndex { panic("simulated panic in staker round") }

func TestRunStopsCleanlyWhenCancelledDuringPosCancelBackoff(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Now = incrementingNow(16, 16)
	s := New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	withTimeout(t, time.Second, func() {
		if err := s.Run(ctx); err != nil {
			t.Errorf("expected a clean shutdown, got %v", err)
		}
	})

	submitter := cfg.Submitter.(*fakeSubmitter)
	if len(submitter.submitted) != 0 {
		t.Errorf("expected no block submitted when the search round never finds a kernel")
	}
}

func TestSignBlockFailsWhenBlockCarriesNoCoinstake(t *testing.T) {
	s := New(baseConfig(t))
	block := &wire.MsgBlock{Txs: []*wire.MsgTx{{}}}

	if err := s.signBlock(block); err == nil {
		t.Fatalf("expected an error for a block with no coinstake transaction")
	}
}

func TestSignBlockFailsWhenKernelCoinIsMissing(t *testing.T) {
	s := New(baseConfig(t))
	block := posBlockWithKernel(wire.OutPoint{Index: 7}, nil)

	if err := s.signBlock(block); err == nil {
		t.Fatalf("expected an error when the kernel input's coin is absent from the coin view")
	}
}

func TestSignBlockFailsWhenSignerHasNoKeyForKernelScript(t *testing.T) {
	cfg := baseConfig(t)
	priv := testPrivKey(1)
	pkHash := txscript.Hash160(priv.PubKey().SerializeCompressed())
	pkScript, err := txscript.PayToPubKeyHashScript(pkHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	op := wire.OutPoint{Index: 1}
	view := newFakeCoinView()
	view.coins[op] = &blockchain.Coin{Amount: 1000, PkScript: pkScript}
	cfg.CoinView = view

	s := New(cfg)
	block := posBlockWithKernel(op, nil)

	err = s.signBlock(block)
	if err == nil {
		t.Fatalf("expected a wallet-locked error when the signer has no matching key")
	}
}

func TestSignBlockProducesAVerifiableSignature(t *testing.T) {
	cfg := baseConfig(t)
	priv := testPrivKey(2)
	pubKey := priv.PubKey().SerializeCompressed()
	pkHash := txscript.Hash160(pubKey)
	pkScript, err := txscript.PayToPubKeyHashScript(pkHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	op := wire.OutPoint{Index: 3}
	view := newFakeCoinView()
	view.coins[op] = &blockchain.Coin{Amount: 1000, PkScript: pkScript}
	cfg.CoinView = view
	signer := newFakeSigner()
	signer.privKeys[string(pkScript)] = priv
	cfg.Signer = signer

	sigScript, err := txscript.SignatureScript(txscript.SignHash(pkScript), priv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := New(cfg)
	block := posBlockWithKernel(op, sigScript)

	if err := s.signBlock(block); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(block.BlockSig) == 0 {
		t.Fatalf("expected signBlock to populate BlockSig")
	}
	coin, _ := cfg.CoinView.FetchCoin(op)
	if !txscript.VerifyBlockSignature(block, coin) {
		t.Errorf("expected the produced block signature to verify against the kernel input's key")
	}
}

// posBlockWithKernel builds a minimal PoS-flagged block whose coinstake
// spends kernelOutpoint, its input carrying sigScript (needed for
// VerifyBlockSignature's pubkey recovery).
func posBlockWithKernel(kernelOutpoint wire.OutPoint, sigScript []byte) *wire.MsgBlock {
	coinstake := &wire.MsgTx{
		Version: 1,
		TxIn:    []*wire.TxIn{{PreviousOutPoint: kernelOutpoint, SignatureScript: sigScript}},
		TxOut:   []*wire.TxOut{{}, {Value: 1000, PkScript: []byte{0x51}}},
	}
	header := wire.BlockHeader{Flags: wire.FlagProofOfStake}
	return &wire.MsgBlock{Header: header, Txs: []*wire.MsgTx{{}, coinstake}}
}

func TestNewDefaultsRandAndNow(t *testing.T) {
	cfg := baseConfig(t)
	s := New(cfg)
	if s.now == nil {
		t.Fatalf("expected New to default Now")
	}
	if s.rnd == nil {
		t.Fatalf("expected New to default Rand")
	}
}
