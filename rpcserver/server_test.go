package rpcserver

import (
	"testing"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/mining"
	"github.com/blackcoin-project/blkd/mining/mempool"
	"github.com/blackcoin-project/blkd/mining/stake"
	"github.com/blackcoin-project/blkd/rpcmodel"
	"github.com/blackcoin-project/blkd/wire"
)

func testParams(t *testing.T) *chaincfg.Params {
	t.Helper()
	p, err := chaincfg.ForNetwork("regtest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cp := *p
	return &cp
}

type fakeStaker struct {
	staking    bool
	weight     int64
	netWeight  int64
	interval   int64
	setErr     error
	setCalls   []bool
}

func (f *fakeStaker) IsStaking() bool { return f.staking }
func (f *fakeStaker) SetStaking(enable bool) error {
	f.setCalls = append(f.setCalls, enable)
	if f.setErr != nil {
		return f.setErr
	}
	f.staking = enable
	return nil
}
func (f *fakeStaker) Weight() int64        { return f.weight }
func (f *fakeStaker) NetworkWeight() int64 { return f.netWeight }
func (f *fakeStaker) SearchInterval() int64 { return f.interval }

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

func baseServer(t *testing.T) (*Server, *fakeStaker, *fakeCoinView) {
	params := testParams(t)
	tip := &blockchain.BlockIndex{Height: 9, Bits: params.RegtestFixedBits}
	staker := &fakeStaker{staking: false, weight: 0, netWeight: 0}
	coinView := newFakeCoinView()
	pool := mempool.NewPool()
	gen := mining.NewGenerator(mining.Policy{}, params, pool, nil, func() int64 { return 1000 })

	cfg := Config{
		Params:    params,
		ChainName: "regtest",
		Tip:       func() *blockchain.BlockIndex { return tip },
		CoinView:  coinView,
		Mempool:   pool,
		Generator: gen,
		Staker:    staker,
		StakeCfg:  &stake.Params{},
		Now:       func() int64 { return 1000 },
	}
	return NewServer(cfg), staker, coinView
}

func TestDispatchUnknownMethodReturnsInvalidParameter(t *testing.T) {
	s, _, _ := baseServer(t)
	_, err := s.Dispatch("notarealmethod", nil)
	if err == nil {
		t.Fatalf("expected an error")
	}
	rpcErr, ok := err.(*rpcmodel.RPCError)
	if !ok {
		t.Fatalf("expected *rpcmodel.RPCError, got %T", err)
	}
	if rpcErr.Code != rpcmodel.ErrRPCInvalidParameter {
		t.Fatalf("got code %d, want %d", rpcErr.Code, rpcmodel.ErrRPCInvalidParameter)
	}
}

func TestGetStakingInfoReportsStakerState(t *testing.T) {
	s, staker, _ := baseServer(t)
	staker.staking = true
	staker.weight = 2000
	staker.netWeight = 4000
	staker.interval = 16

	res, err := s.Dispatch("getstakinginfo", rpcmodel.NewGetStakingInfoCmd())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, ok := res.(*rpcmodel.GetStakingInfoResult)
	if !ok {
		t.Fatalf("expected *rpcmodel.GetStakingInfoResult, got %T", res)
	}
	if !info.Staking {
		t.Fatalf("expected staking=true")
	}
	if info.Blocks != 9 {
		t.Fatalf("got blocks %d, want 9", info.Blocks)
	}
	if info.Weight != 2000 || info.NetStakeWeight != 4000 {
		t.Fatalf("got weight/netstakeweight %d/%d, want 2000/4000", info.Weight, info.NetStakeWeight)
	}
	if info.ExpectedTime <= 0 {
		t.Fatalf("expected a positive expectedtime while staking, got %d", info.ExpectedTime)
	}
}

func TestGetStakingInfoReportsZeroExpectedTimeWhenNotStaking(t *testing.T) {
	s, staker, _ := baseServer(t)
	staker.staking = false
	staker.weight = 2000
	staker.netWeight = 4000

	res, err := s.Dispatch("getstakinginfo", rpcmodel.NewGetStakingInfoCmd())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info := res.(*rpcmodel.GetStakingInfoResult)
	if info.ExpectedTime != 0 {
		t.Fatalf("got expectedtime %d, want 0 while not staking", info.ExpectedTime)
	}
}

func TestStakingStartsAndStopsTheStaker(t *testing.T) {
	s, staker, _ := baseServer(t)

	enable := true
	res, err := s.Dispatch("staking", rpcmodel.NewStakingCmd(&enable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.(*rpcmodel.StakingResult).Staking {
		t.Fatalf("expected staking=true after enabling")
	}

	disable := false
	res, err = s.Dispatch("staking", rpcmodel.NewStakingCmd(&disable))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.(*rpcmodel.StakingResult).Staking {
		t.Fatalf("expected staking=false after disabling")
	}
	if len(staker.setCalls) != 2 || staker.setCalls[0] != true || staker.setCalls[1] != false {
		t.Fatalf("unexpected SetStaking call sequence: %v", staker.setCalls)
	}
}

func TestStakingPropagatesWalletErrors(t *testing.T) {
	s, staker, _ := baseServer(t)
	staker.setErr = errWalletHasNoKeys

	enable := true
	_, err := s.Dispatch("staking", rpcmodel.NewStakingCmd(&enable))
	if err == nil {
		t.Fatalf("expected an error")
	}
	rpcErr := err.(*rpcmodel.RPCError)
	if rpcErr.Code != rpcmodel.ErrRPCWalletError {
		t.Fatalf("got code %d, want %d", rpcErr.Code, rpcmodel.ErrRPCWalletError)
	}
}

func TestStakingWithNilCollaboratorReportsBlankWallet(t *testing.T) {
	s, _, _ := baseServer(t)
	s.cfg.Staker = nil

	_, err := s.Dispatch("staking", rpcmodel.NewStakingCmd(nil))
	if err == nil {
		t.Fatalf("expected an error")
	}
	rpcErr := err.(*rpcmodel.RPCError)
	if rpcErr.Message != "wallet is blank" {
		t.Fatalf("got message %q, want %q", rpcErr.Message, "wallet is blank")
	}
}

func TestReserveBalanceRoundsToCentAndRejectsNegative(t *testing.T) {
	s, _, _ := baseServer(t)

	enable := true
	amount := 1.505 // 1.505 coin -> rounds down to the nearest cent below it
	res, err := s.Dispatch("reservebalance", rpcmodel.NewReserveBalanceCmd(&enable, &amount))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := res.(*rpcmodel.ReserveBalanceResult).ReserveBalance
	if got != 1.5 {
		t.Fatalf("got reserve %v, want 1.5", got)
	}

	negative := -1.0
	_, err = s.Dispatch("reservebalance", rpcmodel.NewReserveBalanceCmd(&enable, &negative))
	if err == nil {
		t.Fatalf("expected an error for a negative amount")
	}
}

func TestReserveBalanceQueryReportsCurrentSetting(t *testing.T) {
	s, _, _ := baseServer(t)
	s.cfg.StakeCfg.ReserveBalance = 250_000_000 // 2.5 coin

	res, err := s.Dispatch("reservebalance", rpcmodel.NewReserveBalanceCmd(nil, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := res.(*rpcmodel.ReserveBalanceResult).ReserveBalance
	if got != 2.5 {
		t.Fatalf("got reserve %v, want 2.5", got)
	}
}

func TestCheckKernelReportsNotFoundWhenHashMisses(t *testing.T) {
	s, _, coinView := baseServer(t)
	// Bits 0x03000001 decode to a target of 1, which no kernel hash of a
	// 1-atom coin meets; regtest's own 0x207fffff target would accept
	// about half of all hashes at that amount.
	hardTip := &blockchain.BlockIndex{Height: 9, Bits: 0x03000001}
	s.cfg.Tip = func() *blockchain.BlockIndex { return hardTip }
	op := wire.OutPoint{Hash: chainhash.HashH([]byte("probe")), Index: 0}
	coinView.coins[op] = &blockchain.Coin{Amount: 1, Height: 0}

	cmd := rpcmodel.NewCheckKernelCmd([]rpcmodel.TransactionInput{{TxID: op.Hash.String(), Vout: 0}}, nil)
	res, err := s.Dispatch("checkkernel", cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.(*rpcmodel.CheckKernelResult).Found {
		t.Fatalf("expected Found=false for a coin with no matching kernel")
	}
}

func TestCheckKernelRejectsMalformedTxID(t *testing.T) {
	s, _, _ := baseServer(t)
	cmd := rpcmodel.NewCheckKernelCmd([]rpcmodel.TransactionInput{{TxID: "not-hex", Vout: 0}}, nil)
	_, err := s.Dispatch("checkkernel", cmd)
	if err == nil {
		t.Fatalf("expected an error for a malformed txid")
	}
	rpcErr := err.(*rpcmodel.RPCError)
	if rpcErr.Code != rpcmodel.ErrRPCInvalidParameter {
		t.Fatalf("got code %d, want %d", rpcErr.Code, rpcmodel.ErrRPCInvalidParameter)
	}
}

func TestCheckKernelFindsAPassingKernelAndProbesWithoutATemplate(t *testing.T) {
	s, _, coinView := baseServer(t)
	op := wire.OutPoint{Hash: chainhash.HashH([]byte("probe")), Index: 0}
	// A coin amount large enough, against regtest's maximal fixed target,
	// to pass CheckStakeKernelHash for any hash.
	coinView.coins[op] = &blockchain.Coin{Amount: 1 << 40, Height: 0}

	cmd := rpcmodel.NewCheckKernelCmd([]rpcmodel.TransactionInput{{TxID: op.Hash.String(), Vout: 0}}, nil)
	res, err := s.Dispatch("checkkernel", cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := res.(*rpcmodel.CheckKernelResult)
	if !result.Found {
		t.Fatalf("expected Found=true")
	}
	if result.Template != "" {
		t.Fatalf("expected no template without create_template")
	}
}

var errWalletHasNoKeys = rpcStakingErrorForTest{"wallet has no private keys"}

type rpcStakingErrorForTest struct{ message string }

func (e rpcStakingErrorForTest) Error() string { return e.message }
