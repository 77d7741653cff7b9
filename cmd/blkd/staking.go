package main

import (
	"context"
	"sync"
	"time"

	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/mining"
	"github.com/blackcoin-project/blkd/mining/stake"
	"github.com/blackcoin-project/blkd/staker"
)

// stakerControl owns the lifecycle of one staker.Staker goroutine,
// implementing both staker.WaitCondition (the conditions its own round
// loop waits on) and rpcserver.StakerControl (the RPC-visible start/
// stop/weight surface), the same way a real wallet process would own
// both ends of that boundary.
type stakerControl struct {
	mu        sync.Mutex
	enabled   bool
	running   bool
	cancel    context.CancelFunc
	startedAt time.Time

	params *chaincfg.Params
	c      *chain
	pool   stake.CoinProvider
	signer stake.SigningProvider
	gen    *mining.Generator
	stkCfg *stake.Params
}

func newStakerControl(params *chaincfg.Params, c *chain, pool stake.CoinProvider, signer stake.SigningProvider, gen *mining.Generator, stkCfg *stake.Params) *stakerControl {
	return &stakerControl{params: params, c: c, pool: pool, signer: signer, gen: gen, stkCfg: stkCfg}
}

// WaitCondition implementation.

func (s *stakerControl) WalletLocked() bool { return false }
func (s *stakerControl) StakingEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}
func (s *stakerControl) Importing() bool       { return false }
func (s *stakerControl) Reindexing() bool      { return false }
func (s *stakerControl) PeerCount() int        { return 1 }
func (s *stakerControl) SyncProgress() float64 { return 1 }

// StakerControl implementation.

func (s *stakerControl) IsStaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *stakerControl) Weight() int64 {
	coins, err := s.pool.StakeableCoins()
	if err != nil {
		return 0
	}
	var total int64
	for _, c := range coins {
		total += c.Value
	}
	return total
}

// NetworkWeight has no network to observe in this daemon (spec.md §1
// places P2P networking out of scope); it reports this node's own
// weight as a lower bound.
func (s *stakerControl) NetworkWeight() int64 {
	return s.Weight()
}

// SearchInterval reports how long this round of staking has been
// running, the wallclock analogue of the per-round nSearchInterval the
// original RPC surface reports.
func (s *stakerControl) SearchInterval() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return int64(time.Since(s.startedAt).Seconds())
}

// SetStaking starts or stops the staker loop, returning the wallet-state
// error spec.md §6 names when there's nothing stakeable to start with.
func (s *stakerControl) SetStaking(enable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enable == s.running {
		s.enabled = enable
		return nil
	}

	if enable {
		coins, err := s.pool.StakeableCoins()
		if err != nil {
			return err
		}
		if len(coins) == 0 {
			return errStakerNoPrivateKeys
		}
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.enabled = true
		s.running = true
		s.startedAt = time.Now()
		st := staker.New(staker.Config{
			Params:    s.params,
			Tip:       s.c,
			Wait:      s,
			Generator: s.gen,
			Coins:     s.pool,
			Signer:    s.signer,
			CoinView:  s.c,
			Submitter: s.c,
			Subsidy:   subsidy,
			StakeCfg:  *s.stkCfg,
		})
		go func() {
			_ = st.Run(ctx)
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()
		return nil
	}

	s.enabled = false
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

var errStakerNoPrivateKeys = stakerRPCError("wallet has no private keys")

type stakerRPCError string

func (e stakerRPCError) Error() string { return string(e) }
