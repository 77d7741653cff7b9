// Package staker realizes StakerThread (spec.md §4.8): one long-running
// worker per wallet driving StakeSearcher (C7) into BlockAssembler (C6)
// and submitting the signed result to the chain manager.
//
// Grounded on original_source/src/node/miner.cpp's PoSMiner for the
// exact wait/build/sign/submit/sleep sequence (its three staged wait
// loops, the pos_timio formula, the post-submit 16+rand(4)s rest), and
// on the teacher's long-running worker-loop idiom — an outer `for {
// select { case <-ctx.Done(): ...} }` with explicit sleeps
// (domain/consensus/processes/blockprocessor-style goroutines) — for
// HOW the loop is shaped in Go, replacing PoSMiner's bespoke
// SleepStaker/fShutdown plumbing with context.Context, the idiomatic Go
// form of spec.md §9's "cooperative primitive with a cancellation flag".
package staker

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/blockchain/validate"
	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/mining"
	"github.com/blackcoin-project/blkd/mining/stake"
	"github.com/blackcoin-project/blkd/txscript"
	"github.com/blackcoin-project/blkd/wire"
)

// baseStakeTimeout is -staketimio's default, per
// original_source/src/node/miner.cpp's DEFAULT_STAKETIMIO convention.
const baseStakeTimeout = 500 * time.Millisecond

// restAfterFound is the fixed part of the post-submission self-
// competition backoff; the random part adds 0-3 more whole seconds.
const restAfterFound = 16 * time.Second

// WaitCondition reports the external state a staker round must wait on
// before attempting a build, per spec.md §4.8 step 1.
type WaitCondition interface {
	WalletLocked() bool
	StakingEnabled() bool
	Importing() bool
	Reindexing() bool
	PeerCount() int
	SyncProgress() float64
}

// ChainTip reports the chain tip a round should build its template
// against.
type ChainTip interface {
	Tip() *blockchain.BlockIndex
}

// ChainSubmitter is the external chain-manager collaborator spec.md
// §4.8 step 4's process_new_block call names; this package never
// touches chain state beyond this one narrow write.
type ChainSubmitter interface {
	ProcessNewBlock(block *wire.MsgBlock) error
}

// Config groups one staker round's collaborators.
type Config struct {
	Params    *chaincfg.Params
	Tip       ChainTip
	Wait      WaitCondition
	Generator *mining.Generator
	Coins     stake.CoinProvider
	Signer    stake.SigningProvider
	CoinView  blockchain.CoinView
	Submitter ChainSubmitter
	Subsidy   validate.SubsidyFunc
	StakeCfg  stake.Params

	// IsRegtest skips the peer-count wait, per spec.md §4.8 step 1's
	// "no peers (non-regtest)".
	IsRegtest bool
	// StakeTimeout overrides baseStakeTimeout; zero keeps the default.
	StakeTimeout time.Duration
	// Now returns the current adjusted time in seconds; defaults to
	// time.Now().Unix().
	Now func() int64
	// Rand drives the post-submission jitter sleep; defaults to a
	// package-level source if nil.
	Rand *rand.Rand
}

// Staker runs one wallet's StakerThread.
type Staker struct {
	cfg Config
	now func() int64
	rnd *rand.Rand

	lastSearchTime int64
}

// New returns a Staker ready to Run.
func New(cfg Config) *Staker {
	now := cfg.Now
	if now == nil {
		now = func() int64 { return time.Now().Unix() }
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(now()))
	}
	return &Staker{cfg: cfg, now: now, rnd: rnd, lastSearchTime: now()}
}

// Run drives the staker loop until ctx is cancelled, per spec.md §4.8
// steps 1-5. It returns nil on clean cancellation.
func (s *Staker) Run(ctx context.Context) error {
	log.Info("staker thread started")
	defer log.Info("staker thread stopped")

	for {
		if err := s.waitUntilReady(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		timeout, err := s.computeTimeout(ctx)
		if err != nil {
			return err
		}

		cancelled, err := s.runRoundCatchingPanics(ctx, timeout)
		if cancelled {
			return nil
		}
		if err != nil {
			log.Errorf("staker round failed: %+v", err)
			// runRound returns an error before it reaches any of its own
			// sleeps; pace retries here so a persistent failure doesn't
			// spin the loop.
			if sleepErr := s.sleep(ctx, timeout); sleepErr != nil {
				return nil
			}
		}
	}
}

// waitUntilReady blocks through spec.md §4.8 step 1's three staged
// wait conditions, each per-condition with its own poll interval,
// mirroring PoSMiner's three separate `while` loops over lock/enabled/
// reindex/importing, then peers, then sync progress.
func (s *Staker) waitUntilReady(ctx context.Context) error {
	for s.cfg.Wait.WalletLocked() || !s.cfg.Wait.StakingEnabled() || s.cfg.Wait.Importing() || s.cfg.Wait.Reindexing() {
		if err := s.sleep(ctx, 5*time.Second); err != nil {
			return nil
		}
	}
	if !s.cfg.IsRegtest {
		for s.cfg.Wait.PeerCount() == 0 {
			if err := s.sleep(ctx, 10*time.Second); err != nil {
				return nil
			}
		}
	}
	for s.cfg.Wait.SyncProgress() < 0.996 {
		log.Debugf("staker thread sleeps while sync at %.6f", s.cfg.Wait.SyncProgress())
		if err := s.sleep(ctx, 10*time.Second); err != nil {
			return nil
		}
	}
	return nil
}

// computeTimeout implements spec.md §4.8 step 2's adaptive
// pos_timeout = base + 30*sqrt(utxo_count), recomputed once per outer
// cycle against the wallet's current eligible coin count.
func (s *Staker) computeTimeout(ctx context.Context) (time.Duration, error) {
	coins, err := s.cfg.Coins.StakeableCoins()
	if err != nil {
		return 0, errors.Wrap(err, "enumerating staking coins for timeout calculation")
	}
	base := s.cfg.StakeTimeout
	if base == 0 {
		base = baseStakeTimeout
	}
	extra := time.Duration(30*math.Sqrt(float64(len(coins)))) * time.Millisecond
	timeout := base + extra
	log.Debugf("set proof-of-stake timeout: %s for %d UTXOs", timeout, len(coins))
	return timeout, nil
}

// runRoundCatchingPanics recovers a panic escaping runRound into an
// error, the Go realization of spec.md §4.8 step 5's "catch runtime
// errors at the outermost scope; log and continue" — the loop's own
// caller is responsible for actually continuing.
func (s *Staker) runRoundCatchingPanics(ctx context.Context, timeout time.Duration) (cancelled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in staker round: %v", r)
		}
	}()
	return s.runRound(ctx, timeout)
}

// runRound implements spec.md §4.8 steps 3-4: build a template, sign
// and submit a PoS result, or sleep out a cancelled round.
func (s *Staker) runRound(ctx context.Context, timeout time.Duration) (cancelled bool, err error) {
	tip := s.cfg.Tip.Tip()

	searchTime := s.maskedNow()
	if searchTime <= s.lastSearchTime {
		return false, nil
	}
	searchInterval := searchTime - s.lastSearchTime
	s.lastSearchTime = searchTime

	searcher := stake.NewSearcher(s.cfg.Params, tip, s.cfg.Coins, s.cfg.Signer, s.cfg.StakeCfg, s.cfg.Subsidy, s.now)

	template, posCancel, err := s.cfg.Generator.CreateNewBlock(tip, nil, searcher.Search, searchInterval)
	if err != nil {
		return false, errors.Wrap(err, "building proof-of-stake block template")
	}
	if posCancel {
		if sleepErr := s.sleep(ctx, timeout); sleepErr != nil {
			return true, nil
		}
		return false, nil
	}

	block := template.Block
	if block.Header.IsProofOfStake() {
		if err := s.signBlock(block); err != nil {
			return false, errors.Wrap(err, "signing proof-of-stake block")
		}
		log.Infof("proof-of-stake block found %s", block.Header.BlockHash())
		if err := s.cfg.Submitter.ProcessNewBlock(block); err != nil {
			return false, errors.Wrap(err, "submitting proof-of-stake block")
		}
		rest := restAfterFound + time.Duration(s.rnd.Intn(4))*time.Second
		if sleepErr := s.sleep(ctx, rest); sleepErr != nil {
			return true, nil
		}
	}

	if sleepErr := s.sleep(ctx, timeout); sleepErr != nil {
		return true, nil
	}
	return false, nil
}

// signBlock resolves the coinstake kernel input's private key through
// CoinView + SigningProvider and appends the trailing block signature,
// per spec.md §4.4's verify_block_signature counterpart.
func (s *Staker) signBlock(block *wire.MsgBlock) error {
	coinstake := block.CoinstakeTx()
	if coinstake == nil || len(coinstake.TxIn) == 0 {
		return errors.New("proof-of-stake block carries no coinstake kernel input")
	}
	kernelOutpoint := coinstake.TxIn[0].PreviousOutPoint
	coin, ok := s.cfg.CoinView.FetchCoin(kernelOutpoint)
	if !ok {
		return errors.New("kernel input not found in coin view")
	}
	privKey, ok := s.cfg.Signer.PrivateKeyForScript(coin.PkScript)
	if !ok {
		return errors.WithStack(ErrWalletLocked)
	}
	return txscript.SignBlock(block, privKey)
}

func (s *Staker) maskedNow() int64 {
	now := s.now()
	return now &^ int64(s.cfg.Params.StakeTimestampMask)
}

// sleep blocks for d or until ctx is cancelled, returning ctx.Err() in
// the latter case.
func (s *Staker) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
