package main

import (
	"sync/atomic"
	"time"

	"github.com/blackcoin-project/blkd/config"
	"github.com/blackcoin-project/blkd/mining"
	"github.com/blackcoin-project/blkd/mining/mempool"
	"github.com/blackcoin-project/blkd/mining/stake"
	"github.com/blackcoin-project/blkd/rpcserver"
)

// blkd wraps every long-running service this daemon owns, grounded on
// the teacher's kaspad wrapper (kaspad.go's `kaspad` struct): a flat
// bundle of already-constructed services plus start/stop, built once by
// newBlkd and driven by main's signal-handling loop.
type blkd struct {
	chain      *chain
	pool       *mempool.Pool
	generator  *mining.Generator
	staker     *stakerControl
	rpcServer  *rpcserver.Server

	started, shutdown int32
}

// start launches every service that needs an explicit kickoff. Only the
// staker goroutine is actually started here, since rpcServer itself
// keeps no background goroutine of its own until an RPC transport
// dispatches into it.
func (b *blkd) start() {
	if atomic.AddInt32(&b.started, 1) != 1 {
		return
	}
	log.Trace("starting blkd")

	if config.ActiveConfig().Staking {
		if err := b.staker.SetStaking(true); err != nil {
			log.Warnf("could not start staking at launch: %+v", err)
		}
	}
}

// stop gracefully shuts down every service start began.
func (b *blkd) stop() error {
	if atomic.AddInt32(&b.shutdown, 1) != 1 {
		log.Infof("blkd is already in the process of shutting down")
		return nil
	}
	log.Warnf("blkd shutting down")

	if err := b.staker.SetStaking(false); err != nil {
		log.Errorf("error stopping staker: %+v", err)
	}
	return nil
}

// newBlkd builds every service blkd owns against the active config,
// wiring the in-process chain/mempool/generator/staker/RPC collaborators
// the way newKaspad wires dag/mempool/netAdapter/connectionManager/
// rpcServer — minus any peer-to-peer transport, which spec.md §1 places
// outside this repository's scope.
func newBlkd() (*blkd, error) {
	cfg := config.ActiveConfig()
	params := cfg.NetParams

	now := func() int64 { return time.Now().Unix() }

	c := newChain(params, now)
	pool := mempool.NewPool()
	generator := mining.NewGenerator(mining.Policy{
		BlockMaxWeight: int64(cfg.BlockMaxWeight),
	}, params, pool, subsidy, now)

	wallet := nullWallet{}
	stakeCfg := &stake.Params{
		ReserveBalance: int64(cfg.ReserveBalance*coin + 0.5),
	}

	staker := newStakerControl(params, c, wallet, wallet, generator, stakeCfg)

	rpcServer := rpcserver.NewServer(rpcserver.Config{
		Params:    params,
		ChainName: cfg.NetworkName,
		Tip:       c.Tip,
		CoinView:  c,
		Mempool:   pool,
		Generator: generator,
		Staker:    staker,
		StakeCfg:  stakeCfg,
		Signer:    wallet,
		Subsidy:   subsidy,
		Now:       now,
	})

	return &blkd{
		chain:     c,
		pool:      pool,
		generator: generator,
		staker:    staker,
		rpcServer: rpcServer,
	}, nil
}
