package rpcserver

import (
	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/mining/stake"
	"github.com/blackcoin-project/blkd/wire"
)

// singleCoinProvider is a stake.CoinProvider that always yields exactly
// the one coin checkkernel's caller named, so the probe's template
// build can reuse CreateCoinstake unmodified instead of duplicating its
// reward/fee/signing logic.
type singleCoinProvider struct {
	StakeableCoin stake.StakeableCoin
}

func (p singleCoinProvider) StakeableCoins() ([]stake.StakeableCoin, error) {
	return []stake.StakeableCoin{p.StakeableCoin}, nil
}

// coinToStakeable adapts a CoinView lookup into the StakeableCoin shape
// CreateCoinstake expects, treating the probed coin as trusted and
// spendable since checkkernel is explicitly asked to try it.
func coinToStakeable(outpoint wire.OutPoint, coin *blockchain.Coin, tip *blockchain.BlockIndex) stake.StakeableCoin {
	depth := int32(0)
	if tip != nil {
		depth = tip.Height + 1 - coin.Height
	}
	return stake.StakeableCoin{
		OutPoint:      outpoint,
		Value:         coin.Amount,
		PkScript:      coin.PkScript,
		Depth:         depth,
		Trusted:       true,
		Spendable:     true,
		BlockFromTime: coin.BlockFromTime,
		TxTime:        coin.TxTime,
	}
}

// searcherFor builds the mining.StakeSearchFunc a probe template build
// hands to Generator.CreateNewBlock.
func searcherFor(provider stake.CoinProvider, s *Server) func(bits uint32, searchInterval int64, fees int64) (*wire.MsgTx, bool) {
	searcher := stake.NewSearcher(s.cfg.Params, s.cfg.Tip(), provider, s.cfg.Signer, *s.cfg.StakeCfg, s.cfg.Subsidy, s.cfg.Now)
	return searcher.Search
}
