package rpcserver

import (
	"math/big"

	"github.com/blackcoin-project/blkd/chaincfg/difficulty"
	"github.com/blackcoin-project/blkd/rpcmodel"
)

// handleGetStakingInfo handles the getstakinginfo command, per spec.md
// §6's field list and expectedtime formula.
func handleGetStakingInfo(s *Server, cmd interface{}) (interface{}, error) {
	tip := s.cfg.Tip()

	staking := s.cfg.Staker != nil && s.cfg.Staker.IsStaking()

	var weight, netWeight, searchInterval int64
	if s.cfg.Staker != nil {
		weight = s.cfg.Staker.Weight()
		netWeight = s.cfg.Staker.NetworkWeight()
		searchInterval = s.cfg.Staker.SearchInterval()
	}

	var expectedTime int64
	if staking && weight > 0 {
		// expectedtime = 1.0455 * target_spacing * net_weight / weight
		expectedTime = int64(1.0455 * float64(s.cfg.Params.TargetSpacingV2) * float64(netWeight) / float64(weight))
	}

	var pooled uint64
	if s.cfg.Mempool != nil {
		it := s.cfg.Mempool.NewIterator()
		for {
			if _, ok := it.Next(); !ok {
				break
			}
			pooled++
		}
	}

	var bits uint32
	if tip != nil {
		bits = tip.Bits
	} else {
		bits = s.cfg.Params.PowLimitBits
	}

	var height int32
	if tip != nil {
		height = tip.Height
	}

	return &rpcmodel.GetStakingInfoResult{
		Enabled:        s.cfg.Staker != nil,
		Staking:        staking,
		Blocks:         height,
		PooledTx:       pooled,
		Difficulty:     compactToDifficulty(bits, s.cfg.Params.PowLimit),
		SearchInterval: searchInterval,
		Weight:         weight,
		NetStakeWeight: netWeight,
		ExpectedTime:   expectedTime,
		Chain:          s.cfg.ChainName,
		Warnings:       "",
	}, nil
}

// compactToDifficulty converts a compact target into the familiar
// "multiple of the network's easiest possible target" figure, the same
// ratio original_source's GetDifficulty reports.
func compactToDifficulty(bits uint32, limit *big.Int) float64 {
	target := difficulty.CompactToBig(bits)
	if target.Sign() <= 0 {
		return 0
	}
	ratio := new(big.Float).Quo(new(big.Float).SetInt(limit), new(big.Float).SetInt(target))
	f, _ := ratio.Float64()
	return f
}
