package rpcserver

import (
	"github.com/blackcoin-project/blkd/mining/stake"
	"github.com/blackcoin-project/blkd/rpcmodel"
)

// handleReserveBalance handles the reservebalance command: with Reserve
// unset it merely reports the current setting; with Reserve true it
// rounds Amount down to the nearest CENT and rejects a negative amount.
func handleReserveBalance(s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*rpcmodel.ReserveBalanceCmd)

	if c.Reserve != nil && *c.Reserve {
		if c.Amount == nil || *c.Amount < 0 {
			return nil, rpcmodel.NewRPCError(rpcmodel.ErrRPCInvalidParameter, "amount cannot be negative")
		}
		amount := amountToAtoms(*c.Amount)
		s.cfg.StakeCfg.ReserveBalance = (amount / stake.Cent) * stake.Cent
	} else if c.Reserve != nil && !*c.Reserve {
		s.cfg.StakeCfg.ReserveBalance = 0
	}

	return &rpcmodel.ReserveBalanceResult{
		ReserveBalance: atomsToAmount(s.cfg.StakeCfg.ReserveBalance),
	}, nil
}

// amountToAtoms/atomsToAmount convert between the RPC's float coin
// amounts and the int64 atom amounts every consensus/mining type uses
// internally, at the same 10^8 scale as original_source's COIN.
const coin = 100_000_000

func amountToAtoms(v float64) int64 {
	return int64(v*coin + 0.5)
}

func atomsToAmount(v int64) float64 {
	return float64(v) / coin
}
