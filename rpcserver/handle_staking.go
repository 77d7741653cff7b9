package rpcserver

import (
	"github.com/blackcoin-project/blkd/rpcmodel"
)

// handleStaking handles the staking command: reports the current
// running state when Enable is nil, otherwise starts or stops the
// staker loop.
func handleStaking(s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*rpcmodel.StakingCmd)

	if s.cfg.Staker == nil {
		return nil, rpcmodel.NewRPCError(rpcmodel.ErrRPCWalletError, "wallet is blank")
	}

	if c.Enable != nil {
		if err := s.cfg.Staker.SetStaking(*c.Enable); err != nil {
			return nil, rpcmodel.NewRPCError(rpcmodel.ErrRPCWalletError, err.Error())
		}
	}

	return &rpcmodel.StakingResult{Staking: s.cfg.Staker.IsStaking()}, nil
}
