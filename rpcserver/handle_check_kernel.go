package rpcserver

import (
	"bytes"
	"encoding/hex"

	"github.com/blackcoin-project/blkd/blockchain/kernel"
	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/rpcmodel"
	"github.com/blackcoin-project/blkd/wire"
)

// parseTxID parses a display-order (byte-reversed) hex hash string, the
// inverse of chainhash.Hash.String.
func parseTxID(s string) (chainhash.Hash, error) {
	var h chainhash.Hash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(raw) != chainhash.HashSize {
		return h, chainhash.ErrHashStrSize
	}
	for i, b := range raw {
		h[chainhash.HashSize-1-i] = b
	}
	return h, nil
}

// handleCheckKernel handles the checkkernel command: it probes each
// candidate outpoint's kernel hash at the current masked time and, for
// the first that passes, optionally builds a full block template.
func handleCheckKernel(s *Server, cmd interface{}) (interface{}, error) {
	c := cmd.(*rpcmodel.CheckKernelCmd)

	tip := s.cfg.Tip()
	if tip == nil {
		return nil, rpcmodel.NewRPCError(rpcmodel.ErrRPCClientInInitialDownload, "no chain tip available")
	}

	tryTime := uint32(s.cfg.Now() &^ int64(s.cfg.Params.StakeTimestampMask))
	cache := kernel.Cache{}

	for _, in := range c.Inputs {
		hash, err := parseTxID(in.TxID)
		if err != nil {
			return nil, rpcmodel.NewRPCError(rpcmodel.ErrRPCInvalidParameter, "bad txid %q: %s", in.TxID, err)
		}
		outpoint := wire.OutPoint{Hash: hash, Index: in.Vout}

		ok, err := kernel.CheckKernel(tip, tip.Bits, tryTime, outpoint, s.cfg.CoinView, cache)
		if err != nil {
			continue
		}
		if !ok {
			continue
		}

		result := &rpcmodel.CheckKernelResult{
			Found:     true,
			TxID:      in.TxID,
			Vout:      in.Vout,
			BlockTime: int64(tryTime),
		}

		if c.CreateTemplate != nil && *c.CreateTemplate {
			coin, found := s.cfg.CoinView.FetchCoin(outpoint)
			if !found {
				return nil, rpcmodel.NewRPCError(rpcmodel.ErrRPCInternalError, "kernel coin vanished mid-probe")
			}
			provider := singleCoinProvider{StakeableCoin: coinToStakeable(outpoint, coin, tip)}
			template, posCancel, err := s.cfg.Generator.CreateNewBlock(tip, s.cfg.StakeCfg.Destination, searcherFor(provider, s), 1)
			if err != nil {
				return nil, rpcmodel.NewRPCError(rpcmodel.ErrRPCInternalError, "building probe template: %s", err)
			}
			if posCancel || template == nil {
				return result, nil
			}
			var buf bytes.Buffer
			if err := template.Block.Serialize(&buf, wire.PosMarkerVersion); err != nil {
				return nil, rpcmodel.NewRPCError(rpcmodel.ErrRPCInternalError, "serializing probe template: %s", err)
			}
			result.Template = hex.EncodeToString(buf.Bytes())
			if len(s.cfg.StakeCfg.Destination) > 0 {
				result.ChangePubKey = hex.EncodeToString(s.cfg.StakeCfg.Destination)
			}
		}

		return result, nil
	}

	return &rpcmodel.CheckKernelResult{Found: false}, nil
}
