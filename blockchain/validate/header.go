package validate

import (
	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/chaincfg/difficulty"
	"github.com/blackcoin-project/blkd/wire"
)

// CheckBlockHeader runs the four structural checks spec.md §4.4 names
// for a header in isolation: target well-formedness, the median-time-
// past/future-drift window, the PoS timestamp mask, and (PoW only) the
// proof-of-work hash test.
func CheckBlockHeader(h *wire.BlockHeader, prev *blockchain.BlockIndex, params *chaincfg.Params, now int64) error {
	limit := params.PowLimit
	isPoS := h.IsProofOfStake()
	if isPoS {
		limit = params.ActivePosLimit(int64(h.Timestamp))
	}
	target := difficulty.CompactToBig(h.Bits)
	if target.Sign() <= 0 || target.Cmp(limit) > 0 || difficulty.IsNegative(h.Bits) || difficulty.IsOverflow(h.Bits) {
		return errors.Wrapf(ErrBadDifficultyBits, "bits %08x decodes outside (0, limit] for kind is_pos=%v", h.Bits, isPoS)
	}

	mtp := blockchain.MedianTimePast(prev)
	if prev != nil && int64(h.Timestamp) <= mtp {
		return errors.Wrapf(ErrTimeTooOld, "header time %d is not after median time past %d", h.Timestamp, mtp)
	}
	if int64(h.Timestamp) > now+MaxFutureDrift {
		return errors.Wrapf(ErrTimeTooNew, "header time %d exceeds now+drift %d", h.Timestamp, now+MaxFutureDrift)
	}

	if isPoS && h.Timestamp&params.StakeTimestampMask != 0 {
		return errors.Wrapf(ErrStakeTimestampMask, "PoS header time %d violates mask %#x", h.Timestamp, params.StakeTimestampMask)
	}

	if !isPoS {
		hash := h.BlockHash()
		if !difficulty.CheckProofOfWork(hash[:], h.Bits, params.PowLimit) {
			return errors.Wrapf(ErrInvalidPoW, "block hash does not satisfy bits %08x", h.Bits)
		}
	}

	return nil
}
