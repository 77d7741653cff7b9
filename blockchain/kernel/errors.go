package kernel

// Error wraps one of the named kernel-validation failure kinds below,
// grounded on the teacher's domain/consensus/ruleerrors.RuleError shape:
// a comparable value type carrying a fixed message and an optional inner
// error, so callers can match a specific kind with errors.Is.
type Error struct {
	message string
	inner   error
}

func (e Error) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the standard errors.Unwrap interface.
func (e Error) Unwrap() error {
	return e.inner
}

// Cause satisfies github.com/pkg/errors.Cause.
func (e Error) Cause() error {
	return e.inner
}

func newKernelError(message string) Error {
	return Error{message: message}
}

// The failure kinds named in spec.md §4.3.
var (
	// ErrBadCoinstakeFormat indicates the supposed coinstake transaction
	// does not satisfy the coinstake shape invariant.
	ErrBadCoinstakeFormat = newKernelError("ErrBadCoinstakeFormat")
	// ErrKernelImmature indicates the kernel's coin does not yet have
	// CoinbaseMaturity confirmations.
	ErrKernelImmature = newKernelError("ErrKernelImmature")
	// ErrKernelHashMiss indicates the kernel hash test failed for every
	// timestamp in the search window.
	ErrKernelHashMiss = newKernelError("ErrKernelHashMiss")
	// ErrBadKernelSignature indicates the coinstake's signature over the
	// kernel input does not verify against the claimed output key.
	ErrBadKernelSignature = newKernelError("ErrBadKernelSignature")
	// ErrStakeModifierUnavailable indicates the stake modifier for the
	// requested block could not be resolved.
	ErrStakeModifierUnavailable = newKernelError("ErrStakeModifierUnavailable")
	// ErrTimestampMaskViolated indicates a coinstake or block timestamp
	// does not satisfy the network's StakeTimestampMask.
	ErrTimestampMaskViolated = newKernelError("ErrTimestampMaskViolated")
	// ErrCoinNotFound indicates the kernel's outpoint could not be
	// resolved through the CoinView.
	ErrCoinNotFound = newKernelError("ErrCoinNotFound")
)
