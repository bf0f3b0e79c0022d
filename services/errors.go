package services

import "errors"

var (
	// ErrDataIntegrity wraps malformed bet fields. The bet fails closed and
	// the batch continues.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrLockHeld means another worker holds an unexpired settlement lock.
	ErrLockHeld = errors.New("settlement lock held")

	// ErrDrawMissing means settlement was invoked before a draw result exists.
	ErrDrawMissing = errors.New("draw result missing")

	// ErrHierarchy marks a broken agent parent chain. Distribution truncates
	// and the remainder stays with the platform.
	ErrHierarchy = errors.New("agent hierarchy broken")

	// ErrFatalConfig covers invalid market caps and similar operator-level
	// misconfiguration. Never retried automatically.
	ErrFatalConfig = errors.New("fatal config error")
)
