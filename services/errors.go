package services

import "errors"

// Sentinel errors surfaced to API layers. Handlers map these to specific
// status codes and messages; anything else is a 500.
var (
	// ErrInvalidAmount means a non-positive credit/debit amount. This is a
	// caller bug, not a user-facing condition.
	ErrInvalidAmount = errors.New("amount must be positive")

	ErrInsufficientBalance = errors.New("insufficient FORE balance")
	ErrWalletNotFound      = errors.New("wallet not found")

	ErrRewardNotFound      = errors.New("reward not found")
	ErrNotAvailable        = errors.New("reward not available")
	ErrOutOfStock          = errors.New("reward out of stock")
	ErrPerUserLimitReached = errors.New("per-user redemption limit reached")
	ErrMissingDeliveryInfo = errors.New("delivery address required for shipped rewards")

	ErrRankingNotFound    = errors.New("ranking not found")
	ErrInvalidTransition  = errors.New("invalid redemption status transition")

	// ErrConcurrencyConflict is returned only after the bounded retry on
	// optimistic-lock conflicts is exhausted; callers should treat it as
	// transient.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// Internal outcomes of the grant path; both mean "nothing granted, not an
// error for the triggering user".
var (
	errCapacityReached = errors.New("achievement capacity reached")
	errAlreadyGranted  = errors.New("achievement already granted")
)

// maxConflictRetries bounds how often an optimistic wallet update is retried
// before ErrConcurrencyConflict surfaces.
const maxConflictRetries = 3
