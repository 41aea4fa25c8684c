package credit

import "errors"

// Domain-level error values returned by the credit ledger.
var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("credit amount must be positive")
)
