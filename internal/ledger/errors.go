package ledger

import "errors"

var (
	// ErrInvalidAmount rejects non-positive amounts and slide counts.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientBalance is a business-rule failure, not a fault: the
	// account stays untouched and the caller reports it to the user.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
