package book

import "errors"

// Sentinel errors. None of these are returned from the nominal operation
// surface (AddOrder/CancelOrder/ModifyOrder reject silently, per spec.md
// §7); they exist so tests and callers building a richer API on top of
// Book can identify failure modes precisely.
var (
	// ErrInvalidQuantity is returned by order constructors given a
	// zero or negative quantity.
	ErrInvalidQuantity = errors.New("book: invalid quantity")
	// ErrFillExceedsRemaining is the panic payload raised if the
	// matching loop ever computes a fill larger than an order's
	// remaining quantity. This must never happen; its presence signals
	// a matching-loop bug, not a recoverable runtime condition.
	ErrFillExceedsRemaining = errors.New("book: fill exceeds remaining quantity")
)
