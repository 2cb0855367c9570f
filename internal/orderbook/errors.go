package orderbook

import "errors"

var (
	// ErrOrderNotFound is returned by Remove when the given id has no
	// resting order (already matched, already cancelled, or unknown).
	ErrOrderNotFound = errors.New("orderbook: order not found")

	// ErrNotOwner is returned by Remove when sender does not match the
	// resting order's original Sender.
	ErrNotOwner = errors.New("orderbook: sender does not own order")

	// ErrDuplicateOrder is returned by Add when ID already identifies a
	// resting order.
	ErrDuplicateOrder = errors.New("orderbook: duplicate order id")

	// ErrInvalidOrder is returned by Add for a structurally invalid
	// order (non-positive size, non-positive price on a Limit-family order).
	ErrInvalidOrder = errors.New("orderbook: invalid order")
)
