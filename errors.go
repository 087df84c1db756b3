package nsub

import "errors"

var (
	// ErrBadSubscription is returned for operations on a subscription that is closed
	// or has no connection.
	ErrBadSubscription = errors.New("invalid subscription")
	// ErrConnectionClosed is returned when the owning connection is closed.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrConnectionDraining is returned by Unsubscribe while the owning connection drains.
	ErrConnectionDraining = errors.New("connection draining")
	// ErrTimeout is returned when a retrieval or a drain misses its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrInvalidArg is returned for zero pending limits and non-positive drain timeouts.
	ErrInvalidArg = errors.New("invalid argument")
)
