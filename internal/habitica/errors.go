package habitica

import "errors"

var (
	// ErrNotFound means the service itself reported the resource gone
	// (HTTP 404). It is the only error callers may treat as a lifecycle
	// signal.
	ErrNotFound = errors.New("task not found")

	// ErrUnavailable covers everything else: connection failures,
	// non-404 error statuses, undecodable responses. Safe to retry on
	// the next pass.
	ErrUnavailable = errors.New("task service unavailable")
)
