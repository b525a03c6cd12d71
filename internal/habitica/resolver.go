package habitica

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Status classifies what the service says about a tracked instance.
type Status int

const (
	// StatusOpen: the instance exists and is not completed.
	StatusOpen Status = iota
	// StatusCompleted: the instance exists and is marked done.
	StatusCompleted
	// StatusGone: the service reports the instance no longer exists.
	StatusGone
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusCompleted:
		return "completed"
	case StatusGone:
		return "gone"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Resolution is the resolver's answer. CompletedAt is set only for
// StatusCompleted.
type Resolution struct {
	Status      Status
	CompletedAt time.Time
}

// Fetcher is the single remote call the resolver needs.
type Fetcher interface {
	FetchTask(ctx context.Context, id string) (*Task, error)
}

// Resolve asks the service about one instance and classifies the outcome.
//
// Only ErrNotFound maps to StatusGone. Every other failure propagates
// unchanged so the caller aborts the cycle instead of wrongly advancing the
// lifecycle on a transient outage.
func Resolve(ctx context.Context, remote Fetcher, id string) (Resolution, error) {
	task, err := remote.FetchTask(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Resolution{Status: StatusGone}, nil
	}
	if err != nil {
		return Resolution{}, err
	}

	if !task.Completed {
		return Resolution{Status: StatusOpen}, nil
	}
	if task.CompletedAt == nil || task.CompletedAt.IsZero() {
		// A completed task without its completion stamp is a malformed
		// response, not a lifecycle signal.
		return Resolution{}, fmt.Errorf("%w: task %s completed without dateCompleted", ErrUnavailable, id)
	}
	return Resolution{Status: StatusCompleted, CompletedAt: *task.CompletedAt}, nil
}
