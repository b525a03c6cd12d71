package reconcile

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"recurd/internal/habitica"
	"recurd/internal/record"
	"recurd/pkg/logx"
)

// RecurringTagName is the well-known marker tag put on every instance this
// system creates. It is created remotely on first use if absent.
const RecurringTagName = "recurring"

const secondsPerDay = 24 * 60 * 60

// Remote is the slice of the task service the reconciler uses.
type Remote interface {
	FetchTask(ctx context.Context, id string) (*habitica.Task, error)
	CreateTodo(ctx context.Context, todo habitica.NewTodo) (*habitica.Task, error)
	EnsureTag(ctx context.Context, name string) (habitica.Tag, error)
}

// Outcome summarizes what a cycle did to a record.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeClosed
	OutcomeSpawned
	OutcomeClosedSpawned
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeClosed:
		return "closed"
	case OutcomeSpawned:
		return "spawned"
	case OutcomeClosedSpawned:
		return "closed+spawned"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Changed reports whether the record was mutated and needs persisting.
func (o Outcome) Changed() bool { return o != OutcomeUnchanged }

// Reconciler applies the lifecycle state machine to records, one at a time.
// The remote session is an explicit dependency, and "now" always comes from
// the configured reference zone so due-time decisions do not depend on the
// host machine's locale.
type Reconciler struct {
	remote Remote
	log    logx.Logger

	now  func() time.Time
	draw func(n int64) int64 // uniform over [0, n)
}

func New(remote Remote, zone *time.Location, log logx.Logger) *Reconciler {
	if zone == nil {
		zone = time.UTC
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Reconciler{
		remote: remote,
		log:    log,
		now:    func() time.Time { return time.Now().In(zone) },
		draw:   rand.Int64N,
	}
}

// Cycle runs one reconciliation cycle over rec, mutating it in place.
// Nothing observable happens on error: the caller only persists the record
// when the returned outcome reports a change and err is nil.
func (r *Reconciler) Cycle(ctx context.Context, rec *record.Record) (Outcome, error) {
	if rec.Current == nil && rec.Next == nil {
		// Only reachable when a bootstrap never completed; there is no
		// safe recovery to guess at.
		return OutcomeUnchanged, fmt.Errorf("%w: neither current nor next is set", ErrConfiguration)
	}

	outcome := OutcomeUnchanged

	if rec.Current != nil {
		res, err := habitica.Resolve(ctx, r.remote, rec.Current.ID)
		if err != nil {
			return OutcomeUnchanged, err
		}

		switch res.Status {
		case habitica.StatusOpen:
			// Still live; nothing to do.

		case habitica.StatusCompleted:
			iv := rec.Repeat.OnCompletion
			if iv == nil {
				return OutcomeUnchanged, fmt.Errorf("%w: instance completed but repeat.onCompletion is not set", ErrConfiguration)
			}
			rec.Previous = &record.Closed{
				Created:   rec.Current.Created,
				Completed: record.At(res.CompletedAt),
			}
			rec.Current = nil
			next := record.At(res.CompletedAt.Add(r.delay(iv)))
			rec.Next = &next
			outcome = OutcomeClosed

		case habitica.StatusGone:
			iv := rec.Repeat.OnDeletion
			if iv == nil {
				return OutcomeUnchanged, fmt.Errorf("%w: instance deleted but repeat.onDeletion is not set", ErrConfiguration)
			}
			// The service supplies no completion stamp for a deleted
			// instance; the observation time stands in for it.
			now := r.now()
			rec.Previous = &record.Closed{
				Created:   rec.Current.Created,
				Completed: record.At(now),
			}
			rec.Current = nil
			next := record.At(now.Add(r.delay(iv)))
			rec.Next = &next
			outcome = OutcomeClosed
		}
	}

	if rec.Next != nil && !r.now().Before(rec.Next.Time) {
		if err := r.spawn(ctx, rec); err != nil {
			return OutcomeUnchanged, err
		}
		if outcome == OutcomeClosed {
			outcome = OutcomeClosedSpawned
		} else {
			outcome = OutcomeSpawned
		}
	}

	return outcome, nil
}

// spawn creates a fresh remote instance from the record's template and
// flips the record back to Live.
func (r *Reconciler) spawn(ctx context.Context, rec *record.Record) error {
	tag, err := r.remote.EnsureTag(ctx, RecurringTagName)
	if err != nil {
		return err
	}

	task, err := r.remote.CreateTodo(ctx, habitica.NewTodo{
		Title:     rec.Title,
		Notes:     rec.Notes,
		Checklist: rec.Checklist,
		Tags:      []string{tag.ID},
	})
	if err != nil {
		return err
	}

	r.log.Info("spawned instance",
		logx.String("task", rec.Title),
		logx.String("id", task.ID))

	rec.Current = &record.Instance{ID: task.ID, Created: record.At(task.Created)}
	rec.Next = nil
	return nil
}

// delay draws a uniform delay over the closed range [min, max] whole days,
// in seconds. min == max gives a fixed interval; zero means immediately
// eligible.
func (r *Reconciler) delay(iv *record.Interval) time.Duration {
	lo := int64(iv.Min) * secondsPerDay
	hi := int64(iv.Max) * secondsPerDay
	secs := lo
	if hi > lo {
		secs = lo + r.draw(hi-lo+1)
	}
	return time.Duration(secs) * time.Second
}
