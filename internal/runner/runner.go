// Package runner drives reconciliation passes over the task directory and
// hosts the optional daemon mode.
//
// Records are independent: a pass processes each one fully (load →
// reconcile → persist) before touching the next, and one record's failure
// never stops the rest of the pass. Nothing is written for a failed record,
// so the next pass naturally retries it.
package runner

import (
	"context"
	"time"

	"recurd/internal/notify"
	"recurd/internal/reconcile"
	"recurd/internal/record"
	"recurd/internal/storage"
	"recurd/internal/taskdir"
	"recurd/pkg/logx"
)

type Runner struct {
	dir      *taskdir.Dir
	remote   reconcile.Remote
	rec      *reconcile.Reconciler
	hist     storage.Store   // may be nil (disabled)
	notifier *notify.Service // may be nil (disabled)
	log      logx.Logger
}

func New(dir *taskdir.Dir, remote reconcile.Remote, zone *time.Location, hist storage.Store, notifier *notify.Service, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Runner{
		dir:      dir,
		remote:   remote,
		rec:      reconcile.New(remote, zone, log),
		hist:     hist,
		notifier: notifier,
		log:      log,
	}
}

// Summary counts what one pass did.
type Summary struct {
	Processed int
	Changed   int
	Failed    int
}

// RunOnce reconciles every record in the task directory. Only a failure to
// list the directory fails the pass itself; record-level failures are
// counted, logged, and isolated.
func (r *Runner) RunOnce(ctx context.Context) (Summary, error) {
	start := time.Now()
	names, err := r.dir.List()
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, name := range names {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}

		cycleStart := time.Now()
		outcome, instance, err := r.processRecord(ctx, name)
		sum.Processed++

		entry := storage.CycleEntry{
			At:       cycleStart,
			Task:     name,
			Outcome:  outcome.String(),
			Instance: instance,
			TookMS:   time.Since(cycleStart).Milliseconds(),
		}

		if err != nil {
			sum.Failed++
			entry.Outcome = "error"
			entry.Error = err.Error()
			r.log.Error("record cycle failed", logx.String("task", name), logx.Err(err))
			r.notifier.Failed(name, err)
		} else {
			if outcome.Changed() {
				sum.Changed++
			}
			r.log.Debug("record cycle done",
				logx.String("task", name),
				logx.String("outcome", outcome.String()))
		}

		r.appendHistory(ctx, entry)
	}

	r.log.Info("pass complete",
		logx.Int("processed", sum.Processed),
		logx.Int("changed", sum.Changed),
		logx.Int("failed", sum.Failed),
		logx.Duration("took", time.Since(start)))
	return sum, nil
}

// processRecord runs the full pipeline for one record. The updated record
// is persisted only when the cycle both succeeded and changed something, so
// a failure leaves the on-disk state exactly as it was.
func (r *Runner) processRecord(ctx context.Context, name string) (reconcile.Outcome, string, error) {
	data, err := r.dir.Read(name)
	if err != nil {
		return reconcile.OutcomeUnchanged, "", err
	}

	rec, err := record.Load(data)
	if err != nil {
		return reconcile.OutcomeUnchanged, "", err
	}

	outcome, err := r.rec.Cycle(ctx, rec)
	if err != nil {
		return reconcile.OutcomeUnchanged, "", err
	}

	instance := ""
	if rec.Current != nil {
		instance = rec.Current.ID
	}

	if !outcome.Changed() {
		return outcome, instance, nil
	}

	out, err := rec.Marshal()
	if err != nil {
		return outcome, instance, err
	}
	if err := r.dir.WriteAtomic(name, out); err != nil {
		return outcome, instance, err
	}

	if outcome == reconcile.OutcomeSpawned || outcome == reconcile.OutcomeClosedSpawned {
		r.notifier.Spawned(rec.Title, instance)
	}
	return outcome, instance, nil
}

func (r *Runner) appendHistory(ctx context.Context, e storage.CycleEntry) {
	if r.hist == nil {
		return
	}
	if err := r.hist.AppendCycle(ctx, e); err != nil {
		r.log.Warn("history append failed", logx.String("task", e.Task), logx.Err(err))
	}
}
