package runner

import (
	"context"
	"fmt"
	"strings"

	"recurd/internal/habitica"
	"recurd/internal/reconcile"
	"recurd/internal/record"
	"recurd/pkg/logx"
)

// BootstrapSpec describes a new recurring definition: the template plus the
// on-completion reschedule range in whole days.
type BootstrapSpec struct {
	File      string
	Title     string
	Notes     string
	Checklist []string
	Min       int
	Max       int
}

func (s BootstrapSpec) validate() error {
	if strings.TrimSpace(s.File) == "" {
		return fmt.Errorf("bootstrap: file name required")
	}
	if strings.HasPrefix(s.File, ".") || strings.ContainsAny(s.File, "/\\") {
		return fmt.Errorf("bootstrap: invalid file name %q", s.File)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("bootstrap: title required")
	}
	if s.Min < 0 || s.Max < s.Min {
		return fmt.Errorf("bootstrap: need 0 <= min <= max, got min=%d max=%d", s.Min, s.Max)
	}
	return nil
}

// Bootstrap creates the initial remote instance for a new recurring
// definition and writes its record file. It refuses to overwrite an
// existing record.
func (r *Runner) Bootstrap(ctx context.Context, spec BootstrapSpec) error {
	if err := spec.validate(); err != nil {
		return err
	}
	if r.dir.Exists(spec.File) {
		return fmt.Errorf("bootstrap: record %q already exists", spec.File)
	}

	tag, err := r.remote.EnsureTag(ctx, reconcile.RecurringTagName)
	if err != nil {
		return err
	}
	task, err := r.remote.CreateTodo(ctx, habitica.NewTodo{
		Title:     spec.Title,
		Notes:     spec.Notes,
		Checklist: spec.Checklist,
		Tags:      []string{tag.ID},
	})
	if err != nil {
		return err
	}

	checklist := spec.Checklist
	if checklist == nil {
		checklist = []string{}
	}
	rec := &record.Record{
		Title:     spec.Title,
		Notes:     spec.Notes,
		Checklist: checklist,
		Repeat: record.Repeat{
			OnCompletion: &record.Interval{Min: spec.Min, Max: spec.Max},
		},
		Current: &record.Instance{ID: task.ID, Created: record.At(task.Created)},
	}

	out, err := rec.Marshal()
	if err != nil {
		return err
	}
	if err := r.dir.WriteAtomic(spec.File, out); err != nil {
		return err
	}

	r.log.Info("bootstrapped recurring task",
		logx.String("file", spec.File),
		logx.String("title", spec.Title),
		logx.String("id", task.ID))
	return nil
}
