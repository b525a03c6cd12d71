package runner

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"recurd/pkg/logx"
)

// watchDebounce coalesces bursts of file events (editor saves, our own
// atomic renames) into a single early pass.
const watchDebounce = 2 * time.Second

// RunDaemon runs reconciliation passes on the given schedule until ctx is
// cancelled. Changes in the task directory trigger an early pass so a
// hand-edited or freshly bootstrapped record does not wait for the next
// tick.
//
// Passes are serialized by construction: everything runs on this one
// goroutine, and a trigger arriving mid-pass collapses into at most one
// queued pass.
func (r *Runner) RunDaemon(ctx context.Context, sched Schedule) error {
	trigger := make(chan struct{}, 1)
	kick := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	var tickC <-chan time.Time
	if sched.IsCron() {
		cr := cron.New()
		if _, err := cr.AddFunc(sched.Cron, kick); err != nil {
			return err
		}
		cr.Start()
		defer cr.Stop()
	} else {
		tick := time.NewTicker(sched.Every)
		defer tick.Stop()
		tickC = tick.C
	}

	var events chan fsnotify.Event
	var watchErrs chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.log.Warn("task directory watch unavailable", logx.Err(err))
	} else {
		defer watcher.Close()
		if err := watcher.Add(r.dir.Root()); err != nil {
			r.log.Warn("task directory watch failed", logx.String("dir", r.dir.Root()), logx.Err(err))
		} else {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
	}

	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}

	// systemd integration is a no-op outside a unit with NOTIFY_SOCKET.
	if sent, err := sd.SdNotify(false, sd.SdNotifyReady); err != nil {
		r.log.Warn("sd_notify failed", logx.Err(err))
	} else if sent {
		r.log.Debug("sd_notify ready")
	}
	var watchdogC <-chan time.Time
	if interval, err := sd.SdWatchdogEnabled(false); err == nil && interval > 0 {
		wd := time.NewTicker(interval / 2)
		defer wd.Stop()
		watchdogC = wd.C
	}

	r.log.Info("daemon started", logx.String("schedule", sched.String()))

	run := func() {
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.log.Error("pass failed", logx.Err(err))
		}
	}
	run()

	for {
		select {
		case <-ctx.Done():
			_, _ = sd.SdNotify(false, sd.SdNotifyStopping)
			r.log.Info("daemon stopping")
			return nil

		case <-trigger:
			run()

		case <-tickC:
			run()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			// Hidden files are temp/swap noise; visible changes get a
			// debounced early pass.
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			debounce.Reset(watchDebounce)

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			r.log.Warn("task directory watch error", logx.Err(err))

		case <-debounce.C:
			kick()

		case <-watchdogC:
			_, _ = sd.SdNotify(false, sd.SdNotifyWatchdog)
		}
	}
}
