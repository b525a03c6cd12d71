package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"recurd/internal/config"
	"recurd/internal/habitica"
	"recurd/internal/notify"
	"recurd/internal/runner"
	"recurd/internal/storage"
	"recurd/internal/taskdir"
	"recurd/pkg/logx"
)

func main() {
	var (
		cfgPath    = flag.String("config", "./recurd.yaml", "path to config (yaml or json)")
		daemonMode = flag.Bool("daemon", false, "keep running on the configured schedule")

		bootstrap = flag.String("bootstrap", "", "create a new recurring task record with this file name, then exit")
		title     = flag.String("title", "", "bootstrap: task title")
		notes     = flag.String("notes", "", "bootstrap: task notes")
		checklist = flag.String("checklist", "", "bootstrap: comma-separated checklist items")
		minDays   = flag.Int("min", 0, "bootstrap: minimum reschedule delay in days")
		maxDays   = flag.Int("max", 0, "bootstrap: maximum reschedule delay in days")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *cfgPath, *daemonMode, runner.BootstrapSpec{
		File:      *bootstrap,
		Title:     *title,
		Notes:     *notes,
		Checklist: splitChecklist(*checklist),
		Min:       *minDays,
		Max:       *maxDays,
	}); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, daemonMode bool, boot runner.BootstrapSpec) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// logx falls back to console when no sink is enabled.
	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logSvc.Close()

	zone, err := cfg.Zone()
	if err != nil {
		return err
	}

	apiTimeout, err := config.ParseDurationField("api.timeout", cfg.API.Timeout)
	if err != nil {
		return err
	}
	client, err := habitica.New(habitica.Config{
		BaseURL:    cfg.API.BaseURL,
		UserID:     cfg.API.UserID,
		APIToken:   cfg.API.APIToken,
		RatePerMin: cfg.API.RatePerMin,
		Timeout:    apiTimeout,
	}, log)
	if err != nil {
		return err
	}

	dir, err := taskdir.Open(cfg.TasksDir, log)
	if err != nil {
		return err
	}

	busy, err := config.ParseDurationField("history.busy_timeout", cfg.History.BusyTimeout)
	if err != nil {
		return err
	}
	hist, err := storage.Open(storage.Config{
		Driver:      cfg.History.Driver,
		Path:        cfg.History.Path,
		Retention:   cfg.History.Retention,
		BusyTimeout: busy,
	}, log)
	if err != nil {
		return err
	}
	if hist != nil {
		defer hist.Close()
	}

	notifier, err := notify.New(notify.Config{
		Enabled: cfg.Notify.Enabled,
		Token:   cfg.Notify.Token,
		ChatID:  cfg.Notify.ChatID,
	}, log)
	if err != nil {
		return err
	}

	r := runner.New(dir, client, zone, hist, notifier, log)

	switch {
	case boot.File != "":
		return r.Bootstrap(ctx, boot)
	case daemonMode:
		sched, err := runner.ParseSchedule(cfg.Schedule)
		if err != nil {
			return err
		}
		return r.RunDaemon(ctx, sched)
	default:
		_, err := r.RunOnce(ctx)
		return err
	}
}

func splitChecklist(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
