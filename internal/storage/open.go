package storage

import (
	"context"
	"errors"
	"strings"

	"recurd/pkg/logx"
)

// Store is the minimal history API used by the runner.
type Store interface {
	AppendCycle(ctx context.Context, e CycleEntry) error
	RecentCycles(ctx context.Context, task string, limit int) ([]CycleEntry, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown history driver: " + driver)
	}
}
