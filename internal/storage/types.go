package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("history storage disabled")

// Config configures history storage.
//
// Driver values:
//   - "file": dependency-free append-only JSONL backend
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	Retention   int           // sqlite only; entries kept per task, 0 means default
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// CycleEntry records the outcome of one reconciliation cycle for one
// record. Keep it compact and schema-stable.
type CycleEntry struct {
	At       time.Time `json:"at"`
	Task     string    `json:"task"`    // record file name
	Outcome  string    `json:"outcome"` // unchanged|closed|spawned|closed+spawned|error
	Instance string    `json:"instance,omitempty"`
	Error    string    `json:"error,omitempty"`
	TookMS   int64     `json:"took_ms"`
}
