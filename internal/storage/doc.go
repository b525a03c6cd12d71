// Package storage keeps a durable history of reconciliation cycles.
//
// It currently supports:
//   - Per-record cycle outcomes (spawned/closed/error) for debugging
//   - Two drivers: an append-only JSONL file and SQLite (build tag)
//
// History is advisory: a store failure is logged by callers, never allowed
// to fail the cycle that produced the entry.
package storage
