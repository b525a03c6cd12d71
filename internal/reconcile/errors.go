package reconcile

import "errors"

// ErrConfiguration marks a record whose repeat policy cannot support an
// observed transition (or that has neither a live instance nor a scheduled
// next time). The record needs operator attention; other records continue.
var ErrConfiguration = errors.New("record configuration error")
