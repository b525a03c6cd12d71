// Package reconcile advances one record's lifecycle per pass.
//
// A record is Live while a remote instance exists and Dormant while waiting
// for its next creation time. Each cycle closes out a finished or deleted
// instance (computing a randomized next time) and spawns a new instance
// once that time arrives. Both can happen in a single cycle when the drawn
// interval is zero.
package reconcile
