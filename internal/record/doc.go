// Package record defines the on-disk schema for one recurring task's
// lifecycle state: the immutable template (title, notes, checklist), the
// repeat policy, and the current/previous/next lifecycle pointers.
//
// Records are stored as human-editable YAML, one file per recurring
// definition. Load() upgrades legacy field shapes before validating, so
// callers only ever see the current schema.
package record
