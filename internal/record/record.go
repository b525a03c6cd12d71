package record

import (
	"bytes"
	"fmt"

	yaml "go.yaml.in/yaml/v3"
)

// Record is the durable state for one recurring task definition.
//
// Exactly one of Current/Next is set after a successful reconciliation
// cycle: Current while a live remote instance exists, Next while dormant.
// Previous keeps the most recently closed instance for debugging and is
// overwritten each cycle.
type Record struct {
	Title     string     `yaml:"title"`
	Notes     string     `yaml:"notes"`
	Checklist []string   `yaml:"checklist"`
	Repeat    Repeat     `yaml:"repeat"`
	Current   *Instance  `yaml:"current"`
	Previous  *Closed    `yaml:"previous"`
	Next      *Timestamp `yaml:"next"`
}

// Repeat holds the reschedule policy. Each slot is independent: a task may
// reschedule on completion, on external deletion, or both. A nil slot means
// the corresponding transition is not configured for this task.
type Repeat struct {
	OnCompletion *Interval `yaml:"onCompletion"`
	OnDeletion   *Interval `yaml:"onDeletion"`
}

// Interval is a closed range of whole days, 0 <= Min <= Max.
type Interval struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Instance points at the live remote instance.
type Instance struct {
	ID      string    `yaml:"id"`
	Created Timestamp `yaml:"created"`
}

// Closed records the timestamps of the most recently closed instance.
type Closed struct {
	Created   Timestamp `yaml:"created"`
	Completed Timestamp `yaml:"completed"`
}

// Live reports whether a remote instance is believed to exist.
func (r *Record) Live() bool { return r.Current != nil }

// Load deserializes one record file, upgrades legacy field shapes, and
// validates the result. Unknown keys are rejected: these files are
// hand-editable and a typoed key silently ignored would be worse than an
// error.
func Load(data []byte) (*Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw rawRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	rec := raw.normalize()
	if err := rec.validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Marshal produces the canonical on-disk form. Loading the output and
// marshalling again yields identical bytes.
func (r *Record) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Record) validate() error {
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", ErrMalformed)
	}
	if err := r.Repeat.OnCompletion.validate("repeat.onCompletion"); err != nil {
		return err
	}
	if err := r.Repeat.OnDeletion.validate("repeat.onDeletion"); err != nil {
		return err
	}
	if r.Current != nil {
		if r.Current.ID == "" {
			return fmt.Errorf("%w: current.id is required", ErrMalformed)
		}
		if r.Current.Created.IsZero() {
			return fmt.Errorf("%w: current.created is required", ErrMalformed)
		}
	}
	if r.Current != nil && r.Next != nil {
		return fmt.Errorf("%w: current and next are mutually exclusive", ErrMalformed)
	}
	return nil
}

func (iv *Interval) validate(path string) error {
	if iv == nil {
		return nil
	}
	if iv.Min < 0 {
		return fmt.Errorf("%w: %s.min must be >= 0", ErrMalformed, path)
	}
	if iv.Max < iv.Min {
		return fmt.Errorf("%w: %s requires min <= max", ErrMalformed, path)
	}
	return nil
}
