package record

import (
	"fmt"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Timestamp is a time.Time that always carries an explicit UTC offset on
// disk.
//
// Offset-naive forms show up in records written by older versions (their
// YAML dumper stripped the zone after converting to UTC). Those are
// annotated as UTC on read: the wall-clock value is never shifted, only
// tagged. Marshal always emits RFC 3339 with offset, so a loaded record
// re-serializes canonically.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp { return Timestamp{Time: t} }

// Layouts accepted on read. The naive ones (no zone) are parsed in UTC.
var tsLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range tsLayouts {
		// time.Parse treats the naive layouts as UTC, which is exactly
		// the annotate-don't-convert repair we want.
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (ts *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("timestamp must be a scalar, got %v", node.Kind)
	}
	t, err := parseTimestamp(node.Value)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

func (ts Timestamp) MarshalYAML() (any, error) {
	// Emit as a plain scalar (no string quoting) so files stay
	// hand-editable.
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Value: ts.Format(time.RFC3339Nano),
	}, nil
}
