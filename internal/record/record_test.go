package record

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

const canonicalRecord = `title: Water the plants
notes: Front room first
checklist:
  - living room
  - kitchen
repeat:
  onCompletion:
    min: 1
    max: 3
  onDeletion: null
current:
  id: abc-123
  created: 2026-08-01T09:30:00Z
previous: null
next: null
`

func TestLoadCanonical(t *testing.T) {
	t.Parallel()
	rec, err := Load([]byte(canonicalRecord))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if rec.Title != "Water the plants" {
		t.Fatalf("Title = %q", rec.Title)
	}
	if len(rec.Checklist) != 2 {
		t.Fatalf("Checklist = %v", rec.Checklist)
	}
	if rec.Repeat.OnCompletion == nil || rec.Repeat.OnCompletion.Min != 1 || rec.Repeat.OnCompletion.Max != 3 {
		t.Fatalf("OnCompletion = %+v", rec.Repeat.OnCompletion)
	}
	if rec.Repeat.OnDeletion != nil {
		t.Fatalf("OnDeletion = %+v, want nil", rec.Repeat.OnDeletion)
	}
	if rec.Current == nil || rec.Current.ID != "abc-123" {
		t.Fatalf("Current = %+v", rec.Current)
	}
	want := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	if !rec.Current.Created.Equal(want) {
		t.Fatalf("Created = %v, want %v", rec.Current.Created, want)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	rec, err := Load([]byte(canonicalRecord))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	out, err := rec.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	// Canonical means a fixed point: load(marshal(x)) marshals identically.
	rec2, err := Load(out)
	if err != nil {
		t.Fatalf("Load(marshalled) error: %v", err)
	}
	out2, err := rec2.Marshal()
	if err != nil {
		t.Fatalf("second Marshal error: %v", err)
	}
	if !bytes.Equal(out, out2) {
		t.Fatalf("round trip not stable:\n--- first ---\n%s\n--- second ---\n%s", out, out2)
	}
}

func TestLoadNaiveTimestampAnnotatedUTC(t *testing.T) {
	t.Parallel()
	// Older files lost the offset; the wall clock must be kept and tagged
	// UTC, never shifted.
	in := `title: t
notes: null
checklist: []
repeat:
  onCompletion: {min: 0, max: 0}
current: null
previous: null
next: 2026-08-23T07:15:00
`
	rec, err := Load([]byte(in))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if rec.Next == nil {
		t.Fatal("Next is nil")
	}
	want := time.Date(2026, 8, 23, 7, 15, 0, 0, time.UTC)
	if !rec.Next.Equal(want) {
		t.Fatalf("Next = %v, want %v", rec.Next.Time, want)
	}
	_, offset := rec.Next.Zone()
	if offset != 0 {
		t.Fatalf("offset = %d, want 0", offset)
	}
}

func TestLoadMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "no title", in: "notes: x\nchecklist: []\nrepeat: {}\n"},
		{name: "min greater than max", in: "title: t\nrepeat: {onCompletion: {min: 5, max: 2}}\n"},
		{name: "negative min", in: "title: t\nrepeat: {onCompletion: {min: -1, max: 2}}\n"},
		{name: "current without id", in: "title: t\nrepeat: {}\ncurrent: {created: 2026-01-01T00:00:00Z}\n"},
		{name: "current and next both set", in: "title: t\nrepeat: {}\ncurrent: {id: x, created: 2026-01-01T00:00:00Z}\nnext: 2026-01-02T00:00:00Z\n"},
		{name: "unknown key", in: "title: t\nrepeat: {}\nbogus: 1\n"},
		{name: "bad timestamp", in: "title: t\nrepeat: {}\nnext: not-a-time\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load([]byte(tt.in))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("Load error = %v, want ErrMalformed", err)
			}
		})
	}
}
