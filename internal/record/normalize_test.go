package record

import (
	"reflect"
	"testing"
)

func TestNormalizeLegacyTitleField(t *testing.T) {
	t.Parallel()
	in := `text: Old style name
repeat: {onCompletion: {min: 1, max: 1}}
next: 2026-01-01T00:00:00Z
`
	rec, err := Load([]byte(in))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if rec.Title != "Old style name" {
		t.Fatalf("Title = %q", rec.Title)
	}
}

func TestNormalizeChecklistDefault(t *testing.T) {
	t.Parallel()
	in := `title: t
repeat: {onCompletion: {min: 1, max: 1}}
next: 2026-01-01T00:00:00Z
`
	rec, err := Load([]byte(in))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if rec.Checklist == nil || len(rec.Checklist) != 0 {
		t.Fatalf("Checklist = %#v, want empty non-nil", rec.Checklist)
	}
}

func TestNormalizeFlatRepeatPolicy(t *testing.T) {
	t.Parallel()
	// Legacy flat {min,max} means "on completion"; the deletion slot did
	// not exist yet.
	in := `title: t
repeat: {min: 2, max: 5}
next: 2026-01-01T00:00:00Z
`
	rec, err := Load([]byte(in))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := &Interval{Min: 2, Max: 5}
	if !reflect.DeepEqual(rec.Repeat.OnCompletion, want) {
		t.Fatalf("OnCompletion = %+v, want %+v", rec.Repeat.OnCompletion, want)
	}
	if rec.Repeat.OnDeletion != nil {
		t.Fatalf("OnDeletion = %+v, want nil", rec.Repeat.OnDeletion)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()
	raw := rawRecord{
		Text:   "legacy title",
		Repeat: rawRepeat{Min: intp(2), Max: intp(5)},
	}
	once := raw.normalize()

	// Re-normalizing the already-current shape changes nothing.
	again := rawRecord{
		Title:     once.Title,
		Notes:     once.Notes,
		Checklist: once.Checklist,
		Repeat: rawRepeat{
			OnCompletion: once.Repeat.OnCompletion,
			OnDeletion:   once.Repeat.OnDeletion,
		},
		Current:  once.Current,
		Previous: once.Previous,
		Next:     once.Next,
	}
	twice := again.normalize()
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalize not idempotent:\nonce  = %+v\ntwice = %+v", once, twice)
	}
}

func intp(v int) *int { return &v }
