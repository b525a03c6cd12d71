package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"recurd/internal/habitica"
	"recurd/internal/record"
	"recurd/internal/storage"
	"recurd/internal/taskdir"
	"recurd/pkg/logx"
)

type fakeRemote struct {
	mu      sync.Mutex
	tasks   map[string]*habitica.Task
	nextID  int
	created []habitica.NewTodo
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{tasks: map[string]*habitica.Task{}}
}

func (f *fakeRemote) FetchTask(ctx context.Context, id string) (*habitica.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: GET user/tasks/%s", habitica.ErrNotFound, id)
	}
	return task, nil
}

func (f *fakeRemote) CreateTodo(ctx context.Context, todo habitica.NewTodo) (*habitica.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("inst-%d", f.nextID)
	task := &habitica.Task{ID: id, Title: todo.Title, Created: time.Now().UTC()}
	f.tasks[id] = task
	f.created = append(f.created, todo)
	return task, nil
}

func (f *fakeRemote) EnsureTag(ctx context.Context, name string) (habitica.Tag, error) {
	return habitica.Tag{ID: "tag-recurring", Name: name}, nil
}

func newTestRunner(t *testing.T, remote *fakeRemote) (*Runner, *taskdir.Dir, storage.Store) {
	t.Helper()
	dir, err := taskdir.Open(t.TempDir(), logx.Nop())
	if err != nil {
		t.Fatalf("taskdir.Open error: %v", err)
	}
	hist, err := storage.Open(storage.Config{
		Driver: "file",
		Path:   filepath.Join(t.TempDir(), "history.jsonl"),
	}, logx.Nop())
	if err != nil {
		t.Fatalf("storage.Open error: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })
	return New(dir, remote, time.UTC, hist, nil, logx.Nop()), dir, hist
}

func writeRecord(t *testing.T, dir *taskdir.Dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(dir.Path(name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func dormantRecord(next time.Time) string {
	return fmt.Sprintf(`title: Water the plants
notes: ""
checklist: []
repeat:
  onCompletion: {min: 1, max: 1}
current: null
previous: null
next: %s
`, next.Format(time.RFC3339))
}

func TestRunOncePassIsolationAndOutcomes(t *testing.T) {
	t.Parallel()
	remote := newFakeRemote()
	r, dir, hist := newTestRunner(t, remote)

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(24 * time.Hour)
	writeRecord(t, dir, "due", dormantRecord(past))
	writeRecord(t, dir, "future", dormantRecord(future))
	writeRecord(t, dir, "broken", "title: [unclosed\n")
	brokenBefore, _ := dir.Read("broken")
	futureBefore, _ := dir.Read("future")

	sum, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce error: %v", err)
	}
	if sum.Processed != 3 || sum.Changed != 1 || sum.Failed != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	// The due record spawned and now tracks the new instance.
	data, err := dir.Read("due")
	if err != nil {
		t.Fatal(err)
	}
	rec, err := record.Load(data)
	if err != nil {
		t.Fatalf("reloading due record: %v", err)
	}
	if rec.Current == nil || rec.Next != nil {
		t.Fatalf("due record = %+v", rec)
	}
	if len(remote.created) != 1 || remote.created[0].Title != "Water the plants" {
		t.Fatalf("created = %+v", remote.created)
	}
	if len(remote.created[0].Tags) != 1 || remote.created[0].Tags[0] != "tag-recurring" {
		t.Fatalf("marker tag missing: %+v", remote.created[0].Tags)
	}

	// Untouched records are byte-identical.
	if got, _ := dir.Read("future"); string(got) != string(futureBefore) {
		t.Fatalf("future record rewritten:\n%s", got)
	}
	if got, _ := dir.Read("broken"); string(got) != string(brokenBefore) {
		t.Fatalf("broken record rewritten:\n%s", got)
	}

	// Every record got a history entry; the broken one as an error.
	entries, err := hist.RecentCycles(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("RecentCycles error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("history entries = %d, want 3", len(entries))
	}
	byTask := map[string]storage.CycleEntry{}
	for _, e := range entries {
		byTask[e.Task] = e
	}
	if byTask["due"].Outcome != "spawned" {
		t.Fatalf("due history = %+v", byTask["due"])
	}
	if byTask["future"].Outcome != "unchanged" {
		t.Fatalf("future history = %+v", byTask["future"])
	}
	if byTask["broken"].Outcome != "error" || byTask["broken"].Error == "" {
		t.Fatalf("broken history = %+v", byTask["broken"])
	}
}

func TestRunOnceRereadsArePersistentlyIdempotent(t *testing.T) {
	t.Parallel()
	remote := newFakeRemote()
	r, dir, _ := newTestRunner(t, remote)

	writeRecord(t, dir, "due", dormantRecord(time.Now().UTC().Add(-time.Hour)))

	if _, err := r.RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce error: %v", err)
	}
	afterFirst, _ := dir.Read("due")

	// The spawned instance is still open remotely: a second pass must
	// change nothing.
	sum, err := r.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second RunOnce error: %v", err)
	}
	if sum.Changed != 0 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	afterSecond, _ := dir.Read("due")
	if string(afterFirst) != string(afterSecond) {
		t.Fatalf("record changed on no-op pass:\n%s\nvs\n%s", afterFirst, afterSecond)
	}
}

func TestBootstrapCreatesRecordOnce(t *testing.T) {
	t.Parallel()
	remote := newFakeRemote()
	r, dir, _ := newTestRunner(t, remote)

	spec := BootstrapSpec{
		File:      "water-plants",
		Title:     "Water the plants",
		Notes:     "front room first",
		Checklist: []string{"living room"},
		Min:       1,
		Max:       3,
	}
	if err := r.Bootstrap(context.Background(), spec); err != nil {
		t.Fatalf("Bootstrap error: %v", err)
	}

	data, err := dir.Read("water-plants")
	if err != nil {
		t.Fatal(err)
	}
	rec, err := record.Load(data)
	if err != nil {
		t.Fatalf("loading bootstrapped record: %v", err)
	}
	if rec.Current == nil || rec.Next != nil || rec.Previous != nil {
		t.Fatalf("record = %+v", rec)
	}
	if rec.Repeat.OnCompletion == nil || rec.Repeat.OnCompletion.Min != 1 || rec.Repeat.OnCompletion.Max != 3 {
		t.Fatalf("repeat = %+v", rec.Repeat)
	}
	if rec.Repeat.OnDeletion != nil {
		t.Fatalf("OnDeletion = %+v, want nil", rec.Repeat.OnDeletion)
	}

	if err := r.Bootstrap(context.Background(), spec); err == nil ||
		!strings.Contains(err.Error(), "already exists") {
		t.Fatalf("second Bootstrap error = %v, want already-exists", err)
	}
}

func TestBootstrapValidation(t *testing.T) {
	t.Parallel()
	remote := newFakeRemote()
	r, _, _ := newTestRunner(t, remote)

	bad := []BootstrapSpec{
		{File: "", Title: "t", Min: 0, Max: 0},
		{File: ".hidden", Title: "t"},
		{File: "sub/path", Title: "t"},
		{File: "ok", Title: ""},
		{File: "ok", Title: "t", Min: 3, Max: 1},
	}
	for _, spec := range bad {
		if err := r.Bootstrap(context.Background(), spec); err == nil {
			t.Fatalf("Bootstrap(%+v): expected error", spec)
		}
	}
	if len(remote.created) != 0 {
		t.Fatalf("invalid specs created instances: %+v", remote.created)
	}
}

func TestRunDaemonStopsOnCancel(t *testing.T) {
	t.Parallel()
	remote := newFakeRemote()
	r, _, _ := newTestRunner(t, remote)

	sched, err := ParseSchedule("25ms")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.RunDaemon(ctx, sched) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunDaemon error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop on cancel")
	}
}
