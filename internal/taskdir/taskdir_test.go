package taskdir

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recurd/pkg/logx"
)

func openTestDir(t *testing.T) *Dir {
	t.Helper()
	d, err := Open(t.TempDir(), logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return d
}

func TestListSkipsHiddenFiles(t *testing.T) {
	t.Parallel()
	d := openTestDir(t)
	for _, name := range []string{"water-plants", "clean-fridge", ".water-plants.swp", ".hidden"} {
		if err := os.WriteFile(d.Path(name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(d.Root(), "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := d.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(names) != 2 || names[0] != "clean-fridge" || names[1] != "water-plants" {
		t.Fatalf("List = %v", names)
	}
}

func TestWriteAtomicReplacesContent(t *testing.T) {
	t.Parallel()
	d := openTestDir(t)
	if err := d.WriteAtomic("rec", []byte("old\n")); err != nil {
		t.Fatalf("WriteAtomic error: %v", err)
	}
	if err := d.WriteAtomic("rec", []byte("new\n")); err != nil {
		t.Fatalf("WriteAtomic error: %v", err)
	}
	got, err := d.Read("rec")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if string(got) != "new\n" {
		t.Fatalf("content = %q", got)
	}

	// No temp debris after a successful write.
	entries, err := os.ReadDir(d.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("stale temp file %q", e.Name())
		}
	}
}

func TestCrashBeforeRenameLeavesOriginalIntact(t *testing.T) {
	t.Parallel()
	d := openTestDir(t)
	original := []byte("title: untouched\n")
	if err := d.WriteAtomic("rec", original); err != nil {
		t.Fatalf("WriteAtomic error: %v", err)
	}

	// Simulate a crash between temp write and rename: the temp exists but
	// the rename never happens.
	tmp, err := d.writeTemp("rec", []byte("title: half-done\n"))
	if err != nil {
		t.Fatalf("writeTemp error: %v", err)
	}
	if _, err := os.Stat(tmp); err != nil {
		t.Fatalf("temp missing: %v", err)
	}

	got, err := d.Read("rec")
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("original clobbered: %q", got)
	}

	// The stranded temp is hidden, so scans ignore it.
	names, err := d.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(names) != 1 || names[0] != "rec" {
		t.Fatalf("List = %v", names)
	}
}

func TestWriteAtomicRenameFailure(t *testing.T) {
	t.Parallel()
	d := openTestDir(t)
	// A directory at the canonical path makes the rename fail after the
	// temp was already written.
	if err := os.Mkdir(d.Path("blocked"), 0o755); err != nil {
		t.Fatal(err)
	}

	err := d.WriteAtomic("blocked", []byte("must not land\n"))
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("WriteAtomic error = %v, want ErrPersist", err)
	}

	// The failed write cleaned up its temp file.
	entries, err := os.ReadDir(d.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("stale temp file %q", e.Name())
		}
	}
}
