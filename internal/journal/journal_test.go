package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "journal.jsonl")
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	entries := []Entry{
		{TS: now, Op: OpPrepare, Session: "main", Window: 2},
		{TS: now.Add(time.Second), Op: OpPark, Session: "main", Window: 2, Pane: 1, Label: "worker"},
		{TS: now.Add(2 * time.Second), Op: OpRecall, Session: "main", Window: 4},
	}
	for _, e := range entries {
		if err := Append(path, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("entries: got %d, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i].Op != entries[i].Op {
			t.Errorf("entry %d op: got %q, want %q", i, got[i].Op, entries[i].Op)
		}
		if !got[i].TS.Equal(entries[i].TS) {
			t.Errorf("entry %d ts: got %v, want %v", i, got[i].TS, entries[i].TS)
		}
	}
	if got[1].Label != "worker" {
		t.Errorf("entry 1 label: got %q, want %q", got[1].Label, "worker")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	got, err := ReadAll(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got != nil {
		t.Errorf("entries: got %v, want nil", got)
	}
}

func TestReadAllSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	now := time.Now().UTC()

	if err := Append(path, Entry{TS: now, Op: OpCreate, Pane: 3}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// Simulate a crash mid-write.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"ts":"2026-03-`); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("entries: got %d, want 1", len(got))
	}
	if got[0].Pane != 3 {
		t.Errorf("pane: got %d, want 3", got[0].Pane)
	}
}

func TestAppendRejectsInvalidEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	if err := Append(path, Entry{TS: time.Now()}); err == nil {
		t.Fatal("expected error for entry without op")
	}
	if err := Append(path, Entry{Op: OpPark}); err == nil {
		t.Fatal("expected error for entry without timestamp")
	}
}
