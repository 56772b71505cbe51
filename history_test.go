package linecraft

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHistoryAddAndDedup(t *testing.T) {
	h := NewHistory()
	if !h.Add("one") {
		t.Fatal("expected first add to succeed")
	}
	if !h.Add("two") {
		t.Fatal("expected second add to succeed")
	}
	if h.Add("two") {
		t.Error("expected duplicate of most recent entry to be rejected")
	}
	if h.Len() != 2 {
		t.Errorf("len = %d, want 2", h.Len())
	}
	if got := h.get(0); got != "two" {
		t.Errorf("get(0) = %q, want %q", got, "two")
	}
	if got := h.get(1); got != "one" {
		t.Errorf("get(1) = %q, want %q", got, "one")
	}
}

func TestHistoryMaxLen(t *testing.T) {
	h := NewHistory()
	h.SetMaxLen(2)
	h.Add("a")
	h.Add("b")
	h.Add("c")
	if h.Len() != 2 {
		t.Fatalf("len = %d, want 2", h.Len())
	}
	if got := h.get(0); got != "c" {
		t.Errorf("get(0) = %q, want %q", got, "c")
	}
	if got := h.get(1); got != "b" {
		t.Errorf("get(1) = %q, want %q", got, "b")
	}
}

func TestHistorySentinel(t *testing.T) {
	h := NewHistory()
	h.Add("older")
	h.pushSentinel()
	if h.get(0) != "" {
		t.Fatalf("expected sentinel at index 0, got %q", h.get(0))
	}
	h.set(0, "in progress")
	if h.get(0) != "in progress" {
		t.Fatalf("set(0) did not stick: got %q", h.get(0))
	}
	popped := h.popSentinel(0)
	if popped != "in progress" {
		t.Errorf("popSentinel returned %q, want %q", popped, "in progress")
	}
	if h.Len() != 1 || h.get(0) != "older" {
		t.Errorf("expected only %q left, got len=%d get(0)=%q", "older", h.Len(), h.get(0))
	}
}

func TestHistorySaveLoad(t *testing.T) {
	h := NewHistory()
	h.Add("first")
	h.Add("second")
	h.Add("third")

	path := filepath.Join(t.TempDir(), "history.txt")
	if err := h.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	h2 := NewHistory()
	if err := h2.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h2.Len() != 3 {
		t.Fatalf("loaded len = %d, want 3", h2.Len())
	}
	for i, want := range []string{"third", "second", "first"} {
		if got := h2.get(i); got != want {
			t.Errorf("get(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestHistoryLoadMissingFile(t *testing.T) {
	h := NewHistory()
	err := h.Load(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err != nil {
		t.Fatalf("Load of missing file should be a silent no-op, got %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("expected empty history, got len=%d", h.Len())
	}
}

func TestHistoryLoadRejectsDirectory(t *testing.T) {
	h := NewHistory()
	err := h.Load(os.TempDir())
	if err == nil {
		t.Error("expected an error loading a directory as a history file")
	}
}
