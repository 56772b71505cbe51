package linecraft

import (
	"os"
	"testing"
)

func TestUnsupportedTerm(t *testing.T) {
	old, had := os.LookupEnv("TERM")
	defer func() {
		if had {
			os.Setenv("TERM", old)
		} else {
			os.Unsetenv("TERM")
		}
	}()

	os.Setenv("TERM", "dumb")
	if !unsupportedTerm() {
		t.Error("TERM=dumb should be unsupported")
	}
	os.Setenv("TERM", "xterm-256color")
	if unsupportedTerm() {
		t.Error("TERM=xterm-256color should be supported")
	}
}

func TestClearScreenSeq(t *testing.T) {
	if got := clearScreenSeq(); got != "\x1b[H\x1b[2J" {
		t.Errorf("clearScreenSeq = %q", got)
	}
}

func TestDurationToTimeval(t *testing.T) {
	tv := durationToTimeval(1500000) // 1.5ms in nanoseconds
	if tv.Usec != 1500 {
		t.Errorf("Usec = %d, want 1500", tv.Usec)
	}
}

func TestWriteAllReportsLength(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	go func() {
		buf := make([]byte, 64)
		r.Read(buf)
	}()
	n := writeAll(int(w.Fd()), "hello")
	if n != 5 {
		t.Errorf("writeAll returned %d, want 5", n)
	}
}
