package linecraft

import (
	"os"
	"testing"
)

// newTestEditor returns an Editor wired up for unit tests that exercise
// buffer/completion/search/refresh logic without a real terminal: ofd is
// the write end of an os.Pipe so writeAll has somewhere harmless to go.
func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	// drain the pipe in the background so writes never block once the
	// kernel buffer fills.
	go func() {
		buf := make([]byte, 4096)
		for {
			if _, err := r.Read(buf); err != nil {
				return
			}
		}
	}()
	e := &Editor{
		ofd:     int(w.Fd()),
		ifd:     int(r.Fd()),
		history: NewHistory(),
		wp:      NewRuneWidthProvider(),
		cols:    80,
		dec:     &decoder{escTimeout: defaultEscTimeout},
	}
	return e
}

// pipePair returns a fresh os.Pipe, handing callers the raw descriptors
// a decoder needs without pulling in a real terminal.
func pipePair(t *testing.T) (*os.File, *os.File, error) {
	t.Helper()
	return os.Pipe()
}
