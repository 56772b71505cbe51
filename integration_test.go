package linecraft

import (
	"testing"
	"time"

	"github.com/kr/pty"
)

// TestReadLineOverPty drives a full ReadLine session through a real pty,
// the way an interactive terminal program actually exercises raw mode,
// the input decoder and the refresh engine together.
func TestReadLineOverPty(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable in this environment: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	// drain everything the editor writes (prompt, echoed keystrokes,
	// cursor-position queries) so writes never block.
	done := make(chan struct{})
	go func() {
		buf := make([]byte, 4096)
		for {
			if _, err := ptmx.Read(buf); err != nil {
				close(done)
				return
			}
		}
	}()

	ed, err := NewFd(int(tty.Fd()), int(tty.Fd()))
	if err != nil {
		t.Fatalf("NewFd: %v", err)
	}
	defer ed.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		ptmx.Write([]byte("hello\r"))
	}()

	line, err := ed.ReadLine("> ")
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if line != "hello" {
		t.Errorf("ReadLine = %q, want %q", line, "hello")
	}
}

// TestReadLineOverPtyCtrlD confirms EOF semantics on an empty buffer.
func TestReadLineOverPtyCtrlD(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable in this environment: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	go func() {
		buf := make([]byte, 4096)
		for {
			if _, err := ptmx.Read(buf); err != nil {
				return
			}
		}
	}()

	ed, err := NewFd(int(tty.Fd()), int(tty.Fd()))
	if err != nil {
		t.Fatalf("NewFd: %v", err)
	}
	defer ed.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		ptmx.Write([]byte{4}) // CTRL_D
	}()

	_, err = ed.ReadLine("> ")
	if err != ErrClosed {
		t.Fatalf("ReadLine err = %v, want ErrClosed", err)
	}
}
