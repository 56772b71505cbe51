package linecraft

import "testing"

func TestDispatchReadEnter(t *testing.T) {
	e := newTestEditor(t)
	e.setBuf("hello")
	e.history.pushSentinel()
	text, err, done := e.dispatchRead(Key{Kind: KeyEnter})
	if !done {
		t.Fatal("expected Enter to finish the session")
	}
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q, want %q", text, "hello")
	}
}

func TestDispatchReadCtrlCCancelsOnEmptyBuffer(t *testing.T) {
	e := newTestEditor(t)
	e.setBuf("")
	e.history.pushSentinel()
	_, err, done := e.dispatchRead(Key{Kind: KeyCtrlC})
	if !done || err != ErrCancelled {
		t.Fatalf("got (err=%v, done=%v), want (ErrCancelled, true)", err, done)
	}
}

func TestDispatchReadCtrlCClearsNonEmptyBufferAndContinues(t *testing.T) {
	e := newTestEditor(t)
	e.setBuf("partial")
	e.history.pushSentinel()
	_, err, done := e.dispatchRead(Key{Kind: KeyCtrlC})
	if done || err != nil {
		t.Fatalf("got (err=%v, done=%v), want (nil, false)", err, done)
	}
	if len(e.buf) != 0 || e.pos != 0 {
		t.Errorf("buffer = %q pos=%d, want cleared", e.String(), e.pos)
	}
}

func TestDispatchReadCtrlDOnEmptyCloses(t *testing.T) {
	e := newTestEditor(t)
	e.setBuf("")
	e.history.pushSentinel()
	_, err, done := e.dispatchRead(Key{Kind: KeyCtrlD})
	if !done || err != ErrClosed {
		t.Fatalf("got (err=%v, done=%v), want (ErrClosed, true)", err, done)
	}
}

func TestDispatchReadCtrlDOnNonEmptyDeletes(t *testing.T) {
	e := newTestEditor(t)
	e.setBuf("abc")
	e.pos = 0
	_, _, done := e.dispatchRead(Key{Kind: KeyCtrlD})
	if done {
		t.Fatal("CTRL_D on a non-empty buffer should not end the session")
	}
	if got := e.String(); got != "bc" {
		t.Errorf("buf = %q, want %q", got, "bc")
	}
}

func TestDispatchReadInsertsRune(t *testing.T) {
	e := newTestEditor(t)
	e.setBuf("")
	_, _, done := e.dispatchRead(Key{Kind: KeyRune, Rune: 'x'})
	if done {
		t.Fatal("a plain rune should not end the session")
	}
	if got := e.String(); got != "x" {
		t.Errorf("buf = %q, want %q", got, "x")
	}
}

func TestDispatchReadHotkeyAppendsAndEnds(t *testing.T) {
	e := newTestEditor(t)
	e.setBuf("cmd")
	e.hotkey = '?'
	e.history.pushSentinel()
	text, err, done := e.dispatchRead(Key{Kind: KeyRune, Rune: '?'})
	if !done || err != nil {
		t.Fatalf("got (err=%v, done=%v), want (nil, true)", err, done)
	}
	if text != "cmd?" {
		t.Errorf("text = %q, want %q", text, "cmd?")
	}
}

func TestHistoryPrevNextRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	e.history.Add("first")
	e.history.Add("second")
	e.history.pushSentinel()
	e.setBuf("")
	e.historyIndex = 0

	e.editSet(e.historyPrev())
	if got := e.String(); got != "second" {
		t.Fatalf("after first Up, buf = %q, want %q", got, "second")
	}
	e.editSet(e.historyPrev())
	if got := e.String(); got != "first" {
		t.Fatalf("after second Up, buf = %q, want %q", got, "first")
	}
	// at the oldest entry, Up again stays put.
	e.editSet(e.historyPrev())
	if got := e.String(); got != "first" {
		t.Fatalf("Up at oldest entry, buf = %q, want %q", got, "first")
	}
	e.editSet(e.historyNext())
	if got := e.String(); got != "second" {
		t.Fatalf("after Down, buf = %q, want %q", got, "second")
	}
}

func TestSyntheticResultPopsSentinel(t *testing.T) {
	e := newTestEditor(t)
	e.history.pushSentinel()
	before := e.history.Len()
	_, err, done := e.syntheticResult(Key{Kind: KeyClosed})
	if !done || err != ErrClosed {
		t.Fatalf("got (err=%v, done=%v), want (ErrClosed, true)", err, done)
	}
	if e.history.Len() != before-1 {
		t.Errorf("expected sentinel to be popped, len = %d, want %d", e.history.Len(), before-1)
	}
}
