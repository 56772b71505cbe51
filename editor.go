package linecraft

import (
	"bufio"
	"os"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
)

// Mode is the editor's current substate.
type Mode int

const (
	ModeRead Mode = iota
	ModeCompletion
	ModeHistorySearch
)

// Result is the outcome of one ReadLineAsync step.
type Result int

const (
	// HaveText means Text holds a complete line the caller should act on.
	HaveText Result = iota
	// Closed means the input stream hit EOF (CTRL_D on an empty line, or
	// the underlying fd closed).
	Closed
	// ErrorResult means an I/O error terminated the session; see the
	// returned error for detail.
	ErrorResult
	// Cancelled means SIGINT or an explicit Cancel() ended the session.
	Cancelled
	// Continue means no key was available yet; call again once the fd is
	// readable. Only ever returned by ReadLineAsync.
	Continue
)

// Editor is a single line-editing session bound to one input and output
// file descriptor. The zero value is not usable; construct with New or
// NewFd. An Editor is not safe for concurrent use from multiple
// goroutines.
type Editor struct {
	ifd, ofd int

	prompt     string
	tempPrompt string
	cols       int
	maxRows    int
	oldColPos  int
	oldRowPos  int

	buf []rune
	pos int

	multiline    bool
	mode         Mode
	hotkey       rune
	isDisplayed  bool
	needsRefresh bool
	cancelled    bool
	isClosed     bool

	history      *History
	historyIndex int

	completionCallback CompletionCallback
	completion         *CompletionSet
	hintsCallback      HintsCallback
	histSearch         *historySearchState

	wp WidthProvider

	dec     *decoder
	sig     *sigPipe
	guard   *rawModeGuard
	scanner *bufio.Scanner

	// sessionOpen tracks whether ReadLineAsync has already set up
	// buf/prompt/cols (via beginSession) for the session in progress, so
	// it can resume a partially-typed line across calls instead of
	// restarting one.
	sessionOpen bool
}

// New returns an Editor bound to stdin/stdout, the configuration every
// caller wants by default.
func New() (*Editor, error) {
	return NewFd(syscall.Stdin, syscall.Stdout)
}

// NewFd returns an Editor bound to the given file descriptors, used by
// tests that drive a pty instead of the process's own stdin/stdout.
func NewFd(ifd, ofd int) (*Editor, error) {
	sig, err := newSigPipe()
	if err != nil {
		return nil, err
	}
	e := &Editor{
		ifd:     ifd,
		ofd:     ofd,
		history: NewHistory(),
		wp:      NewRuneWidthProvider(),
		sig:     sig,
		guard:   &rawModeGuard{fd: ifd},
	}
	e.dec = newDecoder(ifd, sig)
	return e, nil
}

// SetMultiline switches between the single-line horizontal-scroll and
// multi-line wrap redraw algorithms.
func (e *Editor) SetMultiline(on bool) { e.multiline = on }

// SetCompletionCallback installs the tab-completion callback. Passing
// nil disables completion.
func (e *Editor) SetCompletionCallback(cb CompletionCallback) { e.completionCallback = cb }

// SetHintsCallback installs the inline hint callback (see refresh.go).
// Passing nil disables hints.
func (e *Editor) SetHintsCallback(cb HintsCallback) { e.hintsCallback = cb }

// SetPrompt replaces the prompt of the line being edited; it is drawn at
// the next refresh. ReadLine, ReadLineInit and a new ReadLineAsync session
// install their own prompt argument when they begin, replacing this value.
func (e *Editor) SetPrompt(p string) { e.prompt = p }

// SetEscTimeout overrides the bare-ESC-vs-sequence disambiguation window
// (default 50ms).
func (e *Editor) SetEscTimeout(d time.Duration) { e.dec.escTimeout = d }

// SetWidthProvider installs a custom WidthProvider, e.g. NewUniwidthProvider()
// for grapheme-cluster-aware column widths.
func (e *Editor) SetWidthProvider(wp WidthProvider) { e.wp = wp }

// SetHotkey installs a rune that, like Enter, ends the edit and returns
// the buffer, but with the hotkey appended to the returned text so the
// caller can distinguish it from a plain Enter.
func (e *Editor) SetHotkey(r rune) { e.hotkey = r }

// History returns the history ring so callers can inspect, save or load
// it directly.
func (e *Editor) History() *History { return e.history }

// Cancel requests that the in-progress or next ReadLine/ReadLineAsync
// call end with Cancelled, as if SIGINT had arrived.
func (e *Editor) Cancel() {
	e.dec.cancelled.set(true)
}

// UpdateSize forces the next refresh to re-query the terminal's column
// count, as if a SIGWINCH had just been observed.
func (e *Editor) UpdateSize() {
	e.dec.needsWinch.set(true)
}

// CustomOutput suspends the current prompt line, runs fn (which may
// print anything, e.g. an async log line), then redraws the prompt and
// buffer exactly as they were.
func (e *Editor) CustomOutput(fn func()) {
	if !e.isDisplayed {
		fn()
		return
	}
	writeAll(e.ofd, "\r\x1b[0K")
	fn()
	e.refreshLine()
}

// Close releases the signal pipe and restores the terminal if raw mode
// is still active. Safe to call more than once.
func (e *Editor) Close() error {
	if e.guard != nil {
		if err := e.guard.disable(); err != nil {
			return err
		}
	}
	if e.sig != nil {
		e.sig.close()
	}
	return nil
}

// Loop calls fn repeatedly in raw mode until it returns true or the given
// exit key is read, a thin pass-through used by hosts that want a
// polling event loop rather than line editing.
func (e *Editor) Loop(fn func() bool, exitKey rune) bool {
	if err := e.guard.enable(); err != nil {
		return false
	}
	defer e.guard.disable()
	tenMs := syscall.Timeval{Sec: 0, Usec: 10 * 1000}
	for {
		b, ok := e.dec.readRawByte(&tenMs)
		if ok && rune(b) == exitKey {
			return false
		}
		if fn() {
			return true
		}
	}
}

//-----------------------------------------------------------------------------
// ReadLine: the synchronous entry point

// ReadLine reads one line with the given prompt, blocking until Enter,
// EOF, or cancellation. It is the library's primary entry point.
func (e *Editor) ReadLine(prompt string) (string, error) {
	return e.readLineInit(prompt, "")
}

// ReadLineInit is ReadLine with an initial buffer contents.
func (e *Editor) ReadLineInit(prompt, init string) (string, error) {
	return e.readLineInit(prompt, init)
}

func (e *Editor) readLineInit(prompt, init string) (string, error) {
	if !isatty.IsTerminal(uintptr(e.ifd)) {
		return e.readBasic()
	}
	if unsupportedTerm() {
		writeAll(e.ofd, prompt)
		s, err := e.readBasic()
		return s, err
	}
	return e.readRaw(prompt, init)
}

func (e *Editor) readBasic() (string, error) {
	if e.scanner == nil {
		e.scanner = bufio.NewScanner(os.NewFile(uintptr(e.ifd), "linecraft-input"))
	}
	if !e.scanner.Scan() {
		if err := e.scanner.Err(); err != nil {
			return "", newError(KindIOError, "reading input", err)
		}
		return "", ErrClosed
	}
	return e.scanner.Text(), nil
}

func (e *Editor) readRaw(prompt, init string) (string, error) {
	if err := e.guard.enable(); err != nil {
		return "", err
	}
	defer e.guard.disable()
	s, err := e.edit(prompt, init)
	writeAll(e.ofd, "\r\n")
	return s, err
}

//-----------------------------------------------------------------------------
// The edit loop state machine

// edit drives one full line-editing session to completion: NEW_LINE
// setup, then a READ/COMPLETION/HISTORY_SEARCH dispatch loop until a
// terminal result is reached.
func (e *Editor) edit(prompt, init string) (string, error) {
	e.beginSession(prompt, init)
	for {
		var k Key
		switch e.mode {
		case ModeCompletion:
			k = e.dec.readKey()
			if text, err, done := e.syntheticResult(k); done {
				return text, err
			}
			e.stepCompletion(k)
		case ModeHistorySearch:
			k = e.dec.readKey()
			if text, err, done := e.syntheticResult(k); done {
				return text, err
			}
			e.handleHistorySearchKey(k)
		default:
			k = e.dec.readKey()
			if text, err, done := e.syntheticResult(k); done {
				return text, err
			}
			if text, err, done := e.dispatchRead(k); done {
				return text, err
			}
		}
		if e.cancelled {
			e.history.popSentinel(0)
			e.cancelled = false
			return "", ErrCancelled
		}
	}
}

// beginSession resets per-line state: prompt, buffer, column width, the
// history sentinel, and draws the initial line.
func (e *Editor) beginSession(prompt, init string) {
	e.prompt = prompt
	e.tempPrompt = ""
	e.cols = getColumns(e.ifd, e.ofd)
	e.maxRows = 0
	e.oldColPos = 0
	e.oldRowPos = 0
	e.buf = []rune(init)
	e.pos = len(e.buf)
	e.historyIndex = 0
	e.mode = ModeRead
	e.completion = nil
	e.histSearch = nil
	e.cancelled = false
	e.history.pushSentinel()
	e.refreshLine()
}

// syntheticResult handles the three end-of-stream Key kinds a decoder
// read can produce at any point in any mode.
func (e *Editor) syntheticResult(k Key) (string, error, bool) {
	switch k.Kind {
	case KeyClosed:
		e.history.popSentinel(0)
		return "", ErrClosed, true
	case KeyCancelled:
		e.history.popSentinel(0)
		return "", ErrCancelled, true
	case KeyError:
		e.history.popSentinel(0)
		return "", newError(KindIOError, "read error", nil), true
	}
	return "", nil, false
}

// stepCompletion handles one key while mode == ModeCompletion: TAB drives
// the display/rotate state machine, anything else exits completion and
// replays the key in ModeRead.
func (e *Editor) stepCompletion(k Key) {
	if k.Kind == KeyTab {
		e.driveCompletion()
		return
	}
	e.dec.backlog.pushFrontKey(k)
	e.mode = ModeRead
	e.completion = nil
}

// dispatchRead handles one key while mode == ModeRead.
func (e *Editor) dispatchRead(k Key) (string, error, bool) {
	switch k.Kind {
	case KeyEnter:
		e.history.popSentinel(0)
		if e.hintsCallback != nil {
			saved := e.hintsCallback
			e.hintsCallback = nil
			e.refreshLine()
			e.hintsCallback = saved
		}
		return e.String(), nil, true

	case KeyCtrlC:
		if len(e.buf) == 0 {
			e.history.popSentinel(0)
			return "", ErrCancelled, true
		}
		writeAll(e.ofd, "^C\r\n")
		e.buf = nil
		e.pos = 0
		e.maxRows = 0
		e.oldRowPos = 0
		e.oldColPos = 0
		e.refreshLine()

	case KeyCtrlD:
		if len(e.buf) > 0 {
			e.Delete()
		} else {
			e.history.popSentinel(0)
			return "", ErrClosed, true
		}

	case KeyTab:
		if e.completionCallback != nil {
			if e.startCompletion() {
				e.mode = ModeCompletion
			}
		} else {
			e.insertRunes([]rune{'\t'})
		}

	case KeyCtrlR:
		e.enterHistorySearch()
		e.mode = ModeHistorySearch

	case KeyUp, KeyCtrlP:
		e.editSet(e.historyPrev())
	case KeyDown, KeyCtrlN:
		e.editSet(e.historyNext())

	case KeyLeft, KeyCtrlB:
		e.MoveLeft()
	case KeyRight, KeyCtrlF:
		e.MoveRight()
	case KeyHome, KeyCtrlA:
		e.MoveHome()
	case KeyEnd, KeyCtrlE:
		e.MoveEnd()
	case KeyDelete:
		e.Delete()
	case KeyBackspace, KeyCtrlH:
		e.Backspace()
	case KeyCtrlK:
		e.KillToEnd()
	case KeyCtrlL:
		e.ClearScreen()
	case KeyCtrlT:
		e.Transpose()
	case KeyCtrlU:
		e.KillLine()
	case KeyCtrlW:
		e.DeletePrevWord()

	case KeyEsc:
		// a bare ESC with no pending sequence carries no meaning in
		// ModeRead; ignore it.

	case KeyRune:
		if e.hotkey != 0 && k.Rune == e.hotkey {
			e.history.popSentinel(0)
			return e.String() + string(e.hotkey), nil, true
		}
		e.insertRunes([]rune{k.Rune})
	}
	return "", nil, false
}

// editSet installs s as the whole buffer, cursor at the end, and
// refreshes — the history-navigation counterpart of setBuf.
func (e *Editor) editSet(s string) {
	e.setBuf(s)
	e.refreshLine()
}

// historyPrev/historyNext write the current buffer back to its history
// slot before moving, so editing a recalled line and later returning to
// it preserves edits.
func (e *Editor) historyPrev() string {
	if e.history.Len() == 0 {
		return e.String()
	}
	e.history.set(e.historyIndex, e.String())
	if e.historyIndex < e.history.Len()-1 {
		e.historyIndex++
	}
	return e.history.get(e.historyIndex)
}

func (e *Editor) historyNext() string {
	if e.history.Len() == 0 {
		return e.String()
	}
	e.history.set(e.historyIndex, e.String())
	if e.historyIndex > 0 {
		e.historyIndex--
	}
	return e.history.get(e.historyIndex)
}

//-----------------------------------------------------------------------------
// ReadLineAsync: the non-blocking variant

// ReadLineAsync drives the same state machine as ReadLine but does not
// wait for input: each call either completes the session (HaveText/Closed/
// ErrorResult/Cancelled) or returns Continue because no byte was yet
// available, letting the caller multiplex the fd with other work. Once a
// byte has arrived, the rest of that key is decoded with blocking reads,
// as in ReadLine (see tryReadKey).
// Raw mode is entered on the first call of a session and left enabled
// across Continue returns; call Close (or let a HaveText/Closed/
// ErrorResult/Cancelled result finish the session) to leave it.
func (e *Editor) ReadLineAsync(prompt string) (text string, result Result, err error) {
	if !e.sessionOpen {
		if uerr := e.guard.enable(); uerr != nil {
			return "", ErrorResult, uerr
		}
		e.beginSession(prompt, "")
		e.sessionOpen = true
	}

	k, ok := e.dec.tryReadKey()
	if !ok {
		return "", Continue, nil
	}

	if text, rerr, done := e.syntheticResult(k); done {
		e.endAsyncSession()
		return text, resultFromErr(rerr), rerr
	}

	switch e.mode {
	case ModeCompletion:
		e.stepCompletion(k)
	case ModeHistorySearch:
		e.handleHistorySearchKey(k)
	default:
		if t, rerr, done := e.dispatchRead(k); done {
			e.endAsyncSession()
			if rerr != nil {
				return t, resultFromErr(rerr), rerr
			}
			return t, HaveText, nil
		}
	}

	if e.cancelled {
		e.history.popSentinel(0)
		e.cancelled = false
		e.endAsyncSession()
		return "", Cancelled, ErrCancelled
	}

	return "", Continue, nil
}

func (e *Editor) endAsyncSession() {
	e.sessionOpen = false
	e.guard.disable()
}

func resultFromErr(err error) Result {
	switch {
	case err == nil:
		return HaveText
	case err == ErrClosed:
		return Closed
	case err == ErrCancelled:
		return Cancelled
	default:
		return ErrorResult
	}
}
