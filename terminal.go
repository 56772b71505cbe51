package linecraft

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/termios/raw"
	"github.com/deadsy/go-fdset"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// defaultCols is used when neither ioctl nor the cursor-position probe
// can determine the terminal width.
const defaultCols = 80

// timeout for the cursor-position-query fallback, not the ESC disambiguation timer.
var cursorQueryTimeout = syscall.Timeval{Sec: 0, Usec: 20 * 1000}

// unsupportedTerms is the blacklist of TERM values the core refuses to
// drive with ANSI escapes; matches are sent through the plain-read path.
var unsupportedTerms = map[string]bool{
	"dumb":   true,
	"cons25": true,
	"emacs":  true,
}

// unsupportedTerm reports whether the environment's TERM is on the
// blacklist of terminals this editor will not try to drive with ANSI
// escape sequences.
func unsupportedTerm() bool {
	return unsupportedTerms[os.Getenv("TERM")]
}

// rawModeGuard owns the saved termios for one fd and restores it
// exactly once, however the session ends.
type rawModeGuard struct {
	fd      int
	saved   *raw.Termios
	enabled bool
	mu      sync.Mutex
}

// enable puts fd into raw mode: canonical processing, echo, signal
// generation, CR->NL translation, parity/strip and output
// post-processing are all disabled; 8-bit input is enabled; VMIN=1,
// VTIME=0 gives a blocking single-byte read.
func (g *rawModeGuard) enable() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enabled {
		return nil
	}
	if !isatty.IsTerminal(uintptr(g.fd)) {
		return newError(KindBadTerminal, fmt.Sprintf("fd %d is not a tty", g.fd), nil)
	}
	original, err := raw.TcGetAttr(uintptr(g.fd))
	if err != nil {
		return newError(KindIOError, "tcgetattr", err)
	}
	mode := *original
	mode.Iflag &^= syscall.IGNBRK | syscall.BRKINT | syscall.PARMRK | syscall.ISTRIP |
		syscall.INLCR | syscall.IGNCR | syscall.ICRNL | syscall.IXON
	mode.Oflag &^= syscall.OPOST
	mode.Lflag &^= syscall.ECHO | syscall.ECHONL | syscall.ICANON | syscall.ISIG | syscall.IEXTEN
	mode.Cflag &^= syscall.CSIZE | syscall.PARENB
	mode.Cflag |= syscall.CS8
	mode.Cc[syscall.VMIN] = 1
	mode.Cc[syscall.VTIME] = 0
	if err := raw.TcSetAttr(uintptr(g.fd), &mode); err != nil {
		return newError(KindIOError, "tcsetattr", err)
	}
	g.saved = original
	g.enabled = true
	registerGuard(g)
	return nil
}

// disable restores the termios captured by enable. Safe to call more
// than once and safe to call when enable never succeeded.
func (g *rawModeGuard) disable() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled {
		return nil
	}
	err := raw.TcSetAttr(uintptr(g.fd), g.saved)
	g.enabled = false
	unregisterGuard(g)
	if err != nil {
		return newError(KindIOError, "tcsetattr restore", err)
	}
	return nil
}

// guardRegistry is the process-wide best-effort atexit safety net: a raw
// mode guard that is still enabled when the process is torn down without
// calling Editor.Close gets one more chance to restore the terminal.
// Go has no direct equivalent of atexit(), so this registry plus a
// signal handler on the common terminating signals is the closest
// substitute.
var (
	guardRegistryMu sync.Mutex
	guardRegistry   = map[*rawModeGuard]struct{}{}
	guardOnce       sync.Once
)

func registerGuard(g *rawModeGuard) {
	guardOnce.Do(installExitRestore)
	guardRegistryMu.Lock()
	guardRegistry[g] = struct{}{}
	guardRegistryMu.Unlock()
}

func unregisterGuard(g *rawModeGuard) {
	guardRegistryMu.Lock()
	delete(guardRegistry, g)
	guardRegistryMu.Unlock()
}

func restoreAllGuards() {
	guardRegistryMu.Lock()
	defer guardRegistryMu.Unlock()
	for g := range guardRegistry {
		if g.enabled {
			raw.TcSetAttr(uintptr(g.fd), g.saved)
			g.enabled = false
		}
	}
}

//-----------------------------------------------------------------------------
// Column detection

// readRuneTimeout reads and decodes one rune from ifd, bounded by timeout,
// used only by the cursor-position probe below, which reads the reply
// from ifd directly rather than through the Editor's decoder.
func readRuneTimeout(ifd int, dec *runeDecoder, timeout *syscall.Timeval) rune {
	for {
		ready, _ := selectReadable(ifd, nil, timeout)
		if !ready {
			return runeNone
		}
		buf := make([]byte, 1)
		n, err := syscall.Read(ifd, buf)
		if err == syscall.EINTR {
			continue
		}
		if err != nil || n == 0 {
			return runeNone
		}
		if r, size := dec.add(buf[0]); size > 0 {
			return r
		}
	}
}

// getCursorColumn queries the cursor position via DSR (ESC [ 6 n) and
// returns the reported column, or -1 on any failure to parse a reply.
func getCursorColumn(ifd, ofd int) int {
	if writeAll(ofd, "\x1b[6n") != 4 {
		return -1
	}
	buf := make([]rune, 0, 32)
	dec := &runeDecoder{}
	for len(buf) < 32 {
		r := readRuneTimeout(ifd, dec, &cursorQueryTimeout)
		if r == runeNone {
			break
		}
		buf = append(buf, r)
		if r == 'R' {
			break
		}
	}
	if len(buf) < 6 || buf[0] != keycodeESC || buf[1] != '[' || buf[len(buf)-1] != 'R' {
		return -1
	}
	fields := strings.Split(string(buf[2:len(buf)-1]), ";")
	if len(fields) != 2 {
		return -1
	}
	cols, err := strconv.Atoi(fields[1])
	if err != nil {
		return -1
	}
	return cols
}

// getColumns returns the terminal's column count: ioctl first, a
// cursor-probe fallback second, defaultCols if both fail.
func getColumns(ifd, ofd int) int {
	if ws, err := unix.IoctlGetWinsize(ofd, unix.TIOCGWINSZ); err == nil && ws.Col > 0 {
		return int(ws.Col)
	}
	start := getCursorColumn(ifd, ofd)
	if start < 0 {
		return defaultCols
	}
	if writeAll(ofd, "\x1b[999C") != 6 {
		return defaultCols
	}
	cols := getCursorColumn(ifd, ofd)
	if cols < 0 {
		return defaultCols
	}
	if cols > start {
		writeAll(ofd, fmt.Sprintf("\x1b[%dD", cols-start))
	}
	return cols
}

//-----------------------------------------------------------------------------
// Raw byte I/O helpers

func writeAll(fd int, s string) int {
	n, err := syscall.Write(fd, []byte(s))
	if err != nil {
		return n
	}
	return n
}

// selectReadable blocks (optionally bounded by timeout) until fd or any
// of extra are readable. Returns which fds were readable.
func selectReadable(fd int, extra []int, timeout *syscall.Timeval) (fdReady bool, extraReady []bool) {
	rd := syscall.FdSet{}
	fdset.Set(fd, &rd)
	maxFd := fd
	for _, e := range extra {
		fdset.Set(e, &rd)
		if e > maxFd {
			maxFd = e
		}
	}
	n, err := syscall.Select(maxFd+1, &rd, nil, nil, timeout)
	if err != nil || n == 0 {
		return false, make([]bool, len(extra))
	}
	fdReady = fdset.IsSet(fd, &rd)
	extraReady = make([]bool, len(extra))
	for i, e := range extra {
		extraReady[i] = fdset.IsSet(e, &rd)
	}
	return fdReady, extraReady
}

// wouldBlock reports whether fd has nothing to read within timeout.
func wouldBlock(fd int, timeout *syscall.Timeval) bool {
	ready, _ := selectReadable(fd, nil, timeout)
	return !ready
}

//-----------------------------------------------------------------------------
// Screen-clear and bell

func clearScreenSeq() string { return "\x1b[H\x1b[2J" }

func beep(fd int) { writeAll(fd, "\x07") }
