package linecraft

import "errors"

// Kind classifies the reason a line-editing operation failed.
type Kind int

const (
	// KindIOError covers read/write/ioctl failures on the terminal fd.
	KindIOError Kind = iota
	// KindBadTerminal covers a non-tty fd or a blacklisted TERM value.
	KindBadTerminal
	// KindEOF covers a zero-byte read (fd closed at the other end).
	KindEOF
	// KindCancelled covers SIGINT or an explicit Cancel() call.
	KindCancelled
	// KindOutOfMemory covers a buffer growth failure.
	KindOutOfMemory
	// KindInvalidArgument covers a caller-supplied zero-length buffer etc.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindIOError:
		return "io error"
	case KindBadTerminal:
		return "bad terminal"
	case KindEOF:
		return "eof"
	case KindCancelled:
		return "cancelled"
	case KindOutOfMemory:
		return "out of memory"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// Error is the error type surfaced by every exported linecraft operation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so callers
// can do errors.Is(err, linecraft.ErrClosed) and similar.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Sentinel errors for errors.Is comparisons against well known outcomes.
var (
	// ErrClosed is returned when the input stream hit EOF.
	ErrClosed = &Error{Kind: KindEOF, Msg: "closed"}
	// ErrCancelled is returned when the edit was interrupted (SIGINT/Cancel).
	ErrCancelled = &Error{Kind: KindCancelled, Msg: "cancelled"}
	// ErrBadTerminal is returned when the fd is not a supported tty.
	ErrBadTerminal = &Error{Kind: KindBadTerminal, Msg: "not a supported terminal"}
)
