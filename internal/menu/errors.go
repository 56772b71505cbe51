package menu

import "errors"

// Kind classifies why a command line failed to dispatch, mirroring the
// linecraft.Kind taxonomy but scoped to menu-tree parsing and argument
// validation instead of terminal I/O.
type Kind int

const (
	// KindUnknownCommand means no item at this menu level matched the
	// token, exactly or as a prefix.
	KindUnknownCommand Kind = iota
	// KindAmbiguousCommand means more than one item matched the token
	// as a prefix and none matched it exactly.
	KindAmbiguousCommand
	// KindIncompleteCommand means the command line traced into a
	// submenu but never reached a leaf.
	KindIncompleteCommand
	// KindInvalidArgument means an argument failed to parse, or parsed
	// outside its declared range.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindUnknownCommand:
		return "unknown command"
	case KindAmbiguousCommand:
		return "ambiguous command"
	case KindIncompleteCommand:
		return "additional input needed"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "command error"
	}
}

// Error is the error type returned by this package's parsing and
// argument-validation helpers.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any (e.g. a strconv error)
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
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
