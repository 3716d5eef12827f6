package combo

import (
	"errors"
	"fmt"
)

// Kind classifies client-side failures.
type Kind string

const (
	KindValidation Kind = "validation"
	KindTransport  Kind = "transport"
	KindTimeout    Kind = "timeout"
	KindServer     Kind = "server"
	KindMirror     Kind = "mirror"
)

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrTransport  = &Error{Kind: KindTransport}
	ErrTimeout    = &Error{Kind: KindTimeout}
	ErrServer     = &Error{Kind: KindServer}
	ErrMirror     = &Error{Kind: KindMirror}
)

// ErrNoItems is returned when a poll is requested for an empty selection.
var ErrNoItems = errors.New("no items selected")

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// E builds a classified error.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// UserMessage renders err the way it is shown in a notice.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindValidation:
		var ce *Error
		errors.As(err, &ce)
		if ce.Err != nil {
			return ce.Err.Error()
		}
		return "invalid request"
	case KindTransport:
		return "Failed to reach the backend. Please ensure that it is running."
	case KindTimeout:
		return "Failed to fetch best combination: timeout exceeded"
	case KindServer:
		return "The server failed to compute a combination."
	default:
		if err == nil {
			return ""
		}
		return err.Error()
	}
}
