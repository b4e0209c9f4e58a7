package beanjson

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel error kinds. Every failure raised by the codec is an *Error that
// matches exactly one of these via errors.Is.
var (
	// ErrProtocol reports a writer grammar violation, such as emitting a
	// value inside an object with no pending name.
	ErrProtocol = errors.New("protocol violation")
	// ErrConfiguration reports a bad configuration call, such as an element
	// type override naming an unknown member.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInstantiation reports that a value of the requested type could not
	// be constructed.
	ErrInstantiation = errors.New("cannot instantiate type")
	// ErrMemberNotFound reports an input member with no matching descriptor
	// under the strict unknown-member policy.
	ErrMemberNotFound = errors.New("member not found")
	// ErrTypeMismatch reports a node shape that does not fit the requested
	// static type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrConversion reports a scalar literal that cannot be coerced to the
	// requested primitive.
	ErrConversion = errors.New("conversion failed")
	// ErrSyntax reports malformed input from a parser driver.
	ErrSyntax = errors.New("syntax error")
)

// Error is the single failure type of the codec. It carries a kind from the
// sentinel set above, an optional cause, and an ordered trace of object-graph
// locations appended as the error unwinds, innermost location first.
type Error struct {
	kind  error
	msg   string
	cause error
	trace []string
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: errors.Newf(format, args...).Error()}
}

func wrapError(kind error, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: errors.Newf(format, args...).Error(), cause: cause}
}

// Error renders the base message followed by the serialization trace.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.msg)
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	if len(e.trace) > 0 {
		b.WriteString("\nSerialization trace:")
		for _, t := range e.trace {
			b.WriteString("\n")
			b.WriteString(t)
		}
	}
	return b.String()
}

// Is reports whether target is the sentinel kind of this error.
func (e *Error) Is(target error) bool { return target == e.kind }

// Unwrap exposes the cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the sentinel this error matches.
func (e *Error) Kind() error { return e.kind }

// Trace returns the accumulated trace entries, innermost first. The returned
// slice must not be mutated.
func (e *Error) Trace() []string { return e.trace }

// AddTrace appends a location entry describing where in the object graph the
// failure occurred. Hooks and serializers may intercept an *Error, add trace
// information, and return it.
func (e *Error) AddTrace(info string) {
	e.trace = append(e.trace, info)
}

// NewSyntaxError wraps a parser failure as an ErrSyntax *Error. Parser
// drivers use it so malformed input reports uniformly.
func NewSyntaxError(cause error) *Error {
	var se *Error
	if errors.As(cause, &se) {
		return se
	}
	return wrapError(ErrSyntax, cause, "malformed input")
}

// annotate appends a trace entry to err when it already is an *Error;
// otherwise it wraps err into a fresh *Error of the given kind first. The
// existing trace is never rewritten, only extended.
func annotate(err error, kind error, info string) error {
	var se *Error
	if errors.As(err, &se) {
		se.AddTrace(info)
		return se
	}
	se = wrapError(kind, err, "serialization failed")
	se.AddTrace(info)
	return se
}
