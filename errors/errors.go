package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which lifecycle step produced the error
type Phase string

const (
	PhaseSetup    Phase = "setup"    // first registration of an entry
	PhaseTeardown Phase = "teardown" // dispose, drain or pause
	PhaseResume   Phase = "resume"   // setup replayed after a visible edge
	PhaseMount    Phase = "mount"    // owner activation bookkeeping
	PhaseWatch    Phase = "watch"    // environment signal sources
)

// Kind categorizes the error
type Kind string

const (
	KindFailed       Kind = "failed"
	KindPanic        Kind = "panic"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindClosed       Kind = "closed"
	KindUnsupported  Kind = "unsupported"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Owner  string
	Key    string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Key != "" {
		b.WriteString(" for key ")
		b.WriteString(e.Key)
	}
	if e.Owner != "" {
		b.WriteString(" in owner ")
		b.WriteString(e.Owner)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Owner sets the owner identity
func (b *Builder) Owner(id string) *Builder {
	b.err.Owner = id
	return b
}

// Key sets the entry key
func (b *Builder) Key(key string) *Builder {
	b.err.Key = key
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Wrap wraps a callback error with lifecycle context
func Wrap(phase Phase, owner, key string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindFailed,
		Owner: owner,
		Key:   key,
		Cause: cause,
	}
}

// Panicked converts a recovered panic value into an error.
// If the value is itself an error it becomes the cause.
func Panicked(phase Phase, owner, key string, recovered any) *Error {
	e := &Error{
		Phase: phase,
		Kind:  KindPanic,
		Owner: owner,
		Key:   key,
		Value: recovered,
	}
	if err, ok := recovered.(error); ok {
		e.Cause = err
	} else {
		e.Detail = fmt.Sprint(recovered)
	}
	return e
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Closed reports use of an owner that has already been drained
func Closed(phase Phase, owner string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Owner:  owner,
		Detail: "owner is no longer active",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what + " is not supported",
	}
}
