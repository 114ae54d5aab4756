// Package errs defines the error kinds surfaced to the embedder: loading a
// guest module or stepping it can fail in one of a small, closed set of
// ways, and callers need to tell them apart programmatically rather than by
// matching strings.
package errs

import (
	"fmt"

	"github.com/go-errors/errors"
	"golang.org/x/xerrors"
)

// Kind identifies one of the four error kinds a caller can distinguish.
type Kind int

const (
	// InvalidInterface means the module does not expose configure/update
	// with exactly the required nullary signature.
	InvalidInterface Kind = iota
	// UnknownHostFunction means the module imports a symbol outside the
	// host ABI.
	UnknownHostFunction
	// EngineError wraps any trap or instantiation failure from the
	// underlying WASM engine.
	EngineError
	// Io means the module file could not be read.
	Io
)

func (k Kind) String() string {
	switch k {
	case InvalidInterface:
		return "InvalidInterface"
	case UnknownHostFunction:
		return "UnknownHostFunction"
	case EngineError:
		return "EngineError"
	case Io:
		return "Io"
	default:
		return "UnknownKind"
	}
}

// RuntimeError is a ComplexError analog: it carries a Kind so calling code
// can branch on failure category, plus an xerrors.Frame for a trace and an
// optional wrapped cause.
type RuntimeError struct {
	Kind    Kind
	Message string
	Cause   error
	frame   xerrors.Frame
}

// New builds a RuntimeError of the given kind, capturing a stack frame.
func New(kind Kind, message string) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: message, frame: xerrors.Caller(1)}
}

// Wrap builds a RuntimeError of the given kind around an underlying cause.
func Wrap(kind Kind, message string, cause error) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: message, Cause: cause, frame: xerrors.Caller(1)}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprint(e)
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// FormatError implements xerrors.Formatter.
func (e *RuntimeError) FormatError(p xerrors.Printer) error {
	p.Printf("%s: %s", e.Kind, e.Message)
	e.frame.Format(p)
	return e.Cause
}

// Format implements fmt.Formatter so %+v prints a stack trace.
func (e *RuntimeError) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

// HasKind reports whether err is (or wraps) a RuntimeError of the given
// kind.
func HasKind(err error, kind Kind) bool {
	var re *RuntimeError
	if xerrors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

// WrapStack wraps err for the sake of showing a stack trace at the
// embedder boundary. Returns nil when err is nil.
func WrapStack(err error) error {
	if err == nil {
		return err
	}
	return errors.Wrap(err, 0)
}
