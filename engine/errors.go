package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every *Error unwraps to exactly one of these, so callers can
// use errors.Is(err, engine.ErrArity) and similar.
var (
	ErrSyntaxMismatch  = errors.New("unsupported syntax")
	ErrArity           = errors.New("wrong number of arguments")
	ErrType            = errors.New("type error")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrUnknownFunction = errors.New("unknown function")
	ErrModeViolation   = errors.New("not allowed in format expression")
	ErrFormat          = errors.New("invalid format string")
	ErrRuntime         = errors.New("execution failed")
)

// Error is the error type returned by the evaluator.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error
	Msg  string
	// Columns lists the valid column names for ErrUnknownColumn.
	Columns []string
	// Suggestion is the closest known name for ErrUnknownFunction, if any.
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if len(e.Columns) > 0 {
		b.WriteString(". Valid columns: ")
		b.WriteString(strings.Join(e.Columns, ", "))
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, ". Did you mean %q?", e.Suggestion)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func syntaxErr(format string, args ...any) error {
	return newError(ErrSyntaxMismatch, format, args...)
}

func typeErr(format string, args ...any) error {
	return newError(ErrType, format, args...)
}

func formatErr(format string, args ...any) error {
	return newError(ErrFormat, format, args...)
}

func modeErr(format string, args ...any) error {
	return newError(ErrModeViolation, format, args...)
}

func arityErr(name string, min, max, got int) error {
	var want string
	switch {
	case min == max:
		want = fmt.Sprintf("exactly %d", min)
	case max < 0:
		want = fmt.Sprintf("at least %d", min)
	default:
		want = fmt.Sprintf("%d to %d", min, max)
	}
	return newError(ErrArity, "%s: expected %s argument(s), got %d", name, want, got)
}

func unknownColumnErr(name string, columns []string) error {
	e := newError(ErrUnknownColumn, "column %q not found", name)
	e.Columns = append([]string(nil), columns...)
	return e
}

func unknownFunctionErr(name, suggestion string) error {
	e := newError(ErrUnknownFunction, "function %q not found", name)
	e.Suggestion = suggestion
	return e
}

func runtimeErr(err error) error {
	var ee *Error
	if errors.As(err, &ee) {
		return err
	}
	return &Error{Kind: ErrRuntime, Msg: "query execution failed", Err: err}
}
