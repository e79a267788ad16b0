// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// ID names one of the evaluator's error conditions.
type ID string

const (
	NoValue           ID = "no-value"
	NoArg             ID = "no-arg"
	NoRefine          ID = "no-refine"
	BadRefine         ID = "bad-refine"
	BadRefineRevoke   ID = "bad-refine-revoke"
	BadPath           ID = "bad-path"
	BadPathType       ID = "bad-path-type"
	BadPathSet        ID = "bad-path-set"
	BadFieldSet       ID = "bad-field-set"
	BadPathRange      ID = "bad-path-range"
	ExpectArg         ID = "expect-arg"
	LocalInjection    ID = "local-injection"
	NeedValue         ID = "need-value"
	NoOpArg           ID = "no-op-arg"
	ExpressionBarrier ID = "expression-barrier"
	ApplyTooMany      ID = "apply-too-many"
	TooLong           ID = "too-long"
	StackOverflow     ID = "stack-overflow"
	BadSysFunc        ID = "bad-sys-func"
	Halt              ID = "halt"
	NotBound          ID = "not-bound"
	Syntax            ID = "syntax"
	Misc              ID = "misc"
)

// Error is the evaluator's error value: a taxonomy id, a message, and the
// source neighborhood the evaluator publishes for annotation.
type Error struct {
	ID      ID
	Message string

	// Near is the molded source around the failing expression, when known.
	Near string
	// Index is the expression-start index within the failing array.
	Index int
	// Where is the label chain of in-flight calls, innermost first.
	Where []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "** error [%s]: %s", e.ID, e.Message)
	if e.Near != "" {
		fmt.Fprintf(&sb, "\n** near: %s", e.Near)
	}
	if len(e.Where) > 0 {
		fmt.Fprintf(&sb, "\n** where: %s", strings.Join(e.Where, " "))
	}
	return sb.String()
}

// Newf builds an error with a formatted message.
func Newf(id ID, format string, args ...any) *Error {
	return &Error{ID: id, Message: fmt.Sprintf(format, args...)}
}

// IsHalt reports whether the error is the cooperative halt.
func (e *Error) IsHalt() bool { return e.ID == Halt }

// failure wraps an *Error for the panic channel so that Trap does not
// swallow unrelated panics.
type failure struct{ err *Error }

// Fail raises err as a non-local exit to the nearest Trap.
func Fail(err *Error) {
	panic(failure{err})
}

// Trap runs fn and recovers any failure raised through Fail, returning it.
// Other panics are re-raised untouched.
func Trap(fn func()) (err *Error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(failure); ok {
				err = f.err
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
