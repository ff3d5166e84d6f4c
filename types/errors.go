package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// MalformedError reports input that violates the data model, such as a type
// constructor used with two different arities. Unlike a failed unification it is
// never an expected outcome, so the engine aborts the current operation.
type MalformedError struct {
	cause error
}

func (e *MalformedError) Error() string {
	return "malformed program: " + e.cause.Error()
}

func (e *MalformedError) Unwrap() error { return e.cause }

// Format prints the stack trace of where the error was raised with %+v
func (e *MalformedError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		_, _ = fmt.Fprintf(s, "malformed program: %+v", e.cause)
		return
	}
	_, _ = fmt.Fprint(s, e.Error())
}

// Fatalf aborts the current engine operation with a *MalformedError
func Fatalf(format string, args ...any) {
	panic(&MalformedError{cause: errors.Errorf(format, args...)})
}

// Recover turns a *MalformedError panic into an error stored in err. It must be
// deferred directly by public entry points. Other panics are propagated.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if malformed, ok := r.(*MalformedError); ok {
		*err = malformed
		return
	}
	panic(r)
}
