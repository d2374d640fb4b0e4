package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel flavors carried by UnexpectedCall, for use with errors.Is.
var (
	ErrQueueEmpty   = errors.New("queue is empty")
	ErrCallMismatch = errors.New("call does not match expectation")
)

// ErrBareCall is returned by ResolveReturn when given a root chain with no
// steps to walk.
var ErrBareCall = errors.New("chain has no steps to resolve")

// ErrUnresolvable is returned by ResolveReturn when a step tries to traverse
// through a directly-assigned value, which is plain data rather than a proxy.
var ErrUnresolvable = errors.New("cannot resolve through assigned value")

// BadCall reports an attempt to push an expectation whose chain does not end
// in an invocation. A bare attribute is not a call and can never be matched
// against one.
type BadCall struct {
	Chain *Chain
}

func (e *BadCall) Error() string {
	return fmt.Sprintf("expected call must end in an invocation, not an attribute: %s", e.Chain)
}

// UnexpectedCall reports a pop attempt that failed, either because the queue
// was empty or because the actual call did not match the head expectation.
// Expected is nil in the empty-queue case.
type UnexpectedCall struct {
	Actual   *Chain
	Expected *Chain
}

func (e *UnexpectedCall) Error() string {
	if e.Expected == nil {
		return fmt.Sprintf("Queue is empty. call: %s", e.Actual)
	}

	return fmt.Sprintf("Call does not match expectation. actual: %s; expected: %s", e.Actual, e.Expected)
}

// Unwrap exposes the failure flavor so callers can switch on
// errors.Is(err, ErrQueueEmpty) vs errors.Is(err, ErrCallMismatch).
func (e *UnexpectedCall) Unwrap() error {
	if e.Expected == nil {
		return ErrQueueEmpty
	}

	return ErrCallMismatch
}

// CallQueueNotEmpty reports expectations left unconsumed at the end of a
// verification scope.
type CallQueueNotEmpty struct {
	Remaining int
}

func (e *CallQueueNotEmpty) Error() string {
	return fmt.Sprintf("call queue is not empty: %d expected call(s) remain", e.Remaining)
}

// QMockErrorsInThreads aggregates pop errors that were raised on goroutines
// other than the one that owned the verification scope. Such failures never
// interrupted the owning goroutine, so the scope surfaces them at exit.
//
// Cause is the error returned by the scope body itself, if any; it stays
// discoverable through errors.Unwrap rather than being replaced.
type QMockErrorsInThreads struct {
	Errors []PopError
	Cause  error
}

func (e *QMockErrorsInThreads) Error() string {
	parts := make([]string, len(e.Errors))
	for i, rec := range e.Errors {
		parts[i] = fmt.Sprintf("%v", rec.Err)
	}

	return "Unhandled QMock errors raised in other threads: [" + strings.Join(parts, ", ") + "]"
}

func (e *QMockErrorsInThreads) Unwrap() error {
	return e.Cause
}
