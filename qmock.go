// Package qmock provides a strict-order call-verification engine for test
// doubles. A test pre-loads an exact, ordered sequence of expected calls —
// each mapped to a canned return value or an error — against a synthetic
// proxy tree, and the engine fails the instant an actual call deviates from
// that sequence by shape, order, or argument values. Verification failures
// raised on background goroutines are collected and re-surfaced on the
// owning goroutine at scope exit.
//
// This is the public API entry point. Implementation lives in internal/core.
package qmock

import (
	"go.uber.org/zap"

	"github.com/toejough/qmock/internal/core"
)

// Chain is an immutable record of a path of attribute accesses and
// invocations, used both for expectations and for actual observed calls.
type Chain = core.Chain

// CallQueue is an ordered, goroutine-safe list of expected calls with strict
// FIFO pop-and-match semantics.
type CallQueue = core.CallQueue

// Double is one node of a proxy tree rooted at New.
type Double = core.Double

// Entry is a read-only view of a queued expectation.
type Entry = core.Entry

// Option configures a Double or Scope at construction time.
type Option = core.Option

// PopError is a logged (goroutine id, error) record of a failed pop attempt.
type PopError = core.PopError

// Scope bounds one verification scope around a single owning goroutine.
type Scope = core.Scope

// Error types.

// BadCall reports pushing an expectation that does not end in an invocation.
type BadCall = core.BadCall

// CallQueueNotEmpty reports expectations left unconsumed at scope exit.
type CallQueueNotEmpty = core.CallQueueNotEmpty

// QMockErrorsInThreads aggregates pop errors raised on non-owning goroutines.
type QMockErrorsInThreads = core.QMockErrorsInThreads

// UnexpectedCall reports a pop attempt that failed by emptiness or mismatch.
type UnexpectedCall = core.UnexpectedCall

// Sentinel errors.
var (
	// ErrBareCall is returned by ResolveReturn for a chain with no steps.
	ErrBareCall = core.ErrBareCall
	// ErrCallMismatch is the mismatch flavor carried by UnexpectedCall.
	ErrCallMismatch = core.ErrCallMismatch
	// ErrQueueEmpty is the empty-queue flavor carried by UnexpectedCall.
	ErrQueueEmpty = core.ErrQueueEmpty
	// ErrUnresolvable is returned by ResolveReturn when a step traverses a
	// directly-assigned value.
	ErrUnresolvable = core.ErrUnresolvable
)

// Call returns the root of a new expectation chain. It renders as "call":
// Call().Attr("foo").Called(5) describes the observed call double.foo(5).
func Call() *Chain {
	return core.RootCall()
}

// New creates the root double of a fresh proxy tree with its own empty
// expectation queue.
func New(opts ...Option) *Double {
	return core.New(opts...)
}

// NewScope creates a verification scope with its own root double.
func NewScope(opts ...Option) *Scope {
	return core.NewScope(opts...)
}

// Run creates a scope, executes body in it, and returns the scope outcome:
// cross-goroutine pop errors aggregate into a QMockErrorsInThreads (chaining
// any body error as cause), a body error otherwise propagates unchanged, and
// a clean body requires an empty queue.
func Run(body func(*Double) error, opts ...Option) error {
	return core.Run(body, opts...)
}

// Swap installs replacement at target for the duration of the scope,
// restoring the previous value when the scope's Run exits.
func Swap[T any](s *Scope, target *T, replacement T) {
	core.Swap(s, target, replacement)
}

// WithLogger installs a structured logger for debug tracing of queue and
// scope events.
func WithLogger(logger *zap.Logger) Option {
	return core.WithLogger(logger)
}
