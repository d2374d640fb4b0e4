package core

import (
	"sync"

	"go.uber.org/zap"
)

// entry is one queued expectation: the chain that must occur next and the
// result configured for it (a value to return or an error to surface).
type entry struct {
	expected *Chain
	value    any
	err      error
	isErr    bool
}

// PopError is a logged record of a failed pop attempt, tagged with the
// goroutine that made the call. Records are appended, never removed; the
// verification scope drains them at exit.
type PopError struct {
	GoroutineID uint64
	Err         error
}

// Entry is a read-only view of a queued expectation, exposed for
// introspection and tests.
type Entry struct {
	Expected *Chain
	Result   any
	Err      error
}

// CallQueue is an ordered, goroutine-safe list of expected calls with strict
// FIFO pop-and-match semantics. It is owned by exactly one double's root and
// shared by every node in that double's tree.
type CallQueue struct {
	owner  *Double
	logger *zap.Logger

	mu        sync.Mutex
	entries   []entry
	popErrors []PopError
}

func newCallQueue(owner *Double, logger *zap.Logger) *CallQueue {
	return &CallQueue{owner: owner, logger: logger}
}

// Push appends an expectation that, when matched, returns result. Fails with
// BadCall if the chain's tip is not an invocation.
func (q *CallQueue) Push(expected *Chain, result any) error {
	return q.append(expected, entry{expected: expected, value: result})
}

// PushError appends an expectation that, when matched, surfaces err as the
// call's own error.
func (q *CallQueue) PushError(expected *Chain, err error) error {
	return q.append(expected, entry{expected: expected, err: err, isErr: true})
}

// PushAll decomposes a multi-step chain into one expectation per invocation
// prefix. Intermediate prefixes return the proxy node the tree would
// naturally produce for that prefix (resolved eagerly against the owning
// double, exactly what ResolveReturn computes); only the final, full-chain
// expectation returns finalResult.
func (q *CallQueue) PushAll(full *Chain, finalResult any) error {
	return q.appendAll(full, entry{expected: full, value: finalResult})
}

// PushAllError is PushAll with an error result for the final expectation.
func (q *CallQueue) PushAllError(full *Chain, finalErr error) error {
	return q.appendAll(full, entry{expected: full, err: finalErr, isErr: true})
}

// Pop removes and consumes the head expectation if it matches actual,
// returning its configured result. It fails with UnexpectedCall when the
// queue is empty or the head does not match; a mismatch still consumes the
// head. Both failure flavors append a PopError record, tagged with the
// calling goroutine, before returning.
func (q *CallQueue) Pop(actual *Chain) (any, error) {
	head, err := q.pop(actual)
	if err != nil {
		return nil, err
	}

	if head.isErr {
		return nil, head.err
	}

	return head.value, nil
}

// AssertEmpty fails with CallQueueNotEmpty, naming the number of unconsumed
// expectations, if any remain.
func (q *CallQueue) AssertEmpty() error {
	q.mu.Lock()
	remaining := len(q.entries)
	q.mu.Unlock()

	if remaining > 0 {
		return &CallQueueNotEmpty{Remaining: remaining}
	}

	return nil
}

// Len returns the number of unconsumed expectations.
func (q *CallQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// Pending returns a snapshot of the unconsumed expectations in queue order.
func (q *CallQueue) Pending() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := make([]Entry, len(q.entries))
	for i, e := range q.entries {
		pending[i] = Entry{Expected: e.expected, Result: e.value, Err: e.err}
	}

	return pending
}

// PopErrors returns the accumulated pop-error log without clearing it.
func (q *CallQueue) PopErrors() []PopError {
	q.mu.Lock()
	defer q.mu.Unlock()

	records := make([]PopError, len(q.popErrors))
	copy(records, q.popErrors)

	return records
}

func (q *CallQueue) append(expected *Chain, e entry) error {
	if !expected.IsCall() {
		return &BadCall{Chain: expected}
	}

	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	q.logger.Debug("expectation pushed", zap.Stringer("call", expected))

	return nil
}

func (q *CallQueue) appendAll(full *Chain, final entry) error {
	if !full.IsCall() {
		return &BadCall{Chain: full}
	}

	prefixes := callPrefixes(full)

	for _, prefix := range prefixes[:len(prefixes)-1] {
		value, err := q.owner.ResolveReturn(prefix)
		if err != nil {
			return err
		}

		if err := q.append(prefix, entry{expected: prefix, value: value}); err != nil {
			return err
		}
	}

	return q.append(full, final)
}

// pop is the entry-level pop used by the proxy tree, which needs to see the
// raw entry to distinguish verification failures from configured errors.
func (q *CallQueue) pop(actual *Chain) (entry, error) {
	gid := goroutineID()

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		err := &UnexpectedCall{Actual: actual}
		q.popErrors = append(q.popErrors, PopError{GoroutineID: gid, Err: err})
		q.logger.Debug("pop failed on empty queue", zap.Stringer("call", actual), zap.Uint64("goroutine", gid))

		return entry{}, err
	}

	head := q.entries[0]
	q.entries = q.entries[1:]

	if !head.expected.Equal(actual) {
		err := &UnexpectedCall{Actual: actual, Expected: head.expected}
		q.popErrors = append(q.popErrors, PopError{GoroutineID: gid, Err: err})
		q.logger.Debug("pop mismatch", zap.Stringer("actual", actual), zap.Stringer("expected", head.expected))

		return entry{}, err
	}

	q.logger.Debug("expectation consumed", zap.Stringer("call", actual))

	return head, nil
}
