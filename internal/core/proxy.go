package core

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// resultChildKey is the reserved child name holding a node's invocation
// result. It routes through the same child mechanism as any other name, so
// tests can assign it directly or set expectations on it like an ordinary
// attribute.
const resultChildKey = "return_value"

// childSlot holds either a lazily-created child proxy or a directly-assigned
// value. Assignment permanently (until reassigned) short-circuits proxying
// and call matching for that name.
type childSlot struct {
	value    any
	assigned bool
}

// Double is one node of a proxy tree. The root is created by New; children
// materialize lazily on first access and are identity-stable: repeated access
// of the same name returns the same node until overwritten by Set. All nodes
// of a tree share the root's CallQueue. Two doubles are equal only if they
// are the same node (pointer identity).
type Double struct {
	queue  *CallQueue
	parent *Double
	name   string
	logger *zap.Logger

	mu       sync.Mutex
	children map[string]childSlot

	// Result nodes remember the arguments of the most recent matched
	// invocation of their parent, so their accumulated path reflects the
	// real call that produced them.
	lastArgs   []any
	lastKwargs map[string]any
}

// New creates the root double of a fresh proxy tree with its own empty
// expectation queue.
func New(opts ...Option) *Double {
	cfg := newConfig(opts)
	root := &Double{logger: cfg.logger, children: map[string]childSlot{}}
	root.queue = newCallQueue(root, cfg.logger)

	return root
}

// Queue returns the expectation queue shared by every node of this tree.
func (d *Double) Queue() *CallQueue {
	return d.queue
}

// Path returns the chain of steps that reaches this node from the root.
func (d *Double) Path() *Chain {
	if d.parent == nil {
		return RootCall()
	}

	if d.name == resultChildKey {
		d.mu.Lock()
		args, kwargs := d.lastArgs, d.lastKwargs
		d.mu.Unlock()

		return d.parent.Path().CalledKw(kwargs, args...)
	}

	return d.parent.Path().Attr(d.name)
}

// Get returns the directly-assigned value for name if one exists, otherwise
// the identity-stable child proxy for name, creating it on first access.
// Exactly one child wins a concurrent first-access race.
func (d *Double) Get(name string) any {
	return d.slot(name).value
}

// Attr returns the child proxy for name. It panics if name holds a
// directly-assigned value: assigned slots are plain data, not callable
// proxies, and traversing one is a programming error in the test.
func (d *Double) Attr(name string) *Double {
	slot := d.slot(name)
	if slot.assigned {
		panic(fmt.Sprintf("qmock: attribute %q holds a directly assigned value; read it with Get", name))
	}

	return slot.value.(*Double)
}

// Set directly assigns a value to name, overwriting any previously
// materialized child proxy. Future Get calls return the value unchanged and
// it is never call-matched.
func (d *Double) Set(name string, value any) {
	d.mu.Lock()
	d.children[name] = childSlot{value: value, assigned: true}
	d.mu.Unlock()
}

// Result returns this node's invocation-result slot, the value an unprimed
// call in a PushAll chain would produce.
func (d *Double) Result() any {
	return d.Get(resultChildKey)
}

// SetResult assigns the value this node's invocations resolve to, the
// counterpart of Set for the reserved result slot.
func (d *Double) SetResult(value any) {
	d.Set(resultChildKey, value)
}

// Call invokes the node with positional arguments. The invocation chain is
// built from the node's accumulated path and matched against the head of the
// queue: a match yields the configured result (or configured error); a
// mismatch or empty queue yields an UnexpectedCall.
func (d *Double) Call(args ...any) (any, error) {
	return d.CallKw(nil, args...)
}

// CallKw invokes the node with keyword and positional arguments.
func (d *Double) CallKw(kwargs map[string]any, args ...any) (any, error) {
	actual := d.Path().CalledKw(kwargs, args...)

	head, err := d.queue.pop(actual)
	if err != nil {
		return nil, err
	}

	d.noteCall(args, kwargs)

	if head.isErr {
		return nil, head.err
	}

	return head.value, nil
}

// Invoke is shorthand for Attr(name).Call(args...), the form generated
// facades use.
func (d *Double) Invoke(name string, args ...any) (any, error) {
	return d.Attr(name).Call(args...)
}

// ResolveReturn walks chain against this node without consulting the
// expectation queue and returns the node or value the tree would produce if
// every step were a plain access or an unprimed call. This mirrors what
// PushAll computes for intermediate prefixes. It fails on a bare root chain,
// and on any step that tries to traverse through a directly-assigned value.
func (d *Double) ResolveReturn(chain *Chain) (any, error) {
	if chain == nil || chain.IsRoot() {
		return nil, ErrBareCall
	}

	steps := chain.lineage()

	var current any = d

	for _, step := range steps[1:] {
		node, ok := current.(*Double)
		if !ok {
			return nil, fmt.Errorf("%w: %s holds %#v", ErrUnresolvable, step, current)
		}

		switch step.kind {
		case stepAttr:
			current = node.Get(step.name)
		default:
			current = node.Get(resultChildKey)
		}
	}

	return current, nil
}

// slot returns the child slot for name, creating the proxy child on first
// access under the node's lock.
func (d *Double) slot(name string) childSlot {
	d.mu.Lock()
	defer d.mu.Unlock()

	if slot, ok := d.children[name]; ok {
		return slot
	}

	child := &Double{
		queue:    d.queue,
		parent:   d,
		name:     name,
		logger:   d.logger,
		children: map[string]childSlot{},
	}
	slot := childSlot{value: child}
	d.children[name] = slot

	return slot
}

// noteCall records the arguments of a matched invocation on the node's
// result child, if one has materialized, so chained calls on the result
// match expectations built from the full invocation path.
func (d *Double) noteCall(args []any, kwargs map[string]any) {
	d.mu.Lock()
	slot, ok := d.children[resultChildKey]
	d.mu.Unlock()

	if !ok || slot.assigned {
		return
	}

	result := slot.value.(*Double)

	result.mu.Lock()
	result.lastArgs = args
	result.lastKwargs = kwargs
	result.mu.Unlock()
}
