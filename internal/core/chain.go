// Package core provides the internal implementation of qmock's call-chain,
// expectation-queue, proxy-tree, and verification-scope infrastructure.
package core

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

type stepKind int

const (
	stepRoot stepKind = iota
	stepAttr
	stepCall
)

// Chain is an immutable record of a path of attribute accesses and
// invocations. It is used both to describe expectations and to represent
// actual observed calls. A Chain only ever points at its own prefix, so two
// chains built independently over the same path compare equal.
type Chain struct {
	parent *Chain
	kind   stepKind
	name   string
	args   []any
	kwargs map[string]any
}

// RootCall returns the root of a new chain. It renders as "call" and is the
// starting point for building expectations without a live double.
func RootCall() *Chain {
	return &Chain{kind: stepRoot}
}

// Attr returns a new chain whose tip is an attribute access on c.
func (c *Chain) Attr(name string) *Chain {
	return &Chain{parent: c, kind: stepAttr, name: name}
}

// Called returns a new chain whose tip is an invocation of c with the given
// positional arguments.
func (c *Chain) Called(args ...any) *Chain {
	return c.CalledKw(nil, args...)
}

// CalledKw returns a new chain whose tip is an invocation of c with the given
// keyword and positional arguments. The arguments are copied so the chain
// stays immutable even if the caller reuses its slices or maps.
func (c *Chain) CalledKw(kwargs map[string]any, args ...any) *Chain {
	var argsCopy []any
	if len(args) > 0 {
		argsCopy = make([]any, len(args))
		copy(argsCopy, args)
	}

	var kwargsCopy map[string]any
	if len(kwargs) > 0 {
		kwargsCopy = make(map[string]any, len(kwargs))
		for k, v := range kwargs {
			kwargsCopy[k] = v
		}
	}

	return &Chain{parent: c, kind: stepCall, args: argsCopy, kwargs: kwargsCopy}
}

// Method is shorthand for Attr(name).Called(args...).
func (c *Chain) Method(name string, args ...any) *Chain {
	return c.Attr(name).Called(args...)
}

// IsCall reports whether the chain's tip is an invocation step.
func (c *Chain) IsCall() bool {
	return c != nil && c.kind == stepCall
}

// IsRoot reports whether the chain is a bare root with no steps.
func (c *Chain) IsRoot() bool {
	return c != nil && c.kind == stepRoot
}

// Equal reports whether two chains describe the same path with the same
// argument values. Comparison is structural, recursive, and order-sensitive:
// every step must match by kind, name, and value, including nested chains
// used as arguments.
func (c *Chain) Equal(other *Chain) bool {
	for c != nil && other != nil {
		if c.kind != other.kind || c.name != other.name {
			return false
		}

		if !argsEqual(c.args, other.args) || !kwargsEqual(c.kwargs, other.kwargs) {
			return false
		}

		c, other = c.parent, other.parent
	}

	return c == nil && other == nil
}

// String renders the chain deterministically, e.g. "call.foo(1, 2)" or
// "call(x=1).foo(y=2).bar(5)". Keyword arguments render sorted by name so the
// output is stable for error-text assertions.
func (c *Chain) String() string {
	if c == nil {
		return "<nil>"
	}

	switch c.kind {
	case stepRoot:
		return "call"
	case stepAttr:
		return c.parent.String() + "." + c.name
	default:
		return c.parent.String() + "(" + renderCallArgs(c.args, c.kwargs) + ")"
	}
}

// lineage returns the chain's steps in root-to-tip order.
func (c *Chain) lineage() []*Chain {
	var steps []*Chain
	for cur := c; cur != nil; cur = cur.parent {
		steps = append(steps, cur)
	}

	// reverse in place
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	return steps
}

// callPrefixes returns every prefix of c that ends in an invocation step, in
// root-to-tip order. The prefixes share structure with c; immutability makes
// that safe.
func callPrefixes(c *Chain) []*Chain {
	var prefixes []*Chain

	for _, step := range c.lineage() {
		if step.kind == stepCall {
			prefixes = append(prefixes, step)
		}
	}

	return prefixes
}

func argsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}

	return true
}

func kwargsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}

	for k, va := range a {
		vb, ok := b[k]
		if !ok || !valuesEqual(va, vb) {
			return false
		}
	}

	return true
}

// valuesEqual compares argument values. Nested chains compare structurally,
// doubles compare by identity only, and everything else falls back to
// reflect.DeepEqual, the same comparison the rest of the engine uses.
func valuesEqual(a, b any) bool {
	if ca, ok := a.(*Chain); ok {
		cb, ok := b.(*Chain)

		return ok && ca.Equal(cb)
	}

	if da, ok := a.(*Double); ok {
		db, ok := b.(*Double)

		return ok && da == db
	}

	return reflect.DeepEqual(a, b)
}

func renderCallArgs(args []any, kwargs map[string]any) string {
	parts := make([]string, 0, len(args)+len(kwargs))

	for _, a := range args {
		parts = append(parts, renderValue(a))
	}

	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		parts = append(parts, k+"="+renderValue(kwargs[k]))
	}

	return strings.Join(parts, ", ")
}

func renderValue(v any) string {
	switch tv := v.(type) {
	case *Chain:
		return tv.String()
	case *Double:
		return "<double " + tv.Path().String() + ">"
	default:
		return fmt.Sprintf("%#v", v)
	}
}
