package core_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/toejough/qmock"
)

func TestChainEqual_IndependentBuildsCompareEqual(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	a := qmock.Call().Attr("foo").Called(1, 2, 3)
	b := qmock.Call().Attr("foo").Called(1, 2, 3)

	g.Expect(a.Equal(b)).To(BeTrue())
	g.Expect(b.Equal(a)).To(BeTrue())
}

func TestChainEqual_Mismatches(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	base := qmock.Call().Attr("foo").Called(1)

	g.Expect(base.Equal(qmock.Call().Attr("bar").Called(1))).To(BeFalse(), "different name")
	g.Expect(base.Equal(qmock.Call().Attr("foo").Called(2))).To(BeFalse(), "different arg value")
	g.Expect(base.Equal(qmock.Call().Attr("foo").Called(1, 1))).To(BeFalse(), "different arg count")
	g.Expect(base.Equal(qmock.Call().Attr("foo"))).To(BeFalse(), "attribute vs invocation")
	g.Expect(base.Equal(qmock.Call().Attr("foo").Called(1).Attr("x"))).To(BeFalse(), "different depth")
	g.Expect(base.Equal(nil)).To(BeFalse())
}

func TestChainEqual_KeywordArguments(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	a := qmock.Call().Attr("foo").CalledKw(map[string]any{"x": 1, "y": 2})
	b := qmock.Call().Attr("foo").CalledKw(map[string]any{"y": 2, "x": 1})
	c := qmock.Call().Attr("foo").CalledKw(map[string]any{"x": 1, "y": 3})

	g.Expect(a.Equal(b)).To(BeTrue(), "key order is irrelevant")
	g.Expect(a.Equal(c)).To(BeFalse(), "value differs")
}

func TestChainEqual_NestedChainArguments(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	inner1 := qmock.Call().Attr("inner").Called(7)
	inner2 := qmock.Call().Attr("inner").Called(7)
	inner3 := qmock.Call().Attr("inner").Called(8)

	g.Expect(qmock.Call().Attr("outer").Called(inner1).
		Equal(qmock.Call().Attr("outer").Called(inner2))).To(BeTrue(),
		"nested chains compare structurally")
	g.Expect(qmock.Call().Attr("outer").Called(inner1).
		Equal(qmock.Call().Attr("outer").Called(inner3))).To(BeFalse())
}

func TestChainEqual_DoubleArgumentsCompareByIdentity(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	d1 := qmock.New()
	d2 := qmock.New()

	g.Expect(qmock.Call().Attr("foo").Called(d1).
		Equal(qmock.Call().Attr("foo").Called(d1))).To(BeTrue())
	g.Expect(qmock.Call().Attr("foo").Called(d1).
		Equal(qmock.Call().Attr("foo").Called(d2))).To(BeFalse())
}

func TestChainEqual_SamePathProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 1, 5).Draw(rt, "names")
		args := rapid.SliceOfN(rapid.Int(), 0, 4).Draw(rt, "args")

		build := func() *qmock.Chain {
			c := qmock.Call()
			for _, n := range names {
				c = c.Attr(n)
			}

			anyArgs := make([]any, len(args))
			for i, a := range args {
				anyArgs[i] = a
			}

			return c.Called(anyArgs...)
		}

		a, b := build(), build()
		if !a.Equal(b) {
			rt.Fatalf("independently built chains over the same path are not equal: %s vs %s", a, b)
		}
	})
}

func TestChainString_Rendering(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(qmock.Call().String()).To(Equal("call"))
	g.Expect(qmock.Call().Attr("foo").String()).To(Equal("call.foo"))
	g.Expect(qmock.Call().Attr("foo").Called().String()).To(Equal("call.foo()"))
	g.Expect(qmock.Call().Attr("foo").Called(1, 2, 3).String()).To(Equal("call.foo(1, 2, 3)"))
	g.Expect(qmock.Call().Attr("foo").Attr("bar").Called(5).String()).To(Equal("call.foo.bar(5)"))
	g.Expect(qmock.Call().Called().String()).To(Equal("call()"))
}

func TestChainString_KeywordArgumentsRenderSorted(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	c := qmock.Call().
		CalledKw(map[string]any{"x": 1}).
		Attr("foo").
		CalledKw(map[string]any{"y": 2}).
		Attr("bar").
		Called(5)
	g.Expect(c.String()).To(Equal("call(x=1).foo(y=2).bar(5)"))

	mixed := qmock.Call().Attr("barf").CalledKw(map[string]any{"z": 9, "w": 8}, 5)
	g.Expect(mixed.String()).To(Equal("call.barf(5, w=8, z=9)"))
}

func TestChainString_NestedValues(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	inner := qmock.Call().Attr("inner").Called(7)
	g.Expect(qmock.Call().Attr("outer").Called(inner).String()).
		To(Equal("call.outer(call.inner(7))"))

	g.Expect(qmock.Call().Attr("foo").Called("bar").String()).
		To(Equal(`call.foo("bar")`))

	d := qmock.New()
	g.Expect(qmock.Call().Attr("foo").Called(d).String()).
		To(Equal("call.foo(<double call>)"))
}

func TestChainString_IsDeterministic(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		kwargs := rapid.MapOfN(rapid.StringMatching(`[a-z]{1,6}`), rapid.Int(), 1, 5).Draw(rt, "kwargs")

		anyKwargs := make(map[string]any, len(kwargs))
		for k, v := range kwargs {
			anyKwargs[k] = v
		}

		first := qmock.Call().Attr("foo").CalledKw(anyKwargs).String()
		for range 10 {
			if again := qmock.Call().Attr("foo").CalledKw(anyKwargs).String(); again != first {
				rt.Fatalf("rendering is unstable: %q vs %q", first, again)
			}
		}
	})
}

func TestChainMethod_IsAttrPlusCalled(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(qmock.Call().Method("foo", 1, 2).
		Equal(qmock.Call().Attr("foo").Called(1, 2))).To(BeTrue())
}

func TestChainImmutability_ExtendingDoesNotMutate(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	base := qmock.Call().Attr("foo")
	_ = base.Called(1)
	_ = base.Attr("bar")

	g.Expect(base.String()).To(Equal("call.foo"))
	g.Expect(base.IsCall()).To(BeFalse())

	args := []any{1, 2}
	kwargs := map[string]any{"x": 1}
	c := qmock.Call().Attr("foo").CalledKw(kwargs, args...)

	args[0] = 99
	kwargs["x"] = 99

	g.Expect(c.String()).To(Equal("call.foo(1, 2, x=1)"), "chains copy their arguments")
}
