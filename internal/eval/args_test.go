package eval

import (
	"testing"

	"github.com/kr/pretty"

	"rebo/internal/value"
)

// The property from the spec: for parameter order [a /b c /d e] and the
// call F/d/b A B C, arguments map a<-A, b on, c<-C, d on, e<-B.
func TestOutOfOrderRefinements(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [a /b c /d e] [reduce [a b c d e]]")
	got := doStr(t, m, "f/d/b 1 2 3")
	want := "[1 b 3 d 2]"
	if mold := value.Mold(&got); mold != want {
		t.Fatalf("refinement mapping wrong:\n%s", pretty.Sprintf("got  %s\nwant %s", mold, want))
	}
}

func TestRefinementsInOrder(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [a /b c /d e] [reduce [a b c d e]]")
	wantMold(t, doStr(t, m, "f/b/d 1 2 3"), "[1 b 2 d 3]")
	// Unused refinements read as none; their unset args are not read here,
	// since reading an unset word is an error of its own.
	doStr(t, m, "g: func [a /b c /d e] [reduce [a b d]]")
	wantMold(t, doStr(t, m, "g 1"), "[1 none none]")
	wantMold(t, doStr(t, m, "g/d 1 2"), "[1 none d]")
}

func TestUnknownRefinement(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [a /b c] [a]")
	err := doStrErr(t, m, "f/zed 1 2")
	if err.ID != "bad-refine" {
		t.Fatalf("got error id %s, want bad-refine", err.ID)
	}
}

func TestRefinementRevocation(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [a /b c d] [reduce [a b]]")
	// The refinement's first arg evaluating to unset revokes it; the
	// remaining args must then be unset too.
	wantMold(t, doStr(t, m, "f/b 1 () ()"), "[1 none]")
	err := doStrErr(t, m, "f/b 1 () 2")
	if err.ID != "bad-refine-revoke" {
		t.Fatalf("got error id %s, want bad-refine-revoke", err.ID)
	}
	// A set value after the refinement already took one is fine...
	wantMold(t, doStr(t, m, "f/b 1 2 3"), "[1 b]")
	// ...but an unset one after a taken one is inconsistent.
	err = doStrErr(t, m, "f/b 1 2 ()")
	if err.ID != "bad-refine-revoke" {
		t.Fatalf("got error id %s, want bad-refine-revoke", err.ID)
	}
}

func TestQuotedParameters(t *testing.T) {
	m := newTestMachine(t)
	// Hard quote always takes the source literally.
	doStr(t, m, "hq: func [:v] [v]")
	wantMold(t, doStr(t, m, "hq (1 + 2)"), "(1 + 2)")
	wantMold(t, doStr(t, m, "hq foo"), "foo")
	// Soft quote honors the caller-side escapes.
	doStr(t, m, "sq: func ['v] [v]")
	wantMold(t, doStr(t, m, "sq foo"), "foo")
	wantMold(t, doStr(t, m, "sq (1 + 2)"), "3")
	doStr(t, m, "w: 9")
	wantMold(t, doStr(t, m, "sq :w"), "9")
}

func TestArgTypeChecking(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [n [integer!]] [n]")
	wantInt(t, doStr(t, m, "f 5"), 5)
	err := doStrErr(t, m, `f "nope"`)
	if err.ID != "expect-arg" {
		t.Fatalf("got error id %s, want expect-arg", err.ID)
	}
}

func TestMissingArg(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [n] [n]")
	err := doStrErr(t, m, "f")
	if err.ID != "no-arg" {
		t.Fatalf("got error id %s, want no-arg", err.ID)
	}
}

func TestPureLocals(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [a loc:] [loc: a + 1 loc]")
	wantInt(t, doStr(t, m, "f 4"), 5)
}

func TestLocalInjection(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [a loc:] [a]")
	err := doStrErr(t, m, "bad: specialize 'f [loc: 3] bad 1")
	if err.ID != "local-injection" {
		t.Fatalf("got error id %s, want local-injection", err.ID)
	}
}

func TestSpecializedRefinement(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [a /b c] [reduce [a b c]]")
	doStr(t, m, "fb: specialize 'f [b: true c: 9]")
	wantMold(t, doStr(t, m, "fb 1"), "[1 b 9]")
	doStr(t, m, "g: func [a /b c] [reduce [a b]]")
	doStr(t, m, "gn: specialize 'g [b: false]")
	wantMold(t, doStr(t, m, "gn 1"), "[1 none]")
}

func TestVariadicParameter(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "sum3: func [rest [...]] [add add take rest take rest take rest]")
	wantInt(t, doStr(t, m, "sum3 1 2 3"), 6)
	// Variadic args evaluate at take time, one expression each.
	wantInt(t, doStr(t, m, "sum3 1 + 1 2 3"), 7)
}

func TestArgumentOrderIsLeftToRight(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "order: [] f: func [a b c] [order]")
	got := doStr(t, m, "f (append order 1) (append order 2) (append order 3)")
	wantMold(t, got, "[1 2 3]")
}
