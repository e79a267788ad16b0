package eval

import (
	"testing"

	"rebo/internal/value"
)

// The concrete end-to-end scenarios.
func TestEvalScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"left to right, no precedence", "1 + 2 * 3", "9"},
		{"set-word then infix use", "x: 10 x + 5", "15"},
		{"refinement changes semantics", "append/only [a b] [c d]", "[a b [c d]]"},
		{"plain append splices", "append [a b] [c d]", "[a b c d]"},
		{"reduce", "reduce [1 + 2 3 + 4]", "[3 7]"},
		{"compose", "compose [(1 + 2) x (3 + 4)]", "[3 x 7]"},
		{"compose only scalars", "compose/only [(1 + 2) x (3 + 4)]", "[3 x 7]"},
		{"self-evaluating block", "[1 2 3]", "[1 2 3]"},
		{"group evaluation", "(1 + 2)", "3"},
		{"nested groups", "((1 + 2)) * (2 + 1)", "9"},
		{"get-word", "y: 7 :y", "7"},
		{"lit-word", "'foo", "foo"},
		{"lit-path", "'a/b", "a/b"},
		{"lit-bar", "'|", "|"},
		{"division result", "7 / 2", "3.5"},
		{"prefix add with infix arg", "add 1 2 * 3", "7"},
		{"either true branch", "either 1 < 2 [10] [20]", "10"},
		{"while loop", "n: 0 while [n < 5] [n: n + 1] n", "5"},
		{"loop with break", "n: 0 loop 10 [n: n + 1 if n = 3 [break]] n", "3"},
		{"do of a block", "do [1 + 2]", "3"},
		{"do of a string", `do "3 + 4"`, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			got := doStr(t, m, tt.src)
			wantMold(t, got, tt.want)
		})
	}
}

func TestSetWordSideEffect(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "x: 10")
	got := doStr(t, m, "x")
	wantInt(t, got, 10)
}

func TestFunctionReturnStopsBody(t *testing.T) {
	// do [return 1] 2 inside a function body: the function returns 1 and
	// the literal 2 never evaluates.
	m := newTestMachine(t)
	got := doStr(t, m, "hits: 0 f: func [] [do [return 1] hits: hits + 1 2] f")
	wantInt(t, got, 1)
	wantInt(t, doStr(t, m, "hits"), 0)
}

func TestWordErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unset word", "utterly-undefined-value"},
		{"set-word needs value", "x:"},
		{"set-word refuses unset", "x: ()"},
		{"infix without left operand", "* 3 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			doStrErr(t, m, tt.src)
		})
	}
}

func TestBarSemantics(t *testing.T) {
	m := newTestMachine(t)
	// A bar evaluates to unset, so an expression after it still runs.
	got := doStr(t, m, "1 + 2 | 5")
	wantInt(t, got, 5)
	// A bar where an argument is required is an expression barrier.
	err := doStrErr(t, m, "add 1 |")
	if err.ID != "expression-barrier" {
		t.Fatalf("got error id %s, want expression-barrier", err.ID)
	}
}

func TestInfixChaining(t *testing.T) {
	m := newTestMachine(t)
	wantInt(t, doStr(t, m, "1 + 2 * 3 + 4"), 13)
	got := doStr(t, m, "1 + 2 = 3")
	if got.Kind != value.KindLogic || got.Int != 1 {
		t.Fatalf("got %s, want true", value.Mold(&got))
	}
}

func TestUserInfixOperator(t *testing.T) {
	m := newTestMachine(t)
	got := doStr(t, m, "plus2: op [a b] [a + b + 2] 1 plus2 2")
	wantInt(t, got, 5)
}

func TestEvalRetrigger(t *testing.T) {
	m := newTestMachine(t)
	// EVAL splices its argument back in as the current value.
	wantInt(t, doStr(t, m, "eval quote 5"), 5)
	// Retriggering a word dispatches whatever it looks up to.
	wantInt(t, doStr(t, m, "b: [1 + 2] eval first [do] b"), 3)
}

func TestEvalOnly(t *testing.T) {
	m := newTestMachine(t)
	// /only suppresses argument evaluation for the retriggered value: add
	// receives the literal words, which fails the typecheck.
	doStr(t, m, "one: 1 two: 2")
	wantInt(t, doStr(t, m, "eval first [add] one two"), 3)
	err := doStrErr(t, m, "eval/only first [add] one two")
	if err.ID != "expect-arg" {
		t.Fatalf("got error id %s, want expect-arg", err.ID)
	}
}

func TestVarlessQuote(t *testing.T) {
	m := newTestMachine(t)
	wantMold(t, doStr(t, m, "quote foo"), "foo")
	wantMold(t, doStr(t, m, "quote (1 + 2)"), "(1 + 2)")
	wantInt(t, doStr(t, m, "comment [ignored] 9"), 9)
}

func TestObjectPaths(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "obj: make object! [a: 1 b: 2]")
	wantInt(t, doStr(t, m, "obj/a + obj/b"), 3)
	wantInt(t, doStr(t, m, "obj/a: 10 obj/a"), 10)
}

func TestFrameLiteralExecution(t *testing.T) {
	m := newTestMachine(t)
	// A FRAME! in source runs its function; BAR! slots acquire from the
	// callsite.
	wantInt(t, doStr(t, m, "fr: make frame! :add do fr 3 4"), 7)
}

func TestSpecialize(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "add5: specialize 'add [value1: 5]")
	wantInt(t, doStr(t, m, "add5 10"), 15)
	// Specializing a specialization flattens.
	doStr(t, m, "always12: specialize 'add5 [value2: 7]")
	wantInt(t, doStr(t, m, "always12"), 12)
}

func TestClosureCapture(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "mk: closure [n] [does-not-matter: 0 func [] [n]]")
	// A plain function's body looks n up relatively, which needs a live
	// frame; a closure's body keeps its own durable copy.
	doStr(t, m, "mk2: closure [n] [closure [] [n]]")
	doStr(t, m, "c: mk2 42")
	wantInt(t, doStr(t, m, "c"), 42)
}

func TestConstructHeaders(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "h: construct [title: \"demo\" checked: 'sha1 options: none legal: true]")
	wantMold(t, doStr(t, m, "h/title"), `"demo"`)
	wantMold(t, doStr(t, m, "h/checked"), "sha1")
	wantMold(t, doStr(t, m, "h/options"), "none")
	wantMold(t, doStr(t, m, "h/legal"), "true")
	// Construct never runs functions.
	doStr(t, m, "h2: construct [boom: print]")
	wantMold(t, doStr(t, m, "h2/boom"), "print")
}
