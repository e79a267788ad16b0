package eval

import (
	"testing"

	"rebo/internal/value"
)

func TestReturnCatchesAtOwnInvocation(t *testing.T) {
	m := newTestMachine(t)
	// Each invocation's return is definitional: the inner function's
	// return does not unwind the outer one.
	doStr(t, m, "inner: func [] [return 1 99]")
	doStr(t, m, "outer: func [] [inner return 2 99]")
	wantInt(t, doStr(t, m, "outer"), 2)
}

func TestLeaveForcesUnset(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "p: proc [] [leave 99]")
	got := doStr(t, m, "p 5")
	// p returns unset, so the trailing 5 is the block's final value.
	wantInt(t, got, 5)
	doStr(t, m, "side: 0 q: proc [] [side: 1 leave side: 2]")
	doStr(t, m, "q")
	wantInt(t, doStr(t, m, "side"), 1)
}

func TestReturnByFunctionIdentityMostRecent(t *testing.T) {
	m := newTestMachine(t)
	// A recursive function's return exits only the innermost call.
	doStr(t, m, "r: func [n] [if n = 0 [return 100] r n - 1 n]")
	wantInt(t, doStr(t, m, "r 3"), 3)
}

func TestExitFromDepth(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "g: func [] [exit-from/with 1 7 99]")
	doStr(t, m, "f: func [] [g 99]")
	// Depth 1 exits the function enclosing the exit-from call.
	wantInt(t, doStr(t, m, "f"), 99)
	doStr(t, m, "g2: func [] [exit-from/with 2 7 99]")
	doStr(t, m, "f2: func [] [g2 99]")
	// Depth 2 unwinds one level further.
	wantInt(t, doStr(t, m, "f2"), 7)
}

func TestExitFromFunctionIdentity(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [] [g 99]")
	doStr(t, m, "g: func [] [exit-from/with :f 7 99]")
	wantInt(t, doStr(t, m, "f"), 7)
}

func TestExitFromFrameIdentity(t *testing.T) {
	m := newTestMachine(t)
	// Closure invocations are durable, so each has a context identity.
	// Test natives throw toward the innermost and outermost durable frame;
	// the throw must be caught exactly there, not above or below.
	durable := func(f *Frame) []*value.Context {
		var ctxs []*value.Context
		for fr := f.Prior; fr != nil; fr = fr.Prior {
			if fr.Varlist != nil && fr.Mode == ModeFunction {
				ctxs = append(ctxs, fr.Varlist)
			}
		}
		return ctxs
	}
	m.registerNative("exit-inner", "[]", 0, func(f *Frame) bool {
		ctxs := durable(f)
		f.M.Throw(f.Out, value.Word(symExit), value.Integer(7), &value.ExitTarget{Ctx: ctxs[0]})
		return true
	})
	m.registerNative("exit-outer", "[]", 0, func(f *Frame) bool {
		ctxs := durable(f)
		f.M.Throw(f.Out, value.Word(symExit), value.Integer(7), &value.ExitTarget{Ctx: ctxs[len(ctxs)-1]})
		return true
	})
	doStr(t, m, "ci: closure [n] [either n = 0 [ci 1 99] [exit-inner 99]]")
	// Caught at the inner invocation: the outer one continues to 99.
	wantInt(t, doStr(t, m, "ci 0"), 99)
	doStr(t, m, "co: closure [n] [either n = 0 [co 1 99] [exit-outer 99]]")
	// Caught at the outer invocation: its result is the payload.
	wantInt(t, doStr(t, m, "co 0"), 7)
}

func TestCatchAndThrow(t *testing.T) {
	m := newTestMachine(t)
	wantInt(t, doStr(t, m, "catch [throw 5 99]"), 5)
	wantInt(t, doStr(t, m, "catch/name [throw/name 6 'tag 99] 'tag"), 6)
	// A named throw passes through a plain catch.
	doStr(t, m, "res: catch/name [catch [throw/name 8 'outer] 99] 'outer")
	wantInt(t, doStr(t, m, "res"), 8)
}

func TestBreakPassesThroughFunctions(t *testing.T) {
	m := newTestMachine(t)
	// break is not definitional: it passes through an intervening function
	// call and stops the loop.
	doStr(t, m, "f: func [] [break]")
	wantInt(t, doStr(t, m, "n: 0 loop 10 [n: n + 1 f] n"), 1)
}

func TestBreakWithValue(t *testing.T) {
	m := newTestMachine(t)
	wantInt(t, doStr(t, m, "loop 10 [break/return 42]"), 42)
}

func TestContinueSkips(t *testing.T) {
	m := newTestMachine(t)
	wantInt(t, doStr(t, m, "n: 0 hits: 0 loop 5 [n: n + 1 if n < 3 [continue] hits: hits + 1] hits"), 3)
}

func TestUncaughtThrowSurfacesAtTopLevel(t *testing.T) {
	m := newTestMachine(t)
	var out value.Cell
	err := m.TrapEval(func() {
		if !m.DoString(&out, "throw 3") {
			t.Fatal("expected the throw to surface")
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsThrown() {
		t.Fatal("out cell should carry the thrown marker")
	}
	payload := m.ThrownPayload()
	wantInt(t, payload, 3)
}
