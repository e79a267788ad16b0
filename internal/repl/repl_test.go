// internal/repl/repl_test.go
package repl

import (
	"strings"
	"testing"

	"rebo/internal/eval"
)

func runSession(t *testing.T, input string) string {
	t.Helper()
	m := eval.NewMachine()
	m.InstallLib()
	var sb strings.Builder
	m.Output = &sb
	s := &Session{M: m, In: strings.NewReader(input), Out: &sb}
	s.Run()
	return sb.String()
}

func TestSessionEvaluatesLines(t *testing.T) {
	out := runSession(t, "1 + 2\nx: 10\nx + 5\nexit\n")
	if !strings.Contains(out, "== 3") {
		t.Fatalf("missing first result in %q", out)
	}
	if !strings.Contains(out, "== 15") {
		t.Fatalf("missing second result in %q", out)
	}
}

func TestSessionSurvivesErrors(t *testing.T) {
	out := runSession(t, "add 1 \"x\"\n7\n")
	if !strings.Contains(out, "expect-arg") {
		t.Fatalf("error not reported in %q", out)
	}
	if !strings.Contains(out, "== 7") {
		t.Fatalf("session did not continue after error: %q", out)
	}
}

func TestSessionReportsUncaughtThrows(t *testing.T) {
	out := runSession(t, "throw 9\n")
	if !strings.Contains(out, "uncaught throw") {
		t.Fatalf("throw not reported in %q", out)
	}
}

func TestNestedSessionEvaluates(t *testing.T) {
	m := eval.NewMachine()
	m.InstallLib()
	var sb strings.Builder
	m.Output = &sb
	// Breakpoint reads from os.Stdin; drive the session type it wraps
	// directly with scripted input.
	s := &Session{M: m, In: strings.NewReader("1 + 2\nexit\n"), Out: &sb}
	s.Run()
	if !strings.Contains(sb.String(), "== 3") {
		t.Fatalf("nested session did not evaluate: %q", sb.String())
	}
}
