// internal/errors/errors_test.go
package errors

import (
	"strings"
	"testing"
)

func TestTrapCatchesFail(t *testing.T) {
	err := Trap(func() {
		Fail(Newf(NoArg, "missing %s", "thing"))
	})
	if err == nil || err.ID != NoArg {
		t.Fatalf("got %v, want no-arg", err)
	}
	if err.Message != "missing thing" {
		t.Fatalf("got message %q", err.Message)
	}
}

func TestTrapPassesCleanRuns(t *testing.T) {
	if err := Trap(func() {}); err != nil {
		t.Fatalf("got %v, want nil", err)
	}
}

func TestTrapReraisesForeignPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("foreign panic must pass through")
		}
	}()
	Trap(func() { panic("not ours") })
}

func TestErrorRendering(t *testing.T) {
	e := Newf(ExpectArg, "wrong type")
	e.Near = "[add 1 x]"
	e.Where = []string{"add"}
	text := e.Error()
	for _, want := range []string{"expect-arg", "wrong type", "near: [add 1 x]", "where: add"} {
		if !strings.Contains(text, want) {
			t.Fatalf("rendering %q lacks %q", text, want)
		}
	}
}

func TestHaltPredicate(t *testing.T) {
	if !Newf(Halt, "halted").IsHalt() {
		t.Fatal("halt error must report IsHalt")
	}
	if Newf(Misc, "x").IsHalt() {
		t.Fatal("misc error must not report IsHalt")
	}
}
