package eval

import (
	"io"
	"testing"

	"rebo/internal/errors"
	"rebo/internal/value"
)

// newTestMachine returns a machine with the library installed and output
// discarded.
func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m := NewMachine()
	m.Output = io.Discard
	m.InstallLib()
	return m
}

// doStr loads and runs source, failing the test on error or throw.
func doStr(t *testing.T, m *Machine, src string) value.Cell {
	t.Helper()
	var out value.Cell
	err := m.TrapEval(func() {
		if m.DoString(&out, src) {
			t.Fatalf("unexpected throw from %q: %s", src, value.Mold(&out))
		}
	})
	if err != nil {
		t.Fatalf("unexpected error from %q: %v", src, err)
	}
	return out
}

// doStrErr runs source expecting an error, returning it.
func doStrErr(t *testing.T, m *Machine, src string) *errors.Error {
	t.Helper()
	var out value.Cell
	err := m.TrapEval(func() {
		if m.DoString(&out, src) {
			t.Fatalf("got throw, wanted error from %q", src)
		}
	})
	if err == nil {
		t.Fatalf("expected an error from %q, got %s", src, value.Mold(&out))
	}
	return err
}

// wantInt asserts an integer result.
func wantInt(t *testing.T, got value.Cell, want int64) {
	t.Helper()
	if got.Kind != value.KindInteger || got.Int != want {
		t.Fatalf("got %s, want %d", value.Mold(&got), want)
	}
}

// wantMold asserts the molded form of a result.
func wantMold(t *testing.T, got value.Cell, want string) {
	t.Helper()
	if m := value.Mold(&got); m != want {
		t.Fatalf("got %s, want %s", m, want)
	}
}
