package eval

import (
	"testing"
)

func TestPathSelection(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"object field", "o: make object! [a: 3] o/a", "3"},
		{"nested object", "o: make object! [inner: make object! [x: 5]] o/inner/x", "5"},
		{"block by index", "b: [10 20 30] b/2", "20"},
		{"block select by word", "b: [a 1 b 2] b/b", "2"},
		{"block out of range is none", "b: [1] b/9", "none"},
		{"string pick", `s: "abc" s/2`, `"b"`},
		{"group selector", "b: [10 20 30] b/(1 + 2)", "30"},
		{"get-word selector", "i: 2 b: [10 20 30] b/:i", "20"},
		{"get-path", "o: make object! [a: 3] :o/a", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			got := doStr(t, m, tt.src)
			wantMold(t, got, tt.want)
		})
	}
}

func TestSetPath(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "b: [10 20 30] b/2: 99")
	wantMold(t, doStr(t, m, "b"), "[10 99 30]")
	doStr(t, m, "o: make object! [a: 1] o/a: 7")
	wantInt(t, doStr(t, m, "o/a"), 7)
}

// The right-hand side of a set-path runs before the path's own groups.
func TestSetPathEvaluationOrder(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "order: [] b: [10 20 30]")
	doStr(t, m, "b/(append order 'path 1): (append order 'rhs 99)")
	wantMold(t, doStr(t, m, "order"), "[rhs path]")
	wantMold(t, doStr(t, m, "b"), "[99 20 30]")
}

func TestPathErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		id   string
	}{
		{"bad select", "o: make object! [a: 1] o/missing", "bad-path"},
		{"non-dispatchable head", "n: 5 n/2", "bad-path-type"},
		{"set out of range", "b: [1] b/9: 2", "bad-path-range"},
		{"set into string", `s: "abc" s/1: "z"`, "bad-path-type"},
		{"set missing field", "o: make object! [a: 1] o/missing: 2", "bad-path-set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			err := doStrErr(t, m, tt.src)
			if string(err.ID) != tt.id {
				t.Fatalf("got error id %s, want %s", err.ID, tt.id)
			}
		})
	}
}

func TestPathGroupThrowPropagates(t *testing.T) {
	m := newTestMachine(t)
	base := m.DS.Depth()
	// A throw out of a path group must drop this path's stack pushes.
	got := doStr(t, m, "catch [f: func [a /b] [a] f/(throw 'gone) 1]")
	wantMold(t, got, "gone")
	if m.DS.Depth() != base {
		t.Fatalf("data stack depth %d, want %d", m.DS.Depth(), base)
	}
}

func TestRefinementsThroughGetWordAndGroup(t *testing.T) {
	m := newTestMachine(t)
	doStr(t, m, "f: func [a /b c] [reduce [a b c]]")
	wantMold(t, doStr(t, m, "which: 'b f/:which 1 2"), "[1 b 2]")
	wantMold(t, doStr(t, m, "f/('b) 1 2"), "[1 b 2]")
}
