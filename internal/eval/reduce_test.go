package eval

import (
	"testing"

	"rebo/internal/value"
)

func TestReduceBasics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"arithmetic pairs", "reduce [1 + 2 3 + 4]", "[3 7]"},
		{"empty", "reduce []", "[]"},
		{"words resolve", "x: 5 reduce [x x + 1]", "[5 6]"},
		{"nested blocks literal", "reduce [[1 + 2]]", "[[1 + 2]]"},
		{"only skips listed words", "x: 5 reduce/only [x add x 1] [x]", "[x 6]"},
		{"no-set passes set-words", "x: 5 reduce/no-set [a: x]", "[a: 5]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			got := doStr(t, m, tt.src)
			wantMold(t, got, tt.want)
		})
	}
}

// Round-trip: reducing a composed quoted block with no groups gives the
// block back.
func TestReduceComposeRoundTrip(t *testing.T) {
	m := newTestMachine(t)
	got := doStr(t, m, "compose [a 1 [b] c]")
	wantMold(t, got, "[a 1 [b] c]")
	got = doStr(t, m, "reduce [compose [1 2 3]]")
	wantMold(t, got, "[[1 2 3]]")
}

func TestComposeBehaviors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"splices block results", "compose [(reduce [1 2]) x]", "[1 2 x]"},
		{"only keeps block results whole", "compose/only [(reduce [1 2]) x]", "[[1 2] x]"},
		{"unset results vanish", "compose [a () b]", "[a b]"},
		{"deep recurses", "compose/deep [a [(1 + 1)] b]", "[a [2] b]"},
		{"shallow leaves nested groups", "compose [a [(1 + 1)] b]", "[a [(1 + 1)] b]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			got := doStr(t, m, tt.src)
			wantMold(t, got, tt.want)
		})
	}
}

// COMPOSE/DEEP is idempotent on blocks whose groups evaluate to themselves.
func TestComposeDeepIdempotent(t *testing.T) {
	m := newTestMachine(t)
	// g holds the group (g) itself, so evaluating it is a fixed point.
	doStr(t, m, "g: first first [[(g)]] b: [x [(g)] y]")
	once := doStr(t, m, "compose/deep/only b")
	twice := doStr(t, m, "compose/deep/only compose/deep/only b")
	if !Equal(&once, &twice) {
		t.Fatalf("compose/deep not idempotent: %s vs %s", value.Mold(&once), value.Mold(&twice))
	}
}

func TestComposeInto(t *testing.T) {
	m := newTestMachine(t)
	got := doStr(t, m, "target: [0] compose/into [(1 + 1)] target")
	wantMold(t, got, "[0 2]")
}

func TestConstructRuns(t *testing.T) {
	m := newTestMachine(t)
	// A run of set-words all receive the terminating value.
	doStr(t, m, "h: construct [a: b: 3 c: 'word]")
	wantInt(t, doStr(t, m, "h/a"), 3)
	wantInt(t, doStr(t, m, "h/b"), 3)
	wantMold(t, doStr(t, m, "h/c"), "word")
	// Trailing set-words with no value get none.
	doStr(t, m, "h2: construct [a: 1 b:]")
	wantMold(t, doStr(t, m, "h2/b"), "none")
}

func TestReduceThrowDropsStack(t *testing.T) {
	m := newTestMachine(t)
	base := m.DS.Depth()
	got := doStr(t, m, "catch [reduce [1 2 throw 'gone 3]]")
	wantMold(t, got, "gone")
	if m.DS.Depth() != base {
		t.Fatalf("data stack depth %d after throw, want %d", m.DS.Depth(), base)
	}
}
