package value

import (
	"strings"
	"sync"
)

// Symbol is an interned word spelling. Two cells name the same word exactly
// when their symbols' canons are pointer-equal; canonization is
// case-insensitive.
type Symbol struct {
	Text  string
	canon *Symbol
}

// Canon returns the case-insensitive canonical symbol for s.
func (s *Symbol) Canon() *Symbol {
	return s.canon
}

func (s *Symbol) String() string {
	if s == nil {
		return ""
	}
	return s.Text
}

var symbols = struct {
	sync.Mutex
	table map[string]*Symbol
}{table: make(map[string]*Symbol)}

// Intern returns the unique Symbol for the given spelling, creating it on
// first use. Interning is shared between machines, so it takes a lock even
// though each evaluator is single-threaded.
func Intern(text string) *Symbol {
	symbols.Lock()
	defer symbols.Unlock()
	return intern(text)
}

func intern(text string) *Symbol {
	if s, ok := symbols.table[text]; ok {
		return s
	}
	s := &Symbol{Text: text}
	symbols.table[text] = s
	lower := strings.ToLower(text)
	if lower == text {
		s.canon = s
	} else if c, ok := symbols.table[lower]; ok {
		s.canon = c
	} else {
		c := &Symbol{Text: lower}
		c.canon = c
		symbols.table[lower] = c
		s.canon = c
	}
	return s
}

// SameWord reports whether two symbols spell the same word ignoring case.
func SameWord(a, b *Symbol) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.canon == b.canon
}
