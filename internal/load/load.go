// internal/load/load.go
package load

import (
	"fmt"
	"strconv"
	"strings"

	"rebo/internal/value"
)

// Scanner turns source text into pre-built value arrays. It is a collaborator
// of the evaluator: the eval package calls it only to turn native spec strings
// and source strings (LoadString, DO of a string) into arrays.
type Scanner struct {
	src  string
	pos  int
	line int
}

// LoadString scans a whole string into a fresh array.
func LoadString(src string) (*value.Array, error) {
	s := &Scanner{src: src, line: 1}
	arr, err := s.scanInto(0)
	if err != nil {
		return nil, err
	}
	if s.pos < len(s.src) {
		return nil, s.errf("unexpected %q", s.src[s.pos])
	}
	return arr, nil
}

func (s *Scanner) errf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", s.line, fmt.Sprintf(format, args...))
}

// scanInto reads values until the closing delimiter (0 for top level).
func (s *Scanner) scanInto(closer byte) (*value.Array, error) {
	arr := value.NewArray(8)
	for {
		s.skipBlank()
		if s.pos >= len(s.src) {
			if closer != 0 {
				return nil, s.errf("missing %q", closer)
			}
			return arr, nil
		}
		ch := s.src[s.pos]
		if ch == closer {
			s.pos++
			return arr, nil
		}
		switch ch {
		case ']', ')':
			return nil, s.errf("unexpected %q", ch)
		case '[':
			s.pos++
			inner, err := s.scanInto(']')
			if err != nil {
				return nil, err
			}
			arr.Append(value.Block(inner))
		case '(':
			s.pos++
			inner, err := s.scanInto(')')
			if err != nil {
				return nil, err
			}
			arr.Append(value.Group(inner))
		case '"':
			str, err := s.scanString()
			if err != nil {
				return nil, err
			}
			arr.Append(value.String(str))
		default:
			cell, err := s.scanItem()
			if err != nil {
				return nil, err
			}
			arr.Append(cell)
		}
	}
}

func (s *Scanner) skipBlank() {
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch {
		case ch == '\n':
			s.line++
			s.pos++
		case ch == ' ' || ch == '\t' || ch == '\r':
			s.pos++
		case ch == ';':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		default:
			return
		}
	}
}

// scanString reads a quoted string with caret escapes.
func (s *Scanner) scanString() (string, error) {
	s.pos++ // opening quote
	var sb strings.Builder
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		switch ch {
		case '"':
			s.pos++
			return sb.String(), nil
		case '^':
			if s.pos+1 >= len(s.src) {
				return "", s.errf("dangling escape in string")
			}
			s.pos++
			switch s.src[s.pos] {
			case '/':
				sb.WriteByte('\n')
			case '-':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '^':
				sb.WriteByte('^')
			default:
				return "", s.errf("unknown escape ^%c", s.src[s.pos])
			}
			s.pos++
		case '\n':
			return "", s.errf("unterminated string")
		default:
			sb.WriteByte(ch)
			s.pos++
		}
	}
	return "", s.errf("unterminated string")
}

func isDelim(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '[', ']', '(', ')', '"', ';':
		return true
	}
	return false
}

func isWordChar(ch byte) bool {
	if isDelim(ch) || ch == '/' || ch == ':' {
		return false
	}
	return ch > ' '
}

// scanItem reads one non-delimited token: a number, bar, word flavor, or a
// path built from /-separated segments.
func (s *Scanner) scanItem() (value.Cell, error) {
	lit := false
	get := false
	ch := s.src[s.pos]
	switch ch {
	case '\'':
		lit = true
		s.pos++
	case ':':
		get = true
		s.pos++
	}
	if s.pos >= len(s.src) {
		return value.Cell{}, s.errf("dangling %q", ch)
	}
	ch = s.src[s.pos]

	// Bars.
	if ch == '|' && (s.pos+1 >= len(s.src) || isDelim(s.src[s.pos+1])) {
		s.pos++
		if lit {
			return value.LitBar(), nil
		}
		if get {
			return value.Cell{}, s.errf("cannot get a bar")
		}
		return value.Bar(), nil
	}

	// Refinements: a leading slash (but a lone slash is the word "/").
	if ch == '/' && !lit && !get {
		if s.pos+1 >= len(s.src) || isDelim(s.src[s.pos+1]) {
			s.pos++
			return value.Word(value.Intern("/")), nil
		}
		s.pos++
		name := s.scanWordText()
		if name == "" {
			return value.Cell{}, s.errf("empty refinement")
		}
		return value.Refinement(value.Intern(name)), nil
	}

	// Numbers.
	if isDigit(ch) || ((ch == '+' || ch == '-') && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1])) {
		if lit || get {
			return value.Cell{}, s.errf("cannot quote a number")
		}
		return s.scanNumber()
	}

	// Words and paths.
	first, err := s.scanSegment()
	if err != nil {
		return value.Cell{}, err
	}
	if s.pos < len(s.src) && s.src[s.pos] == '/' {
		return s.scanPath(first, lit, get)
	}

	// Trailing colon: set-word.
	if s.pos < len(s.src) && s.src[s.pos] == ':' {
		if lit || get {
			return value.Cell{}, s.errf("conflicting word decorations")
		}
		s.pos++
		if first.Kind != value.KindWord {
			return value.Cell{}, s.errf("only words can be set-words")
		}
		return value.SetWord(first.Sym), nil
	}
	if first.Kind != value.KindWord {
		return value.Cell{}, s.errf("unexpected path segment")
	}
	switch {
	case lit:
		return value.LitWord(first.Sym), nil
	case get:
		return value.GetWord(first.Sym), nil
	}
	return first, nil
}

// scanPath continues after the first segment, collecting /-separated
// segments: words, integers, or groups.
func (s *Scanner) scanPath(first value.Cell, lit, get bool) (value.Cell, error) {
	elems := value.NewArray(4)
	elems.Append(first)
	for s.pos < len(s.src) && s.src[s.pos] == '/' {
		s.pos++
		seg, err := s.scanSegment()
		if err != nil {
			return value.Cell{}, err
		}
		elems.Append(seg)
	}
	if s.pos < len(s.src) && s.src[s.pos] == ':' {
		if lit || get {
			return value.Cell{}, s.errf("conflicting path decorations")
		}
		s.pos++
		return value.SetPath(elems), nil
	}
	switch {
	case lit:
		return value.LitPath(elems), nil
	case get:
		return value.GetPath(elems), nil
	}
	return value.Path(elems), nil
}

// scanSegment reads one path segment: a group, an integer, or a word
// (possibly get-decorated for get-word selectors).
func (s *Scanner) scanSegment() (value.Cell, error) {
	if s.pos >= len(s.src) {
		return value.Cell{}, s.errf("unexpected end of input")
	}
	ch := s.src[s.pos]
	if ch == '(' {
		s.pos++
		inner, err := s.scanInto(')')
		if err != nil {
			return value.Cell{}, err
		}
		return value.Group(inner), nil
	}
	if ch == ':' {
		s.pos++
		name := s.scanWordText()
		if name == "" {
			return value.Cell{}, s.errf("empty get-word")
		}
		return value.GetWord(value.Intern(name)), nil
	}
	if isDigit(ch) {
		return s.scanNumber()
	}
	name := s.scanWordText()
	if name == "" {
		return value.Cell{}, s.errf("unexpected %q", ch)
	}
	return value.Word(value.Intern(name)), nil
}

func (s *Scanner) scanWordText() string {
	start := s.pos
	for s.pos < len(s.src) && isWordChar(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (s *Scanner) scanNumber() (value.Cell, error) {
	start := s.pos
	if s.src[s.pos] == '+' || s.src[s.pos] == '-' {
		s.pos++
	}
	dec := false
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if isDigit(ch) {
			s.pos++
			continue
		}
		if ch == '.' && !dec && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]) {
			dec = true
			s.pos++
			continue
		}
		break
	}
	text := s.src[start:s.pos]
	if s.pos < len(s.src) && !isDelim(s.src[s.pos]) && s.src[s.pos] != '/' && s.src[s.pos] != ':' {
		return value.Cell{}, s.errf("invalid number %q", text+string(s.src[s.pos]))
	}
	if dec {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return value.Cell{}, s.errf("invalid decimal %q", text)
		}
		return value.Decimal(f), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return value.Cell{}, s.errf("invalid integer %q", text)
	}
	return value.Integer(n), nil
}
