package value

// Kind is the type tag of a cell.
type Kind uint8

const (
	// KindEnd is the zero value so that an uninitialized cell reads as
	// invalid rather than as some datatype.
	KindEnd Kind = iota
	KindUnset
	KindNone
	KindLogic
	KindInteger
	KindDecimal
	KindString
	KindWord
	KindSetWord
	KindGetWord
	KindLitWord
	KindRefinement
	KindPath
	KindSetPath
	KindGetPath
	KindLitPath
	KindBlock
	KindGroup
	KindBar
	KindLitBar
	KindFunction
	KindFrame
	KindObject
	KindVarargs
	KindError
	KindTypeset
	KindMax
)

var kindNames = [...]string{
	KindEnd:        "end!",
	KindUnset:      "unset!",
	KindNone:       "none!",
	KindLogic:      "logic!",
	KindInteger:    "integer!",
	KindDecimal:    "decimal!",
	KindString:     "string!",
	KindWord:       "word!",
	KindSetWord:    "set-word!",
	KindGetWord:    "get-word!",
	KindLitWord:    "lit-word!",
	KindRefinement: "refinement!",
	KindPath:       "path!",
	KindSetPath:    "set-path!",
	KindGetPath:    "get-path!",
	KindLitPath:    "lit-path!",
	KindBlock:      "block!",
	KindGroup:      "group!",
	KindBar:        "bar!",
	KindLitBar:     "lit-bar!",
	KindFunction:   "function!",
	KindFrame:      "frame!",
	KindObject:     "object!",
	KindVarargs:    "varargs!",
	KindError:      "error!",
	KindTypeset:    "typeset!",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown!"
}

// IsWordKind reports whether k is one of the word flavors.
func (k Kind) IsWordKind() bool {
	return k >= KindWord && k <= KindRefinement
}

// IsPathKind reports whether k is one of the path flavors.
func (k Kind) IsPathKind() bool {
	return k >= KindPath && k <= KindLitPath
}

// IsArrayKind reports whether the cell payload is a cell array.
func (k Kind) IsArrayKind() bool {
	return k.IsPathKind() || k == KindBlock || k == KindGroup
}

// Flag is a per-cell flag bit.
type Flag uint16

const (
	// FlagThrown marks a cell carrying a throw name; the payload and the
	// optional exit target live in the machine's throw cache. A consumer
	// never observes a cell that is both thrown and an ordinary value.
	FlagThrown Flag = 1 << iota
	// FlagLine records that a line break preceded this cell in source.
	FlagLine
	// FlagProtected forbids mutation through word assignment.
	FlagProtected
)

// ExitTarget identifies the frame a definitional exit should be caught at.
// Exactly one of the three variants is set: a function identity (caught at
// that function's most recent invocation), a reified frame context (caught at
// that exact call), or a positive frame-depth count.
type ExitTarget struct {
	Fn    *Func
	Ctx   *Context
	Depth int
}

// Cell is the fixed-size tagged value. The payload fields are a manual
// union: which of them are meaningful depends on Kind.
//
//	integer!            Int
//	decimal!            Dec
//	logic!              Int (0 or 1)
//	string!             Str
//	any-word!           Sym, plus binding (Ctx+Index, or Rel+Index)
//	any-block/path!     Series, Index
//	function!           Fn, and Exit on definitional return/leave values
//	frame!/object!      Ctx
//	varargs!            Extra (an evaluator-owned handle)
//	error!              Sym (error id), Str (message)
//	typeset!            Int (kind bitmask)
type Cell struct {
	Kind  Kind
	Flags Flag

	Int    int64
	Dec    float64
	Str    string
	Sym    *Symbol
	Series *Array
	Index  int
	Ctx    *Context
	Rel    *Func
	Fn     *Func
	Exit   *ExitTarget
	Extra  any
}

// Constructors. Cells are values; these return by value so callers can write
// them straight into arrays and frames.

func Unset() Cell  { return Cell{Kind: KindUnset} }
func None() Cell   { return Cell{Kind: KindNone} }
func Bar() Cell    { return Cell{Kind: KindBar} }
func LitBar() Cell { return Cell{Kind: KindLitBar} }

func Logic(b bool) Cell {
	c := Cell{Kind: KindLogic}
	if b {
		c.Int = 1
	}
	return c
}

func Integer(n int64) Cell   { return Cell{Kind: KindInteger, Int: n} }
func Decimal(f float64) Cell { return Cell{Kind: KindDecimal, Dec: f} }
func String(s string) Cell   { return Cell{Kind: KindString, Str: s} }

func Word(sym *Symbol) Cell       { return Cell{Kind: KindWord, Sym: sym} }
func SetWord(sym *Symbol) Cell    { return Cell{Kind: KindSetWord, Sym: sym} }
func GetWord(sym *Symbol) Cell    { return Cell{Kind: KindGetWord, Sym: sym} }
func LitWord(sym *Symbol) Cell    { return Cell{Kind: KindLitWord, Sym: sym} }
func Refinement(sym *Symbol) Cell { return Cell{Kind: KindRefinement, Sym: sym} }

func Block(a *Array) Cell    { return Cell{Kind: KindBlock, Series: a} }
func Group(a *Array) Cell    { return Cell{Kind: KindGroup, Series: a} }
func Path(a *Array) Cell     { return Cell{Kind: KindPath, Series: a} }
func SetPath(a *Array) Cell  { return Cell{Kind: KindSetPath, Series: a} }
func GetPath(a *Array) Cell  { return Cell{Kind: KindGetPath, Series: a} }
func LitPath(a *Array) Cell  { return Cell{Kind: KindLitPath, Series: a} }
func Function(f *Func) Cell  { return Cell{Kind: KindFunction, Fn: f} }
func Object(c *Context) Cell { return Cell{Kind: KindObject, Ctx: c} }
func Frame(c *Context) Cell  { return Cell{Kind: KindFrame, Ctx: c} }
func ErrorVal(id *Symbol, msg string) Cell {
	return Cell{Kind: KindError, Sym: id, Str: msg}
}

// IsEnd reports whether the cell is the end sentinel (or a zero cell).
func (c *Cell) IsEnd() bool { return c == nil || c.Kind == KindEnd }

// IsUnset reports whether the cell holds no value.
func (c *Cell) IsUnset() bool { return c.Kind == KindUnset }

// IsThrown reports whether the cell is in the thrown state.
func (c *Cell) IsThrown() bool { return c.Flags&FlagThrown != 0 }

// IsConditionalTrue reports Rebol truthiness: everything except none and
// logic false. Unset is not a legal condition and is the caller's problem.
func (c *Cell) IsConditionalTrue() bool {
	switch c.Kind {
	case KindNone:
		return false
	case KindLogic:
		return c.Int != 0
	default:
		return true
	}
}

// ToWordKind returns a copy of the word cell converted to another word
// flavor, keeping spelling and binding.
func (c Cell) ToWordKind(k Kind) Cell {
	c.Kind = k
	c.Flags &^= FlagThrown
	return c
}

// ToPathKind returns a copy of the path cell converted to another path
// flavor, sharing the element array.
func (c Cell) ToPathKind(k Kind) Cell {
	c.Kind = k
	c.Flags &^= FlagThrown
	return c
}
