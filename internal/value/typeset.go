package value

// Typeset is a bitmask over Kind, used for parameter type checking and
// context keys. The zero typeset accepts nothing.
type Typeset uint32

// TypesetAll accepts every real datatype (not end).
const TypesetAll = Typeset(1<<KindMax-1) &^ (1 << KindEnd)

// TypesetAny accepts every value that can be passed as an argument: all
// datatypes except end and unset.
const TypesetAny = TypesetAll &^ (1 << KindUnset)

// MakeTypeset builds a typeset accepting the listed kinds.
func MakeTypeset(kinds ...Kind) Typeset {
	var t Typeset
	for _, k := range kinds {
		t |= 1 << k
	}
	return t
}

// Has reports whether kind k is accepted.
func (t Typeset) Has(k Kind) bool { return t&(1<<k) != 0 }

// With returns t extended to accept k.
func (t Typeset) With(k Kind) Typeset { return t | 1<<k }

// ParamClass describes how one function parameter is fulfilled.
type ParamClass uint8

const (
	// ParamNormal takes one evaluated expression from the callsite.
	ParamNormal ParamClass = iota
	// ParamSoftQuote takes the literal source cell, except that GROUP!,
	// GET-WORD! and GET-PATH! are evaluated as a caller-side escape.
	ParamSoftQuote
	// ParamHardQuote always takes the literal source cell.
	ParamHardQuote
	// ParamRefinement is a /name switch; its own slot holds the refinement
	// word when supplied, none when absent or revoked.
	ParamRefinement
	// ParamLocal is a pure local, always unset on entry.
	ParamLocal
	// ParamVariadic consumes nothing up front; the slot receives a varargs
	// handle the body pulls from.
	ParamVariadic
)

func (pc ParamClass) String() string {
	switch pc {
	case ParamNormal:
		return "normal"
	case ParamSoftQuote:
		return "soft-quote"
	case ParamHardQuote:
		return "hard-quote"
	case ParamRefinement:
		return "refinement"
	case ParamLocal:
		return "local"
	case ParamVariadic:
		return "variadic"
	}
	return "unknown"
}

// Param is one entry of a function's parameter list.
type Param struct {
	Sym   *Symbol
	Class ParamClass
	Types Typeset
}
