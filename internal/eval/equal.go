package eval

import (
	"rebo/internal/value"
)

// Equal is loose equivalence: numbers compare across integer/decimal, words
// compare case-insensitively, arrays compare element-wise.
func Equal(a, b *value.Cell) bool {
	if a.Kind != b.Kind {
		// Cross-type numeric comparison is the one sanctioned coercion.
		if isNumber(a) && isNumber(b) {
			return numOf(a) == numOf(b)
		}
		return false
	}
	switch a.Kind {
	case value.KindUnset, value.KindNone, value.KindBar, value.KindLitBar:
		return true
	case value.KindLogic, value.KindInteger:
		return a.Int == b.Int
	case value.KindDecimal:
		return a.Dec == b.Dec
	case value.KindString:
		return a.Str == b.Str
	case value.KindWord, value.KindSetWord, value.KindGetWord, value.KindLitWord, value.KindRefinement:
		return value.SameWord(a.Sym, b.Sym)
	case value.KindBlock, value.KindGroup, value.KindPath, value.KindSetPath, value.KindGetPath, value.KindLitPath:
		na := a.Series.Len() - a.Index
		nb := b.Series.Len() - b.Index
		if na != nb {
			return false
		}
		for i := 0; i < na; i++ {
			if !Equal(a.Series.At(a.Index+i), b.Series.At(b.Index+i)) {
				return false
			}
		}
		return true
	case value.KindFunction:
		return a.Fn == b.Fn
	case value.KindObject, value.KindFrame:
		return a.Ctx == b.Ctx
	}
	return false
}

func isNumber(c *value.Cell) bool {
	return c.Kind == value.KindInteger || c.Kind == value.KindDecimal
}

func numOf(c *value.Cell) float64 {
	if c.Kind == value.KindInteger {
		return float64(c.Int)
	}
	return c.Dec
}
