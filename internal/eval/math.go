package eval

import (
	"rebo/internal/errors"
	"rebo/internal/value"
)

// arithOp is one of the binary arithmetic kernels. Integer math stays
// integral except for a division with a remainder, which yields a decimal;
// any decimal operand promotes the result.
type arithOp int

const (
	opAdd arithOp = iota
	opSubtract
	opMultiply
	opDivide
)

func arith(f *Frame, op arithOp) bool {
	m := f.M
	a, b := f.Arg(0), f.Arg(1)
	if a.Kind == value.KindInteger && b.Kind == value.KindInteger {
		x, y := a.Int, b.Int
		switch op {
		case opAdd:
			*f.Out = value.Integer(x + y)
		case opSubtract:
			*f.Out = value.Integer(x - y)
		case opMultiply:
			*f.Out = value.Integer(x * y)
		case opDivide:
			if y == 0 {
				m.fail(errors.Newf(errors.Misc, "divide by zero"))
			}
			if x%y == 0 {
				*f.Out = value.Integer(x / y)
			} else {
				*f.Out = value.Decimal(float64(x) / float64(y))
			}
		}
		return false
	}
	x, y := numOf(a), numOf(b)
	switch op {
	case opAdd:
		*f.Out = value.Decimal(x + y)
	case opSubtract:
		*f.Out = value.Decimal(x - y)
	case opMultiply:
		*f.Out = value.Decimal(x * y)
	case opDivide:
		if y == 0 {
			m.fail(errors.Newf(errors.Misc, "divide by zero"))
		}
		*f.Out = value.Decimal(x / y)
	}
	return false
}

func nativeAdd(f *Frame) bool      { return arith(f, opAdd) }
func nativeSubtract(f *Frame) bool { return arith(f, opSubtract) }
func nativeMultiply(f *Frame) bool { return arith(f, opMultiply) }
func nativeDivide(f *Frame) bool   { return arith(f, opDivide) }

func nativeEqualQ(f *Frame) bool {
	*f.Out = value.Logic(Equal(f.Arg(0), f.Arg(1)))
	return false
}

func nativeNotEqualQ(f *Frame) bool {
	*f.Out = value.Logic(!Equal(f.Arg(0), f.Arg(1)))
	return false
}

// compare orders two cells; only numbers and strings have an order.
func compare(f *Frame) int {
	m := f.M
	a, b := f.Arg(0), f.Arg(1)
	switch {
	case isNumber(a) && isNumber(b):
		x, y := numOf(a), numOf(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case a.Kind == value.KindString && b.Kind == value.KindString:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		}
		return 0
	}
	m.fail(errors.Newf(errors.ExpectArg, "cannot compare %s with %s", a.Kind, b.Kind))
	return 0
}

func nativeLesserQ(f *Frame) bool {
	*f.Out = value.Logic(compare(f) < 0)
	return false
}

func nativeGreaterQ(f *Frame) bool {
	*f.Out = value.Logic(compare(f) > 0)
	return false
}

func nativeLesserEqualQ(f *Frame) bool {
	*f.Out = value.Logic(compare(f) <= 0)
	return false
}

func nativeGreaterEqualQ(f *Frame) bool {
	*f.Out = value.Logic(compare(f) >= 0)
	return false
}
