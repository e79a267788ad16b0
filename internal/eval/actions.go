package eval

import (
	"strings"

	"rebo/internal/errors"
	"rebo/internal/value"
)

// actionID selects a generic operation dispatched on the first argument's
// datatype.
type actionID int

const (
	actAppend actionID = iota
	actPick
)

// actionTable maps an action and a datatype to its per-type behavior.
var actionTable = map[actionID]map[value.Kind]NativeFn{
	actAppend: {
		value.KindBlock:  appendBlock,
		value.KindString: appendString,
	},
	actPick: {
		value.KindBlock:  pickBlock,
		value.KindString: pickString,
	},
}

// registerAction is registerNative for type-dispatched generics.
func (m *Machine) registerAction(name, spec string, id actionID) *value.Func {
	fn := m.registerNative(name, spec, 0, nil)
	fn.Class = value.ClassAction
	fn.Impl = id
	return fn
}

// dispatchAction routes a gathered action frame by its first argument.
func (m *Machine) dispatchAction(f *Frame) bool {
	id := f.Fn.Impl.(actionID)
	kinds, ok := actionTable[id]
	if !ok {
		m.fail(errors.Newf(errors.BadSysFunc, "%s: unknown action", f.label()))
	}
	impl, ok := kinds[f.Arg(0).Kind]
	if !ok {
		m.fail(errors.Newf(errors.ExpectArg,
			"%s: action not defined for %s", f.label(), f.Arg(0).Kind))
	}
	return impl(f)
}

// append series value /only /dup count
func appendBlock(f *Frame) bool {
	m := f.M
	series := f.Arg(0)
	val := f.Arg(1)
	only := f.Arg(2).Kind == value.KindWord
	times := 1
	if f.Arg(3).Kind == value.KindWord { // /dup
		times = int(f.Arg(4).Int)
	}
	a := series.Series
	if a.Flags&value.ArrayLocked != 0 || a.Flags&value.ArrayFixedSize != 0 {
		m.fail(errors.Newf(errors.BadFieldSet, "append: series is locked"))
	}
	for n := 0; n < times; n++ {
		if val.Kind == value.KindBlock && !only {
			for i := val.Index; i < val.Series.Len(); i++ {
				a.Append(val.Series.Cells[i])
			}
		} else {
			a.Append(*val)
		}
	}
	*f.Out = *series
	return false
}

func appendString(f *Frame) bool {
	series := f.Arg(0)
	val := f.Arg(1)
	times := 1
	if f.Arg(3).Kind == value.KindWord { // /dup
		times = int(f.Arg(4).Int)
	}
	series.Str += strings.Repeat(value.Form(val), times)
	*f.Out = *series
	return false
}

// pick series index
func pickBlock(f *Frame) bool {
	series := f.Arg(0)
	pos := series.Index + int(f.Arg(1).Int) - 1
	if c := series.Series.At(pos); c != nil && pos >= series.Index {
		*f.Out = *c
	} else {
		*f.Out = value.None()
	}
	return false
}

func pickString(f *Frame) bool {
	s := f.Arg(0).Str
	pos := int(f.Arg(1).Int) - 1
	if pos < 0 || pos >= len(s) {
		*f.Out = value.None()
	} else {
		*f.Out = value.String(s[pos : pos+1])
	}
	return false
}

func nativeFirst(f *Frame) bool {
	arg := f.Arg(0)
	switch arg.Kind {
	case value.KindBlock, value.KindGroup, value.KindPath:
		if c := arg.Series.At(arg.Index); c != nil {
			*f.Out = *c
		} else {
			*f.Out = value.None()
		}
	case value.KindString:
		if len(arg.Str) == 0 {
			*f.Out = value.None()
		} else {
			*f.Out = value.String(arg.Str[:1])
		}
	default:
		f.M.fail(errors.Newf(errors.ExpectArg, "first: not a series"))
	}
	return false
}

func nativePoke(f *Frame) bool {
	m := f.M
	series := f.Arg(0)
	a := series.Series
	if a.Flags&value.ArrayLocked != 0 {
		m.fail(errors.Newf(errors.BadFieldSet, "poke: series is locked"))
	}
	pos := series.Index + int(f.Arg(1).Int) - 1
	if pos < series.Index || pos >= a.Len() {
		m.fail(errors.Newf(errors.BadPathRange, "poke: index out of range"))
	}
	a.Cells[pos] = *f.Arg(2)
	*f.Out = *f.Arg(2)
	return false
}

func nativeLengthQ(f *Frame) bool {
	arg := f.Arg(0)
	switch {
	case arg.Kind.IsArrayKind():
		*f.Out = value.Integer(int64(arg.Series.Len() - arg.Index))
	case arg.Kind == value.KindString:
		*f.Out = value.Integer(int64(len(arg.Str)))
	case arg.Kind == value.KindObject || arg.Kind == value.KindFrame:
		*f.Out = value.Integer(int64(arg.Ctx.Len()))
	default:
		f.M.fail(errors.Newf(errors.ExpectArg, "length?: not a series"))
	}
	return false
}
