package eval

import (
	"rebo/internal/errors"
	"rebo/internal/value"
)

// ParseSpec interprets a function spec block into a parameter list.
// Conventions:
//
//	word           normal argument
//	'word          soft-quoted argument
//	:word          hard-quoted argument
//	/word          refinement
//	word:          pure local
//	word [types]   typeset block of datatype words; the lone word ...
//	               makes the parameter variadic
//	"docstring"    ignored
func (m *Machine) ParseSpec(spec *value.Array) []value.Param {
	var params []value.Param
	for i := 0; i < spec.Len(); i++ {
		c := spec.At(i)
		switch c.Kind {
		case value.KindString:
			continue
		case value.KindWord:
			params = append(params, value.Param{Sym: c.Sym, Class: value.ParamNormal, Types: value.TypesetAny})
		case value.KindLitWord:
			params = append(params, value.Param{Sym: c.Sym, Class: value.ParamSoftQuote, Types: value.TypesetAny})
		case value.KindGetWord:
			params = append(params, value.Param{Sym: c.Sym, Class: value.ParamHardQuote, Types: value.TypesetAny})
		case value.KindRefinement:
			params = append(params, value.Param{Sym: c.Sym, Class: value.ParamRefinement, Types: value.MakeTypeset(value.KindNone, value.KindWord, value.KindLogic)})
		case value.KindSetWord:
			params = append(params, value.Param{Sym: c.Sym, Class: value.ParamLocal, Types: value.TypesetAll})
		case value.KindBlock:
			if len(params) == 0 {
				m.fail(errors.Newf(errors.BadSysFunc, "typeset block before any parameter in spec"))
			}
			p := &params[len(params)-1]
			types, variadic := m.parseTypeBlock(c)
			if variadic {
				p.Class = value.ParamVariadic
				p.Types = value.TypesetAll
			} else if types != 0 {
				p.Types = types
			}
		default:
			m.fail(errors.Newf(errors.BadSysFunc, "unexpected %s in function spec", c.Kind))
		}
	}
	return params
}

func (m *Machine) parseTypeBlock(block *value.Cell) (value.Typeset, bool) {
	var types value.Typeset
	variadic := false
	for i := block.Index; i < block.Series.Len(); i++ {
		w := block.Series.At(i)
		if w.Kind != value.KindWord {
			m.fail(errors.Newf(errors.BadSysFunc, "typeset block holds %s", w.Kind))
		}
		name := w.Sym.Canon().Text
		switch name {
		case "...":
			variadic = true
		case "any-type!":
			types |= value.TypesetAll
		case "any-word!":
			types |= value.MakeTypeset(value.KindWord, value.KindSetWord, value.KindGetWord, value.KindLitWord, value.KindRefinement)
		case "any-block!":
			types |= value.MakeTypeset(value.KindBlock, value.KindGroup, value.KindPath, value.KindSetPath, value.KindGetPath, value.KindLitPath)
		case "number!":
			types |= value.MakeTypeset(value.KindInteger, value.KindDecimal)
		default:
			k, ok := value.KindByName(name)
			if !ok {
				m.fail(errors.Newf(errors.BadSysFunc, "%s is not a datatype", name))
			}
			types = types.With(k)
		}
	}
	return types, variadic
}

// MakeFunction builds a user function (or closure) from spec and body
// blocks. hasReturn and hasLeave reserve the definitional exit local and
// relative-bind the body to the new function's parameters.
func (m *Machine) MakeFunction(spec *value.Cell, body *value.Cell, class value.FuncClass, hasReturn, hasLeave bool) *value.Func {
	params := m.ParseSpec(spec.Series)
	var flags value.FuncFlag
	if hasReturn {
		flags |= value.FuncHasReturn
		params = append(params, value.Param{
			Sym:   value.Intern("return"),
			Class: value.ParamLocal,
			Types: value.TypesetAll,
		})
	}
	if hasLeave {
		flags |= value.FuncHasLeave
		params = append(params, value.Param{
			Sym:   value.Intern("leave"),
			Class: value.ParamLocal,
			Types: value.TypesetAll,
		})
	}
	fn := &value.Func{
		Class:  class,
		Flags:  flags,
		Params: params,
	}
	fn.Body = body.Series.CopyDeep(body.Index)
	value.BindRelative(fn.Body, fn, true)
	return fn
}
