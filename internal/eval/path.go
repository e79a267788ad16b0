package eval

import (
	"rebo/internal/errors"
	"rebo/internal/value"
)

// pathResult is the per-kind path dispatcher's answer.
type pathResult int

const (
	peOK pathResult = iota
	peSetDone
	peNone
	peBadSelect
	peBadSet
	peBadRange
	peBadSetType
)

// doPath walks an any-path cell component by component. With setval, the
// final component is assigned instead of selected. With wantFunc, traversal
// stops at a function value: the remaining components are treated as
// refinements and pushed (path order on top) onto the data stack, and the
// function plus its callsite label are returned for the caller to dispatch.
// The data stack depth below any pushed refinements is kept in f.pathRefBase.
func (f *Frame) doPath(out *value.Cell, path *value.Cell, setval *value.Cell, wantFunc bool) (fn *value.Func, exit *value.ExitTarget, label *value.Symbol, threw bool) {
	m := f.M
	elems := path.Series
	if elems == nil || elems.Len() == 0 {
		m.fail(errors.Newf(errors.BadPath, "empty path"))
	}

	head := elems.At(0)
	var cur value.Cell
	switch {
	case head.Kind == value.KindWord || head.Kind == value.KindGetWord:
		if setval != nil && elems.Len() == 1 {
			cell, err := m.GetMutableVar(head)
			if err != nil {
				m.fail(err)
			}
			*cell = *setval
			return nil, nil, nil, false
		}
		cell := m.mustGetVar(head)
		if cell.IsUnset() {
			m.fail(errors.Newf(errors.NoValue, "%s has no value", head.Sym))
		}
		cur = *cell
		label = head.Sym
	default:
		cur = *head
	}

	i := 1
	for ; i < elems.Len(); i++ {
		if cur.Kind == value.KindFunction && wantFunc {
			break
		}
		switch cur.Kind {
		case value.KindObject, value.KindFrame, value.KindString,
			value.KindBlock, value.KindGroup, value.KindPath,
			value.KindSetPath, value.KindGetPath, value.KindLitPath:
			// Dispatchable.
		default:
			m.fail(errors.Newf(errors.BadPathType,
				"%s: %s does not support path selection", value.Mold(path), cur.Kind))
		}
		sel := elems.At(i)
		var selv value.Cell
		switch sel.Kind {
		case value.KindGroup:
			if threw := m.DoValue(&selv, sel); threw {
				*out = selv
				return nil, nil, nil, true
			}
		case value.KindGetWord:
			selv = *m.mustGetVar(sel)
		default:
			selv = *sel
		}

		var sv *value.Cell
		if setval != nil && i == elems.Len()-1 {
			sv = setval
		}
		switch res := m.pathSelect(&cur, &selv, sv); res {
		case peOK:
			// cur updated in place
		case peSetDone:
			return nil, nil, nil, false
		case peNone:
			cur = value.None()
		case peBadSelect:
			if sv != nil {
				m.fail(errors.Newf(errors.BadPathSet, "%s: cannot set %s in path", value.Mold(path), value.Mold(&selv)))
			}
			m.fail(errors.Newf(errors.BadPath, "%s: cannot select %s in %s", value.Mold(path), value.Mold(&selv), cur.Kind))
		case peBadSet:
			m.fail(errors.Newf(errors.BadFieldSet, "%s: field %s refuses that value", value.Mold(path), value.Mold(&selv)))
		case peBadRange:
			m.fail(errors.Newf(errors.BadPathRange, "%s: index %s out of range", value.Mold(path), value.Mold(&selv)))
		case peBadSetType:
			m.fail(errors.Newf(errors.BadPathType, "%s: %s does not support path setting", value.Mold(path), cur.Kind))
		}
	}

	if cur.Kind == value.KindFunction && wantFunc {
		// Function tail: scan the rest as refinements.
		base := m.DS.Depth()
		for j := i; j < elems.Len(); j++ {
			el := elems.At(j)
			var w value.Cell
			switch el.Kind {
			case value.KindWord:
				w = *el
			case value.KindGetWord:
				w = *m.mustGetVar(el)
			case value.KindGroup:
				if threw := m.DoValue(&w, el); threw {
					m.DS.DropTo(base)
					*out = w
					return nil, nil, nil, true
				}
			default:
				m.fail(errors.Newf(errors.BadRefine, "%s: %s cannot name a refinement", value.Mold(path), value.Mold(el)))
			}
			if w.Kind != value.KindWord && w.Kind != value.KindRefinement {
				m.fail(errors.Newf(errors.BadRefine, "%s: %s cannot name a refinement", value.Mold(path), value.Mold(&w)))
			}
			rw := value.Word(w.Sym.Canon())
			m.DS.Push(rw)
		}
		m.DS.Reverse(base)
		if label == nil {
			label = anonymousSym
		}
		f.pathRefBase = base
		return cur.Fn, cur.Exit, label, false
	}

	if setval != nil {
		// A set-path whose last component did not land in a settable spot.
		m.fail(errors.Newf(errors.BadPathSet, "%s: path does not end at a settable location", value.Mold(path)))
	}
	*out = cur
	return nil, nil, nil, false
}

// pathSelect applies one path component to the current value, replacing it
// (get) or assigning through it (set).
func (m *Machine) pathSelect(cur *value.Cell, sel *value.Cell, setval *value.Cell) pathResult {
	switch cur.Kind {
	case value.KindObject, value.KindFrame:
		if !sel.Kind.IsWordKind() {
			return peBadSelect
		}
		idx := cur.Ctx.Find(sel.Sym)
		if idx < 0 {
			return peBadSelect
		}
		slot := cur.Ctx.Var(idx)
		if setval != nil {
			if slot.Flags&value.FlagProtected != 0 {
				return peBadSet
			}
			*slot = *setval
			return peSetDone
		}
		*cur = *slot
		return peOK

	case value.KindBlock, value.KindGroup, value.KindPath, value.KindSetPath, value.KindGetPath, value.KindLitPath:
		a := cur.Series
		switch sel.Kind {
		case value.KindInteger:
			pos := cur.Index + int(sel.Int) - 1
			if setval != nil {
				if a.Flags&value.ArrayLocked != 0 {
					return peBadSetType
				}
				if pos < cur.Index || pos >= a.Len() {
					return peBadRange
				}
				a.Cells[pos] = *setval
				return peSetDone
			}
			if pos < cur.Index || pos >= a.Len() {
				return peNone
			}
			*cur = a.Cells[pos]
			return peOK
		case value.KindWord, value.KindSetWord, value.KindGetWord, value.KindLitWord, value.KindRefinement:
			// SELECT semantics: the value after the matching word.
			for i := cur.Index; i < a.Len(); i++ {
				c := a.At(i)
				if c.Kind.IsWordKind() && value.SameWord(c.Sym, sel.Sym) {
					if setval != nil {
						if a.Flags&value.ArrayLocked != 0 {
							return peBadSetType
						}
						if i+1 >= a.Len() {
							return peBadRange
						}
						a.Cells[i+1] = *setval
						return peSetDone
					}
					if i+1 >= a.Len() {
						return peNone
					}
					*cur = a.Cells[i+1]
					return peOK
				}
			}
			if setval != nil {
				return peBadSelect
			}
			return peNone
		}
		return peBadSelect

	case value.KindString:
		if sel.Kind != value.KindInteger {
			return peBadSelect
		}
		if setval != nil {
			return peBadSetType
		}
		pos := int(sel.Int) - 1
		if pos < 0 || pos >= len(cur.Str) {
			return peNone
		}
		*cur = value.String(cur.Str[pos : pos+1])
		return peOK
	}
	return peBadSelect
}

// DoValue evaluates a single value in isolation: groups run their contents,
// everything else goes through one DO/NEXT over a synthetic one-cell source.
// Used for paren-style escapes inside paths and argument gathering.
func (m *Machine) DoValue(out *value.Cell, v *value.Cell) bool {
	if v.Kind == value.KindGroup {
		sub := m.newFrame(out, NewArrayFeed(v.Series, v.Index), 0)
		return sub.run()
	}
	a := value.ArrayOf(*v)
	sub := m.newFrame(out, NewArrayFeed(a, 0), DoNext)
	return sub.run()
}
