package eval

import (
	"rebo/internal/errors"
	"rebo/internal/value"
)

// A refinement word parked on the data stack for pickup is tagged with the
// parameter index to resume at, stored in the word cell's Int field as
// index+1 so zero stays "no mark".

// fulfill walks the function's parameter list against its argument slots,
// consuming one sub-expression per normal parameter from the frame's feed.
// refBase is the data stack depth below the refinements doPath parked for
// this call. infixArg, when set, pre-fills the first parameter from the
// preceding expression's result.
func (f *Frame) fulfill(refBase int, infixArg *value.Cell) bool {
	m := f.M
	f.dsBase = refBase
	f.Mode = ModeArgs
	f.refine = refPlain
	exec := f.Flags&doExecuteFrame != 0

	start := 0
	if infixArg != nil {
		p := &f.Fn.Params[0]
		if p.Class == value.ParamRefinement || p.Class == value.ParamLocal {
			m.fail(errors.Newf(errors.NoOpArg, "infix function lacks a leading argument slot"))
		}
		slot := f.Arg(0)
		*slot = *infixArg
		if !p.Types.Has(slot.Kind) {
			m.fail(errors.Newf(errors.ExpectArg,
				"%s: first (infix) argument %s does not accept %s", f.label(), p.Sym, slot.Kind))
		}
		start = 1
	}

	i := start
	pickup := -1 // parameter index being picked up, -1 in the first pass
	for {
		for ; i < len(f.Fn.Params); i++ {
			p := &f.Fn.Params[i]
			slot := f.Arg(i)
			specialized := exec && slot.Kind != value.KindBar

			if pickup >= 0 && i != pickup &&
				(p.Class == value.ParamRefinement || p.Class == value.ParamLocal) {
				// The picked-up refinement's argument run is over.
				break
			}

			switch p.Class {
			case value.ParamLocal:
				if specialized && !slot.IsUnset() {
					m.fail(errors.Newf(errors.LocalInjection,
						"%s: specialization injects a value into pure local %s", f.label(), p.Sym))
				}
				*slot = value.Unset()
				f.refine = refPlain

			case value.ParamRefinement:
				f.fulfillRefinement(i, p, slot, specialized, refBase)

			case value.ParamVariadic:
				if specialized {
					break
				}
				h := &VarargsHandle{frame: f, param: i}
				*slot = value.Cell{Kind: value.KindVarargs, Extra: h}

			default: // normal, soft-quote, hard-quote
				if f.refine == refSkip {
					*slot = value.Unset()
					continue
				}
				if specialized {
					f.checkArg(i, p, slot)
					continue
				}
				if threw := f.fulfillOne(p, slot); threw {
					m.DS.DropTo(refBase)
					*f.Out = *slot
					return true
				}
				f.checkArg(i, p, slot)
			}
		}

		// Second phase: pushed refinements marked for pickup get their
		// (parameter, argument) cursors restored and the same loop resumes
		// in pickup mode.
		next := -1
		for d := m.DS.Depth() - 1; d >= refBase; d-- {
			w := m.DS.At(d)
			if w.Int > 0 {
				mark := *w
				m.DS.Remove(d)
				m.DS.Push(mark)
				next = int(mark.Int) - 1
				break
			}
		}
		if next < 0 {
			break
		}
		i = next
		pickup = next
		f.Mode = ModePickup
	}

	if m.DS.Depth() > refBase {
		w := m.DS.Top()
		name := value.Mold(w)
		m.DS.DropTo(refBase)
		m.fail(errors.Newf(errors.BadRefine, "%s: unknown refinement /%s", f.label(), name))
	}
	f.Mode = ModeFunction
	return false
}

// fulfillRefinement decides presence of one /refinement slot and sets the
// gatherer's state for the arguments that follow it.
func (f *Frame) fulfillRefinement(i int, p *value.Param, slot *value.Cell, specialized bool, refBase int) {
	m := f.M

	if specialized {
		if slot.IsUnset() {
			m.fail(errors.Newf(errors.NoRefine,
				"%s: specialized refinement %s is unset", f.label(), p.Sym))
		}
		if slot.IsConditionalTrue() {
			*slot = value.Word(p.Sym)
			f.refine = refActive
			f.refineSlot = i
			f.refineArgStart = i + 1
		} else {
			*slot = value.None()
			f.refine = refSkip
		}
		return
	}

	if m.DS.Depth() == refBase {
		// Nothing left at the callsite; refinement unused.
		*slot = value.None()
		f.refine = refSkip
		return
	}

	top := m.DS.Top()
	if value.SameWord(top.Sym, p.Sym) {
		m.DS.Pop()
		*slot = value.Word(p.Sym)
		f.refine = refActive
		f.refineSlot = i
		f.refineArgStart = i + 1
		return
	}

	// Out of order: find it lower in the pending set and mark it for the
	// pickup pass; this pass skips the refinement's arguments.
	for d := m.DS.Depth() - 2; d >= refBase; d-- {
		w := m.DS.At(d)
		if value.SameWord(w.Sym, p.Sym) {
			w.Int = int64(i) + 1
			w.Index = i + 1
			*slot = value.None()
			f.refine = refSkip
			return
		}
	}

	// Not mentioned at the callsite at all.
	*slot = value.None()
	f.refine = refSkip
}

// fulfillOne acquires one argument from the callsite per the parameter's
// class. The slot receives the finished value; revocation and type checks
// happen afterwards in checkArg.
func (f *Frame) fulfillOne(p *value.Param, slot *value.Cell) bool {
	m := f.M
	fd := f.Feed

	if fd.AtEnd() {
		if p.Types.Has(value.KindUnset) {
			*slot = value.Unset()
			return false
		}
		m.fail(errors.Newf(errors.NoArg, "%s is missing its %s argument", f.label(), p.Sym))
	}

	switch p.Class {
	case value.ParamNormal:
		if !f.argsEvaluate() {
			*slot = *fd.Current
			fd.Fetch()
			return false
		}
		if fd.Current.Kind == value.KindBar {
			m.fail(errors.Newf(errors.ExpressionBarrier,
				"%s: expression barrier where argument %s was required", f.label(), p.Sym))
		}
		sub := m.newFrame(slot, fd, DoNext|f.Flags&DoNoLookahead)
		return sub.run()

	case value.ParamHardQuote:
		*slot = *fd.Current
		fd.Fetch()
		return false

	case value.ParamSoftQuote:
		cur := *fd.Current
		if f.argsEvaluate() {
			switch cur.Kind {
			case value.KindGroup:
				fd.Fetch()
				return m.DoValue(slot, &cur)
			case value.KindGetWord:
				fd.Fetch()
				*slot = *m.mustGetVar(&cur)
				return false
			case value.KindGetPath:
				fd.Fetch()
				_, _, _, threw := f.doPath(slot, &cur, nil, false)
				return threw
			}
		}
		*slot = cur
		fd.Fetch()
		return false
	}
	m.fail(errors.Newf(errors.Misc, "unhandled parameter class %s", p.Class))
	return false
}

// checkArg applies revocation rules and the parameter's typeset to a
// freshly fulfilled (or specialized) argument.
func (f *Frame) checkArg(i int, p *value.Param, slot *value.Cell) {
	m := f.M

	if slot.IsUnset() {
		switch f.refine {
		case refActive:
			if i == f.refineArgStart {
				// First argument unset: the whole refinement revokes.
				*f.Arg(f.refineSlot) = value.None()
				f.refine = refRevoking
				return
			}
			m.fail(errors.Newf(errors.BadRefineRevoke,
				"%s: unset argument %s after refinement already took values", f.label(), p.Sym))
		case refRevoking:
			return
		default:
			if p.Types.Has(value.KindUnset) {
				return
			}
			m.fail(errors.Newf(errors.NoArg, "%s: argument %s is unset", f.label(), p.Sym))
		}
	}

	if f.refine == refRevoking {
		m.fail(errors.Newf(errors.BadRefineRevoke,
			"%s: argument %s has a value under a revoked refinement", f.label(), p.Sym))
	}

	if !p.Types.Has(slot.Kind) {
		m.fail(errors.Newf(errors.ExpectArg,
			"%s does not allow %s for its %s argument", f.label(), slot.Kind, p.Sym))
	}
}

// label names the frame for error messages.
func (f *Frame) label() string {
	if f.Label != nil {
		return f.Label.Text
	}
	return "anonymous"
}
