package eval

import (
	"rebo/internal/errors"
	"rebo/internal/value"
)

var anonymousSym = value.Intern("anonymous")

// run is the single core routine. It consumes expressions from f.Feed into
// f.Out until end of stream (or one expression under DoNext), propagating
// throws to the caller. Every other entry point wraps this.
func (f *Frame) run() bool {
	m := f.M
	m.pushFrame(f)
	defer m.popFrame(f)

	dsEntry := m.DS.Depth()

	if f.Feed.AtEnd() {
		*f.Out = value.Unset()
		return false
	}

	for !f.Feed.AtEnd() {
		m.pollSignals()
		m.DoCount++
		f.tick = m.DoCount
		f.ExprIndex = f.Feed.Position()

		if m.Trace != nil {
			m.Trace.step(m, f.Feed.Current)
		}

		// The current cell is copied and the feed advanced past it up
		// front; argument gathering then consumes what follows.
		cur := *f.Feed.Current
		f.Feed.Fetch()

		if threw := f.evalValue(&cur, false); threw {
			m.DS.DropTo(dsEntry)
			return true
		}

		if f.lookahead() {
			if threw := f.lookaheadInfix(); threw {
				m.DS.DropTo(dsEntry)
				return true
			}
		}

		if f.Flags&DoNext != 0 {
			break
		}
	}
	return false
}

// evalValue dispatches one prefetched cell. The feed is already past cur;
// onlyOnce suppresses argument evaluation for a single EVAL/ONLY retrigger.
func (f *Frame) evalValue(cur *value.Cell, onlyOnce bool) bool {
	m := f.M

reevaluate:
	switch cur.Kind {
	case value.KindWord:
		cell := m.mustGetVar(cur)
		if cell.Kind == value.KindFunction {
			if cell.Fn.Flags&value.FuncInfix != 0 {
				m.fail(errors.Newf(errors.NoOpArg,
					"%s: infix function has no preceding argument here", cur.Sym))
			}
			if threw := f.doFunction(cell.Fn, cur.Sym, cell.Exit, nil, m.DS.Depth(), onlyOnce); threw {
				return true
			}
			break
		}
		if cell.IsUnset() {
			m.fail(errors.Newf(errors.NoValue, "%s has no value", cur.Sym))
		}
		*f.Out = *cell

	case value.KindSetWord:
		target := *cur
		if threw := f.evalSetRHS(cur.Sym.Text); threw {
			return true
		}
		cell, err := m.GetMutableVar(&target)
		if err != nil {
			m.fail(err)
		}
		*cell = *f.Out

	case value.KindGetWord:
		cell := m.mustGetVar(cur)
		*f.Out = *cell

	case value.KindLitWord:
		*f.Out = cur.ToWordKind(value.KindWord)

	case value.KindGroup:
		sub := m.newFrame(f.Out, NewArrayFeed(cur.Series, cur.Index), f.Flags&DoNoArgsEvaluate)
		if threw := sub.run(); threw {
			return true
		}

	case value.KindPath:
		fn, exit, label, threw := f.doPath(f.Out, cur, nil, true)
		if threw {
			return true
		}
		if fn != nil {
			if fn.Flags&value.FuncInfix != 0 {
				m.fail(errors.Newf(errors.NoOpArg,
					"infix function dispatched through a path"))
			}
			refBase := f.pathRefBase
			if threw := f.doFunction(fn, label, exit, nil, refBase, onlyOnce); threw {
				return true
			}
		}

	case value.KindSetPath:
		target := *cur
		if threw := f.evalSetRHS(value.Mold(cur)); threw {
			return true
		}
		// The right-hand side runs before the path's own GROUP!s; see
		// DESIGN.md for why this order is kept.
		rhs := *f.Out
		if _, _, _, threw := f.doPath(f.Out, &target, &rhs, false); threw {
			return true
		}
		*f.Out = rhs

	case value.KindGetPath:
		if _, _, _, threw := f.doPath(f.Out, cur, nil, false); threw {
			return true
		}

	case value.KindLitPath:
		*f.Out = cur.ToPathKind(value.KindPath)

	case value.KindFunction:
		if threw := f.doFunction(cur.Fn, anonymousSym, cur.Exit, nil, m.DS.Depth(), onlyOnce); threw {
			return true
		}

	case value.KindFrame:
		ctx := cur.Ctx
		if ctx.Fn == nil {
			m.fail(errors.Newf(errors.BadSysFunc, "frame has no function identity"))
		}
		if threw := f.doFrame(ctx, onlyOnce); threw {
			return true
		}

	case value.KindBar:
		*f.Out = value.Unset()

	case value.KindLitBar:
		*f.Out = value.Bar()

	case value.KindEnd:
		m.fail(errors.Newf(errors.Misc, "end marker reached the evaluator"))

	default:
		// Everything else is self-evaluating.
		*f.Out = *cur
	}

	// EVAL splices its consumed value back in as the current value and
	// re-enters the dispatch switch without advancing the source.
	if f.reeval != nil {
		cur = f.reeval
		f.reeval = nil
		onlyOnce = f.reevalOnly
		f.reevalOnly = false
		goto reevaluate
	}
	return false
}

// evalSetRHS evaluates the right-hand side of a set-word or set-path into
// f.Out, or copies it literally when arguments do not evaluate. An end of
// stream or an unset result refuses the assignment.
func (f *Frame) evalSetRHS(name string) bool {
	m := f.M
	if f.Feed.AtEnd() {
		m.fail(errors.Newf(errors.NeedValue, "%s: needs a value to assign", name))
	}
	if f.argsEvaluate() {
		sub := m.newFrame(f.Out, f.Feed, DoNext)
		if threw := sub.run(); threw {
			return true
		}
	} else {
		*f.Out = *f.Feed.Current
		f.Feed.Fetch()
	}
	if f.Out.IsUnset() {
		m.fail(errors.Newf(errors.NeedValue, "%s: needs a value, got unset", name))
	}
	return false
}

// lookaheadInfix checks whether the next cell is a word bound to an infix
// function and, if so, dispatches it with the just-written output as its
// first argument. Chains: the infix result may itself feed another infix.
func (f *Frame) lookaheadInfix() bool {
	m := f.M
	for {
		cur := f.Feed.Current
		if cur == nil || cur.Kind != value.KindWord {
			return false
		}
		cell, err := m.GetVar(cur)
		if err != nil || cell.Kind != value.KindFunction || cell.Fn.Flags&value.FuncInfix == 0 {
			// Not an infix binding; the next expression deals with it.
			return false
		}
		fn := cell.Fn
		label := cur.Sym
		exit := cell.Exit
		f.Feed.Fetch()
		first := *f.Out
		if threw := f.doFunction(fn, label, exit, &first, m.DS.Depth(), false); threw {
			return true
		}
	}
}
