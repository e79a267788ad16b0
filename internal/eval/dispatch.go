package eval

import (
	"rebo/internal/errors"
	"rebo/internal/value"
)

// NativeFn is the implementation of a native: it reads finished argument
// slots from the frame (or pulls from the feed when dispatched varless),
// writes the frame's out cell, and reports whether it threw.
type NativeFn func(f *Frame) bool

// CommandFn is the host's command-dispatcher hook.
type CommandFn func(f *Frame) bool

// RoutineFn bridges a foreign (host Go) routine over finished cells.
type RoutineFn func(args []value.Cell) (value.Cell, error)

// doFunction is the function-call branch of the evaluator: argument storage,
// gathering, class dispatch, exit arbitration, and result policing.
// refBase is the data stack depth below any refinements doPath parked.
// onlyOnce suppresses argument evaluation for one EVAL/ONLY retrigger.
func (f *Frame) doFunction(fn *value.Func, label *value.Symbol, exitFrom *value.ExitTarget, infixArg *value.Cell, refBase int, onlyOnce bool) bool {
	return f.doCall(fn, label, exitFrom, infixArg, refBase, onlyOnce, nil)
}

// doCall is doFunction plus the execute-frame entry: with frameCtx, the
// context IS the argument storage (a FRAME! literal being run).
func (f *Frame) doCall(fn *value.Func, label *value.Symbol, exitFrom *value.ExitTarget, infixArg *value.Cell, refBase int, onlyOnce bool, frameCtx *value.Context) bool {
	m := f.M

	// EVAL is the evaluator; it never gets a frame of its own.
	if fn == m.evalFn {
		return f.doEvalNative(refBase)
	}

	var preFill *value.Context
	if fn.Class == value.ClassSpecialized {
		preFill = fn.Special.Frame
		fn = fn.Special.Backing
	}

	if infixArg != nil && fn.Arity() < 1 {
		m.fail(errors.Newf(errors.NoOpArg, "%s: infix function must take at least one argument", label))
	}

	argsEval := f.argsEvaluate() && !onlyOnce

	// Varless fast path: no frame, the native pulls from the feed.
	if fn.Flags&value.FuncVarless != 0 && fn.Class == value.ClassNative &&
		preFill == nil && frameCtx == nil && infixArg == nil &&
		m.DS.Depth() == refBase && m.Trace == nil && argsEval {
		child := m.newFrame(f.Out, f.Feed, f.Flags&DoNoArgsEvaluate)
		child.Fn = fn
		child.Label = label
		child.ExitFrom = exitFrom
		child.Mode = ModeFunction
		child.dsBase = refBase
		m.pushFrame(child)
		threw := fn.Impl.(NativeFn)(child)
		m.popFrame(child)
		return f.arbitrateExit(child, threw)
	}

	child := m.newFrame(f.Out, f.Feed, 0)
	if !argsEval {
		child.Flags |= DoNoArgsEvaluate
	}
	if infixArg != nil {
		// Infix binds tighter than prefix: its right-hand arguments must
		// not consume a following infix chain.
		child.Flags |= DoNoLookahead
	}
	child.Fn = fn
	child.Label = label
	child.ExitFrom = exitFrom
	child.dsBase = refBase

	usedChunk := false
	switch {
	case frameCtx != nil:
		child.Varlist = frameCtx
		child.Args = frameCtx.Vars
		child.Flags |= doExecuteFrame | doFrameContext
	case preFill != nil:
		child.Args = m.Chunks.Push(len(fn.Params))
		copy(child.Args, preFill.Vars)
		child.Flags |= doExecuteFrame
		usedChunk = true
	default:
		child.Args = m.Chunks.Push(len(fn.Params))
		for i := range child.Args {
			child.Args[i] = value.Bar()
		}
		usedChunk = true
	}

	m.pushFrame(child)
	if m.Trace != nil {
		m.Trace.callEnter(m, child)
	}

	threw := child.fulfill(refBase, infixArg)
	if !threw {
		threw = child.dispatch()
	}

	if m.Trace != nil {
		m.Trace.callReturn(m, child, threw)
	}
	if usedChunk {
		m.Chunks.Drop()
	}
	m.popFrame(child)

	threw = f.arbitrateExit(child, threw)

	if !threw {
		if fn.Flags&value.FuncHasLeave != 0 {
			*f.Out = value.Unset()
		} else if fn.Flags&value.FuncHasReturn != 0 {
			if slot := fn.ReturnSlot(); slot >= 0 {
				types := fn.Params[slot].Types
				if !types.Has(f.Out.Kind) {
					m.fail(errors.Newf(errors.ExpectArg,
						"%s: return of %s violates the return typeset", label, f.Out.Kind))
				}
			}
		}
	}
	return threw
}

// dispatch invokes the gathered frame by function class.
func (f *Frame) dispatch() bool {
	m := f.M
	fn := f.Fn
	f.Mode = ModeFunction

	// Closures go durable before the definitional exit is written, so the
	// exit identity is the reified context, not the function.
	if fn.Class == value.ClassClosure {
		f.reify()
	}

	// Definitional exit: the reserved local receives a return/leave bound
	// to this very invocation.
	if fn.Flags&(value.FuncHasReturn|value.FuncHasLeave) != 0 {
		if slot := fn.ReturnSlot(); slot >= 0 {
			exit := &value.ExitTarget{}
			if f.Varlist != nil {
				exit.Ctx = f.Varlist
			} else {
				exit.Fn = fn
			}
			var magic *value.Func
			if fn.Flags&value.FuncHasLeave != 0 {
				magic = m.leaveFn
			} else {
				magic = m.returnFn
			}
			cell := value.Function(magic)
			cell.Exit = exit
			*f.Arg(slot) = cell
		}
	}

	var threw bool
	switch fn.Class {
	case value.ClassNative:
		threw = fn.Impl.(NativeFn)(f)

	case value.ClassAction:
		threw = m.dispatchAction(f)

	case value.ClassUser:
		sub := m.newFrame(f.Out, NewArrayFeed(fn.Body, 0), 0)
		threw = sub.run()

	case value.ClassClosure:
		ctx := f.Varlist
		body := fn.Body.CopyDeep(0)
		value.Bind(body, ctx, true)
		sub := m.newFrame(f.Out, NewArrayFeed(body, 0), 0)
		threw = sub.run()

	case value.ClassCommand:
		impl, ok := fn.Impl.(CommandFn)
		if !ok {
			m.fail(errors.Newf(errors.BadSysFunc, "%s: no command dispatcher installed", f.label()))
		}
		threw = impl(f)

	case value.ClassRoutine:
		args := make([]value.Cell, f.NumArgs())
		for i := range args {
			args[i] = *f.Arg(i)
		}
		res, err := fn.Impl.(RoutineFn)(args)
		if err != nil {
			m.fail(errors.Newf(errors.Misc, "%s: routine failed: %v", f.label(), err))
		}
		*f.Out = res

	default:
		m.fail(errors.Newf(errors.BadSysFunc, "%s: unknown function class", f.label()))
	}

	if threw {
		f.Mode = ModeThrown
	}
	return threw
}

// arbitrateExit inspects an exit-from-bearing throw against the completed
// call and catches it when the identity matches: context identity for
// FRAME!-targeted exits, function identity for FUNCTION!-targeted ones
// (matching the most recent invocation, which is the first unwound), and
// decrement-to-one for integer depth.
func (f *Frame) arbitrateExit(child *Frame, threw bool) bool {
	m := f.M
	if !threw || m.throwExit == nil {
		return threw
	}
	t := m.throwExit
	match := false
	switch {
	case t.Ctx != nil:
		match = child.Varlist != nil && t.Ctx == child.Varlist
	case t.Fn != nil:
		match = t.Fn == child.Fn
	case t.Depth > 0:
		if t.Depth == 1 {
			match = true
		} else {
			t.Depth--
		}
	}
	if !match {
		return true
	}
	m.CatchThrown(f.Out)
	return false
}

// doEvalNative implements EVAL: consume one sub-expression (plus an /ONLY
// refinement if parked), then splice it back as the current value so the
// main switch re-dispatches it without advancing the source.
func (f *Frame) doEvalNative(refBase int) bool {
	m := f.M
	only := false
	for m.DS.Depth() > refBase {
		w := m.DS.Pop()
		if !value.SameWord(w.Sym, symOnly) {
			m.fail(errors.Newf(errors.BadRefine, "eval: unknown refinement /%s", w.Sym))
		}
		only = true
	}
	if f.Feed.AtEnd() {
		m.fail(errors.Newf(errors.NoArg, "eval is missing its value argument"))
	}
	if f.argsEvaluate() {
		sub := m.newFrame(&f.reevalCell, f.Feed, DoNext)
		if sub.run() {
			*f.Out = f.reevalCell
			return true
		}
	} else {
		f.reevalCell = *f.Feed.Current
		f.Feed.Fetch()
	}
	f.reeval = &f.reevalCell
	f.reevalOnly = only
	return false
}

// doFrame executes a FRAME! literal: the context is the argument storage
// itself; BAR! slots are still acquired from the callsite.
func (f *Frame) doFrame(ctx *value.Context, onlyOnce bool) bool {
	ctx.Managed = true
	return f.doCall(ctx.Fn, anonymousSym, nil, nil, f.M.DS.Depth(), onlyOnce, ctx)
}

var symOnly = value.Intern("only")
