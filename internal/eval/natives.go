package eval

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"

	"rebo/internal/errors"
	"rebo/internal/load"
	"rebo/internal/value"
)

// registerNative parses a spec string, builds the native record, and binds
// it into the library context.
func (m *Machine) registerNative(name, spec string, flags value.FuncFlag, impl NativeFn) *value.Func {
	arr, err := load.LoadString(spec)
	if err != nil {
		panic(fmt.Sprintf("bad native spec for %s: %v", name, err))
	}
	if arr.Len() == 1 && arr.Cells[0].Kind == value.KindBlock {
		arr = arr.Cells[0].Series
	}
	fn := &value.Func{
		Class:  value.ClassNative,
		Flags:  flags,
		Params: m.ParseSpec(arr),
		Impl:   impl,
		Name:   value.Intern(name),
	}
	idx := m.Lib.Ensure(value.Intern(name))
	*m.Lib.Var(idx) = value.Function(fn)
	return fn
}

var (
	symReturn   = value.Intern("return")
	symLeave    = value.Intern("leave")
	symExit     = value.Intern("exit")
	symThrow    = value.Intern("throw")
	symBreak    = value.Intern("break")
	symContinue = value.Intern("continue")
)

// nativeReturn throws toward the invocation identity carried by the value
// cell that dispatched it.
func nativeReturn(f *Frame) bool {
	m := f.M
	if f.ExitFrom == nil {
		m.fail(errors.Newf(errors.BadSysFunc, "return used outside of a function"))
	}
	m.Throw(f.Out, value.Word(symReturn), *f.Arg(0), f.ExitFrom)
	return true
}

func nativeLeave(f *Frame) bool {
	m := f.M
	if f.ExitFrom == nil {
		m.fail(errors.Newf(errors.BadSysFunc, "leave used outside of a procedure"))
	}
	m.Throw(f.Out, value.Word(symLeave), value.Unset(), f.ExitFrom)
	return true
}

func nativeExitFrom(f *Frame) bool {
	m := f.M
	target := f.Arg(0)
	payload := value.Unset()
	if f.Arg(1).Kind == value.KindWord { // /with
		payload = *f.Arg(2)
	}
	exit := &value.ExitTarget{}
	switch target.Kind {
	case value.KindInteger:
		if target.Int < 1 {
			m.fail(errors.Newf(errors.BadSysFunc, "exit-from: depth must be positive"))
		}
		// The native's own call frame unwinds first and must not count.
		exit.Depth = int(target.Int) + 1
	case value.KindFunction:
		exit.Fn = target.Fn
	case value.KindFrame:
		exit.Ctx = target.Ctx
	}
	m.Throw(f.Out, value.Word(symExit), payload, exit)
	return true
}

func nativeThrow(f *Frame) bool {
	name := value.Word(symThrow)
	if f.Arg(1).Kind == value.KindWord { // /name
		name = value.Word(f.Arg(2).Sym)
	}
	f.M.Throw(f.Out, name, *f.Arg(0), nil)
	return true
}

func nativeCatch(f *Frame) bool {
	m := f.M
	threw := m.DoBlock(f.Out, f.Arg(0))
	if !threw || m.throwExit != nil {
		return threw
	}
	want := symThrow
	if f.Arg(1).Kind == value.KindWord { // /name
		want = f.Arg(2).Sym
	}
	if f.Out.Kind == value.KindWord && value.SameWord(f.Out.Sym, want) {
		m.CatchThrown(f.Out)
		return false
	}
	return true
}

func nativeBreak(f *Frame) bool {
	payload := value.None()
	if f.Arg(0).Kind == value.KindWord { // /return
		payload = *f.Arg(1)
	}
	f.M.Throw(f.Out, value.Word(symBreak), payload, nil)
	return true
}

func nativeContinue(f *Frame) bool {
	f.M.Throw(f.Out, value.Word(symContinue), value.Unset(), nil)
	return true
}

// catchLoopThrow folds break/continue throws into loop control. Returns
// (stop, threw): stop ends the loop, threw propagates everything else.
func catchLoopThrow(m *Machine, out *value.Cell) (stop, threw bool) {
	if m.throwExit != nil || out.Kind != value.KindWord {
		return false, true
	}
	switch {
	case value.SameWord(out.Sym, symBreak):
		m.CatchThrown(out)
		return true, false
	case value.SameWord(out.Sym, symContinue):
		m.CatchThrown(out)
		*out = value.Unset()
		return false, false
	}
	return false, true
}

func nativeIf(f *Frame) bool {
	cond := f.Arg(0)
	if !cond.IsConditionalTrue() {
		*f.Out = value.None()
		return false
	}
	return f.M.DoBlock(f.Out, f.Arg(1))
}

func nativeEither(f *Frame) bool {
	branch := 2
	if f.Arg(0).IsConditionalTrue() {
		branch = 1
	}
	return f.M.DoBlock(f.Out, f.Arg(branch))
}

func nativeUnless(f *Frame) bool {
	if f.Arg(0).IsConditionalTrue() {
		*f.Out = value.None()
		return false
	}
	return f.M.DoBlock(f.Out, f.Arg(1))
}

func nativeWhile(f *Frame) bool {
	m := f.M
	*f.Out = value.Unset()
	var cond value.Cell
	for {
		if m.DoBlock(&cond, f.Arg(0)) {
			*f.Out = cond
			return true
		}
		if cond.IsUnset() {
			m.fail(errors.Newf(errors.NoValue, "while: condition block returned unset"))
		}
		if !cond.IsConditionalTrue() {
			return false
		}
		if m.DoBlock(f.Out, f.Arg(1)) {
			stop, threw := catchLoopThrow(m, f.Out)
			if threw {
				return true
			}
			if stop {
				return false
			}
		}
	}
}

func nativeLoop(f *Frame) bool {
	m := f.M
	n := f.Arg(0).Int
	*f.Out = value.Unset()
	for i := int64(0); i < n; i++ {
		if m.DoBlock(f.Out, f.Arg(1)) {
			stop, threw := catchLoopThrow(m, f.Out)
			if threw {
				return true
			}
			if stop {
				return false
			}
		}
	}
	return false
}

func nativeDo(f *Frame) bool {
	m := f.M
	arg := f.Arg(0)
	switch arg.Kind {
	case value.KindBlock, value.KindGroup:
		return m.DoBlock(f.Out, arg)
	case value.KindString:
		arr, err := load.LoadString(arg.Str)
		if err != nil {
			m.fail(errors.Newf(errors.Syntax, "do: %v", err))
		}
		value.BindAll(arr, m.Lib, true)
		block := value.Block(arr)
		return m.DoBlock(f.Out, &block)
	case value.KindFrame:
		return f.doFrame(arg.Ctx, false)
	case value.KindFunction:
		// The legacy re-evaluator behavior is gone; EVAL retriggers.
		m.fail(errors.Newf(errors.BadSysFunc, "do of a function is not supported; use eval"))
		return false
	default:
		*f.Out = *arg
		return false
	}
}

// nativeEvalStub never runs: the evaluator intercepts EVAL before dispatch.
func nativeEvalStub(f *Frame) bool {
	panic("eval reached ordinary dispatch")
}

// nativeQuote hands back its argument unevaluated. Varless: with no frame
// it pulls the literal cell straight from the feed.
func nativeQuote(f *Frame) bool {
	if f.Args == nil {
		if f.Feed.AtEnd() {
			f.M.fail(errors.Newf(errors.NoArg, "quote is missing its argument"))
		}
		*f.Out = *f.Feed.Current
		f.Feed.Fetch()
		return false
	}
	*f.Out = *f.Arg(0)
	return false
}

func nativeComment(f *Frame) bool {
	if f.Args == nil {
		if f.Feed.AtEnd() {
			f.M.fail(errors.Newf(errors.NoArg, "comment is missing its argument"))
		}
		f.Feed.Fetch()
	}
	*f.Out = value.Unset()
	return false
}

func nativeReduce(f *Frame) bool {
	m := f.M
	block := f.Arg(0)
	switch {
	case f.Arg(1).Kind == value.KindWord: // /only
		var skip *value.Array
		if f.Arg(2).Kind == value.KindBlock {
			skip = f.Arg(2).Series
		}
		return m.ReduceOnly(f.Out, block, skip)
	case f.Arg(3).Kind == value.KindWord: // /no-set
		return m.ReduceNoSet(f.Out, block)
	default:
		return m.Reduce(f.Out, block)
	}
}

func nativeCompose(f *Frame) bool {
	m := f.M
	deep := f.Arg(1).Kind == value.KindWord
	only := f.Arg(2).Kind == value.KindWord
	into := f.Arg(3).Kind == value.KindWord
	if threw := m.Compose(f.Out, f.Arg(0), deep, only); threw {
		return true
	}
	if into {
		target := f.Arg(4)
		target.Series.Cells = append(target.Series.Cells, f.Out.Series.Cells...)
		*f.Out = *target
	}
	return false
}

func nativeConstruct(f *Frame) bool {
	ctx := value.NewContext(8)
	f.M.Construct(ctx, f.Arg(0))
	*f.Out = value.Object(ctx)
	return false
}

func nativeFunc(f *Frame) bool {
	fn := f.M.MakeFunction(f.Arg(0), f.Arg(1), value.ClassUser, true, false)
	*f.Out = value.Function(fn)
	return false
}

func nativeProc(f *Frame) bool {
	fn := f.M.MakeFunction(f.Arg(0), f.Arg(1), value.ClassUser, false, true)
	*f.Out = value.Function(fn)
	return false
}

func nativeDoes(f *Frame) bool {
	empty := value.Block(value.NewArray(0))
	fn := f.M.MakeFunction(&empty, f.Arg(0), value.ClassUser, true, false)
	*f.Out = value.Function(fn)
	return false
}

func nativeClosure(f *Frame) bool {
	fn := f.M.MakeFunction(f.Arg(0), f.Arg(1), value.ClassClosure, true, false)
	*f.Out = value.Function(fn)
	return false
}

// nativeOp builds a user infix operator.
func nativeOp(f *Frame) bool {
	fn := f.M.MakeFunction(f.Arg(0), f.Arg(1), value.ClassUser, true, false)
	fn.Flags |= value.FuncInfix
	*f.Out = value.Function(fn)
	return false
}

func nativeSpecialize(f *Frame) bool {
	m := f.M
	target := f.Arg(0)
	var backing *value.Func
	switch target.Kind {
	case value.KindWord:
		cell := m.mustGetVar(target)
		if cell.Kind != value.KindFunction {
			m.fail(errors.Newf(errors.ExpectArg, "specialize: %s is not a function", target.Sym))
		}
		backing = cell.Fn
	case value.KindFunction:
		backing = target.Fn
	}
	var ctx *value.Context
	if backing.Class == value.ClassSpecialized {
		// Chains flatten at creation: copy the inner pre-fill.
		inner := backing.Special
		ctx = value.FrameContext(inner.Backing)
		copy(ctx.Vars, inner.Frame.Vars)
		backing = inner.Backing
	} else {
		ctx = value.FrameContext(backing)
	}
	fills := f.Arg(1).Series.CopyDeep(f.Arg(1).Index)
	value.Bind(fills, ctx, true)
	block := value.Block(fills)
	var scratch value.Cell
	if threw := m.DoBlock(&scratch, &block); threw {
		*f.Out = scratch
		return true
	}
	fn := &value.Func{
		Class:   value.ClassSpecialized,
		Params:  backing.Params,
		Special: &value.Specialization{Backing: backing, Frame: ctx},
		Name:    backing.Name,
	}
	*f.Out = value.Function(fn)
	return false
}

func nativeMake(f *Frame) bool {
	m := f.M
	typ := f.Arg(0)
	spec := f.Arg(1)
	switch {
	case typ.Kind == value.KindWord && typ.Sym.Canon().Text == "object!":
		if spec.Kind != value.KindBlock {
			m.fail(errors.Newf(errors.ExpectArg, "make object!: spec must be a block"))
		}
		ctx := value.NewContext(8)
		body := spec.Series.CopyDeep(spec.Index)
		collectSetWords(body, ctx)
		value.Bind(body, ctx, true)
		block := value.Block(body)
		var scratch value.Cell
		if threw := m.DoBlock(&scratch, &block); threw {
			*f.Out = scratch
			return true
		}
		*f.Out = value.Object(ctx)
		return false
	case typ.Kind == value.KindWord && typ.Sym.Canon().Text == "frame!":
		var fn *value.Func
		switch spec.Kind {
		case value.KindFunction:
			fn = spec.Fn
		case value.KindWord:
			cell := m.mustGetVar(spec)
			if cell.Kind != value.KindFunction {
				m.fail(errors.Newf(errors.ExpectArg, "make frame!: %s is not a function", spec.Sym))
			}
			fn = cell.Fn
		default:
			m.fail(errors.Newf(errors.ExpectArg, "make frame!: spec must name a function"))
		}
		if fn.Class == value.ClassSpecialized {
			ctx := value.FrameContext(fn.Special.Backing)
			copy(ctx.Vars, fn.Special.Frame.Vars)
			*f.Out = value.Frame(ctx)
			return false
		}
		*f.Out = value.Frame(value.FrameContext(fn))
		return false
	}
	m.fail(errors.Newf(errors.ExpectArg, "make: unsupported type %s", value.Mold(typ)))
	return false
}

// collectSetWords appends a context slot for each top-level set-word.
func collectSetWords(a *value.Array, ctx *value.Context) {
	for i := range a.Cells {
		if a.Cells[i].Kind == value.KindSetWord {
			ctx.Ensure(a.Cells[i].Sym)
		}
	}
}

func nativeSet(f *Frame) bool {
	m := f.M
	w := *f.Arg(0)
	if w.Kind == value.KindLitWord || w.Kind == value.KindSetWord {
		w = w.ToWordKind(value.KindWord)
	}
	cell, err := m.GetMutableVar(&w)
	if err != nil {
		m.fail(err)
	}
	*cell = *f.Arg(1)
	*f.Out = *f.Arg(1)
	return false
}

func nativeGet(f *Frame) bool {
	m := f.M
	w := *f.Arg(0)
	switch w.Kind {
	case value.KindLitWord, value.KindWord, value.KindGetWord:
		w = w.ToWordKind(value.KindWord)
		*f.Out = *m.mustGetVar(&w)
	case value.KindPath, value.KindGetPath:
		if _, _, _, threw := f.doPath(f.Out, &w, nil, false); threw {
			return true
		}
	default:
		m.fail(errors.Newf(errors.ExpectArg, "get: cannot get %s", w.Kind))
	}
	return false
}

func nativeTypeOf(f *Frame) bool {
	*f.Out = value.Word(value.Intern(f.Arg(0).Kind.String()))
	return false
}

func nativeMold(f *Frame) bool {
	*f.Out = value.String(value.Mold(f.Arg(0)))
	return false
}

func nativeForm(f *Frame) bool {
	*f.Out = value.String(value.Form(f.Arg(0)))
	return false
}

func nativePrint(f *Frame) bool {
	m := f.M
	arg := f.Arg(0)
	if arg.Kind == value.KindBlock {
		var reduced value.Cell
		if threw := m.Reduce(&reduced, arg); threw {
			*f.Out = reduced
			return true
		}
		parts := make([]string, 0, reduced.Series.Len())
		for i := range reduced.Series.Cells {
			parts = append(parts, value.Form(&reduced.Series.Cells[i]))
		}
		fmt.Fprintln(m.Output, strings.Join(parts, " "))
	} else {
		fmt.Fprintln(m.Output, value.Form(arg))
	}
	*f.Out = value.Unset()
	return false
}

func nativeProbe(f *Frame) bool {
	fmt.Fprintln(f.M.Output, value.Mold(f.Arg(0)))
	*f.Out = *f.Arg(0)
	return false
}

func nativeNot(f *Frame) bool {
	*f.Out = value.Logic(!f.Arg(0).IsConditionalTrue())
	return false
}

func nativeTrace(f *Frame) bool {
	m := f.M
	if f.Arg(0).IsConditionalTrue() {
		if m.Trace == nil {
			m.Trace = NewTracer(m.Output)
		}
	} else {
		m.Trace = nil
	}
	*f.Out = value.Unset()
	return false
}

func nativeRecycle(f *Frame) bool {
	f.M.recycle()
	*f.Out = value.Unset()
	return false
}

func nativeHalt(f *Frame) bool {
	f.M.fail(errors.Newf(errors.Halt, "halted"))
	return false
}

func nativeStats(f *Frame) bool {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	*f.Out = value.String(fmt.Sprintf("heap %s, %s cumulative",
		humanize.Bytes(ms.HeapAlloc), humanize.Bytes(ms.TotalAlloc)))
	return false
}

func nativeBreakpoint(f *Frame) bool {
	m := f.M
	if m.Breakpoint == nil {
		m.fail(errors.Newf(errors.BadSysFunc, "no breakpoint host installed"))
	}
	var resume value.Cell
	if threw := m.Breakpoint(m, &resume); threw {
		*f.Out = resume
		return true
	}
	if !resume.IsUnset() {
		m.fail(errors.Newf(errors.BadSysFunc, "breakpoint resumed with a value; resume must be unset"))
	}
	*f.Out = value.Unset()
	return false
}

// nativeTake pulls one more value through a varargs handle.
func nativeTake(f *Frame) bool {
	m := f.M
	arg := f.Arg(0)
	if arg.Kind != value.KindVarargs {
		m.fail(errors.Newf(errors.ExpectArg, "take: not a varargs value"))
	}
	h := arg.Extra.(*VarargsHandle)
	_, threw := h.Take(m, f.Out)
	return threw
}

// nativeTailQ checks a varargs handle for exhaustion.
func nativeTailQ(f *Frame) bool {
	arg := f.Arg(0)
	if arg.Kind != value.KindVarargs {
		f.M.fail(errors.Newf(errors.ExpectArg, "tail?: not a varargs value"))
	}
	*f.Out = value.Logic(arg.Extra.(*VarargsHandle).Tail())
	return false
}
