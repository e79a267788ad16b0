package eval

import (
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"rebo/internal/errors"
	"rebo/internal/value"
)

// Signal bits. Another goroutine may set them; everything else about a
// machine is single-owner.
const (
	SigRecycle uint32 = 1 << iota
	SigInterrupt
	SigHalt
)

// defaultSigPeriod is how many completed expressions pass between polls.
const defaultSigPeriod = 64

// maxFrameDepth bounds evaluator recursion before a stack-overflow error.
const maxFrameDepth = 4096

// Machine is one evaluator task: frame stack, data stack, chunk stack,
// signal mask, throw cache, and the library context. A machine is
// single-threaded; concurrency means more machines.
type Machine struct {
	Lib *value.Context

	// Output receives print, probe, and trace text.
	Output io.Writer

	DS     DataStack
	Chunks ChunkStack

	// Top is the newest in-flight frame; the chain is the GC root the core
	// publishes and the basis for exit-from matching.
	Top *Frame

	sigMask   atomic.Uint32
	sigMasked bool
	SigPeriod int
	sigCount  int

	// DoCount ticks once per DO/NEXT, for the trace and the debugger.
	DoCount uint64

	// Throw cache: a thrown cell holds only the throw name; its payload and
	// optional exit target ride here until caught.
	throwPayload value.Cell
	throwExit    *value.ExitTarget

	// composeThrown carries a thrown cell out of compose's recursion.
	composeThrown value.Cell

	// Trace is nil when tracing is off.
	Trace *Tracer

	// Breakpoint is entered on the interrupt signal; it must leave out
	// unset on resume. Returns true when the session threw.
	Breakpoint func(m *Machine, out *value.Cell) bool

	// Identity anchors for the evaluator's special natives.
	evalFn   *value.Func
	returnFn *value.Func
	leaveFn  *value.Func

	depth int
}

// NewMachine returns a machine with an empty library context. Callers
// normally follow with InstallLib.
func NewMachine() *Machine {
	return &Machine{
		Lib:       value.NewContext(64),
		Output:    os.Stdout,
		SigPeriod: defaultSigPeriod,
	}
}

// SetSignal raises signal bits; safe to call from another goroutine.
func (m *Machine) SetSignal(bits uint32) {
	for {
		old := m.sigMask.Load()
		if m.sigMask.CompareAndSwap(old, old|bits) {
			return
		}
	}
}

// pollSignals runs between expressions, never inside one. Signals are
// masked while a handler runs so handlers cannot re-enter.
func (m *Machine) pollSignals() {
	m.sigCount++
	if m.sigCount < m.SigPeriod {
		return
	}
	m.sigCount = 0
	if m.sigMasked {
		return
	}
	bits := m.sigMask.Swap(0)
	if bits == 0 {
		return
	}
	m.sigMasked = true
	defer func() { m.sigMasked = false }()

	if bits&SigRecycle != 0 {
		m.recycle()
	}
	if bits&SigInterrupt != 0 && m.Breakpoint != nil {
		var resume value.Cell
		m.Breakpoint(m, &resume)
		if !resume.IsUnset() {
			m.fail(errors.Newf(errors.BadSysFunc,
				"breakpoint resumed with a value; resume must be unset"))
		}
	}
	if bits&SigHalt != 0 {
		m.fail(errors.Newf(errors.Halt, "halted"))
	}
}

// recycle runs a collection cycle and reports the reclaimed size through
// the trace hook.
func (m *Machine) recycle() {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	runtime.GC()
	if m.Trace != nil {
		runtime.ReadMemStats(&after)
		freed := int64(before.HeapAlloc) - int64(after.HeapAlloc)
		if freed < 0 {
			freed = 0
		}
		m.Trace.recycle(humanize.Bytes(uint64(freed)))
	}
}

// fail raises an error out of the evaluator, annotating it with the source
// position and the label chain of in-flight calls.
func (m *Machine) fail(err *errors.Error) {
	if err.Near == "" && m.Top != nil {
		f := m.Top
		if f.Feed != nil && f.Feed.Variadic() {
			// Materialize the remainder so the error can show source.
			f.Feed.Reify(true)
		}
		if f.Feed != nil && f.Feed.Array != nil {
			err.Index = f.ExprIndex
			near := value.Block(f.Feed.Array)
			near.Index = f.ExprIndex
			err.Near = value.Mold(&near)
		}
		for w := f; w != nil; w = w.Prior {
			if w.Label != nil {
				err.Where = append(err.Where, w.Label.Text)
			}
		}
	}
	errors.Fail(err)
}

// GetVar resolves a word cell to its storage. Specific bindings point into
// a context; relative bindings resolve against the most recent invocation
// of the owning function on the frame stack.
func (m *Machine) GetVar(w *value.Cell) (*value.Cell, *errors.Error) {
	switch {
	case w.Ctx != nil:
		if cell := w.Ctx.Var(w.Index); cell != nil {
			return cell, nil
		}
		return nil, errors.Newf(errors.NotBound, "%s: stale context binding", w.Sym)
	case w.Rel != nil:
		for f := m.Top; f != nil; f = f.Prior {
			if f.Fn == w.Rel && f.Mode == ModeFunction {
				if f.Varlist != nil {
					return f.Varlist.Var(w.Index), nil
				}
				return &f.Args[w.Index], nil
			}
		}
		return nil, errors.Newf(errors.NotBound, "%s: no active frame for relative word", w.Sym)
	default:
		return nil, errors.Newf(errors.NotBound, "%s word is not bound to a context", w.Sym)
	}
}

// GetMutableVar is GetVar plus a write-permission check.
func (m *Machine) GetMutableVar(w *value.Cell) (*value.Cell, *errors.Error) {
	cell, err := m.GetVar(w)
	if err != nil {
		return nil, err
	}
	if cell.Flags&value.FlagProtected != 0 {
		return nil, errors.Newf(errors.Misc, "%s: protected variable", w.Sym)
	}
	return cell, nil
}

// mustGetVar is GetVar with failure raised through the trap channel.
func (m *Machine) mustGetVar(w *value.Cell) *value.Cell {
	cell, err := m.GetVar(w)
	if err != nil {
		m.fail(err)
	}
	return cell
}

// pushFrame links f as the newest frame, guarding recursion depth.
func (m *Machine) pushFrame(f *Frame) {
	if m.depth >= maxFrameDepth {
		m.fail(errors.Newf(errors.StackOverflow, "evaluator nested too deeply"))
	}
	f.Prior = m.Top
	m.Top = f
	m.depth++
}

// popFrame unlinks f. Normally f is the newest frame; while a failure is
// unwinding, frames pushed without a deferred pop may still be linked above
// it and are dropped along the way.
func (m *Machine) popFrame(f *Frame) {
	for m.Top != nil && m.Top != f {
		m.Top = m.Top.Prior
		m.depth--
	}
	if m.Top == f {
		m.Top = f.Prior
		m.depth--
	}
}

// ThrownPayload exposes the payload of the throw currently in flight.
func (m *Machine) ThrownPayload() value.Cell { return m.throwPayload }

// Throw puts out into the thrown state: out carries the name, the machine
// carries the payload and the optional exit target.
func (m *Machine) Throw(out *value.Cell, name value.Cell, payload value.Cell, exit *value.ExitTarget) {
	*out = name
	out.Flags |= value.FlagThrown
	m.throwPayload = payload
	m.throwExit = exit
}

// CatchThrown replaces the thrown cell with the throw's payload and clears
// the throw cache.
func (m *Machine) CatchThrown(out *value.Cell) {
	payload := m.throwPayload
	m.throwPayload = value.Cell{}
	m.throwExit = nil
	*out = payload
}
