package eval

import (
	"rebo/internal/value"
)

// DoFlag controls one evaluator entry. The pairwise-exclusive choices are
// expressed as "on" bits over a default of to-end, lookahead, args-evaluate.
type DoFlag uint32

const (
	// DoNext stops after one completed expression instead of running to end.
	DoNext DoFlag = 1 << iota
	// DoNoLookahead disables infix lookahead after the expression.
	DoNoLookahead
	// DoNoArgsEvaluate takes arguments and set-word right-hand sides
	// literally from the source.
	DoNoArgsEvaluate

	// Internal flags.
	doValist       // the feed is (or began) variadic
	doTookLock     // the entry locked the source array and must unlock it
	doFrameContext // argument storage is a context, not a chunk
	doExecuteFrame // BAR! slots are unfilled; others are pre-specialized
)

// Mode is the frame's lifecycle state.
type Mode uint8

const (
	// ModeGuard: no call in progress; the frame only roots its source.
	ModeGuard Mode = iota
	// ModeArgs: the argument gatherer is running, first pass.
	ModeArgs
	// ModePickup: the gatherer is filling out-of-order refinement args.
	ModePickup
	// ModeFunction: arguments complete, the call body is running.
	ModeFunction
	// ModeThrown: a throw is in flight through this frame.
	ModeThrown
)

// refineState tracks how the gatherer treats args of the current refinement.
type refineState uint8

const (
	// refPlain: not under any refinement.
	refPlain refineState = iota
	// refActive: refinement in use, args are consumed and checked.
	refActive
	// refSkip: refinement absent (or deferred to pickup); args are unset
	// and nothing is consumed.
	refSkip
	// refRevoking: the refinement's first arg came back unset; remaining
	// args must be unset too.
	refRevoking
)

// Frame is one call record: source position, output cell, and, during a
// function call, the argument storage and gathering cursors. Frames chain
// newest-first; the chain is what the trace, the debugger, and exit-from
// matching walk.
type Frame struct {
	M     *Machine
	Prior *Frame

	Out  *value.Cell
	Feed *Feed
	// ExprIndex is the array index where the current expression started,
	// published for error annotation.
	ExprIndex int
	Flags     DoFlag
	Mode      Mode

	Fn    *value.Func
	Label *value.Symbol
	// ExitFrom is the identity carried by the function value that started
	// this call, when it was a definitional return/leave.
	ExitFrom *value.ExitTarget

	// Args is the live argument storage: a chunk slice, or the varlist of
	// Varlist when the frame is durable.
	Args    []value.Cell
	Varlist *value.Context

	refine refineState
	// refineSlot is the active refinement's own slot, for revocation.
	refineSlot int
	// refineArgStart is the arg index just after the active refinement.
	refineArgStart int

	// dsBase is the data stack depth at call entry; pushed refinements live
	// above it and everything must be back to it on completion.
	dsBase int
	// pathRefBase records where doPath's refinement pushes start.
	pathRefBase int

	// reeval holds a value EVAL spliced back in as the next "current"
	// cell; reevalOnly suppresses argument evaluation for its dispatch.
	reeval     *value.Cell
	reevalCell value.Cell
	reevalOnly bool

	tick uint64
}

// newFrame seeds a frame over a feed.
func (m *Machine) newFrame(out *value.Cell, fd *Feed, flags DoFlag) *Frame {
	return &Frame{M: m, Out: out, Feed: fd, Flags: flags}
}

// argsEvaluate reports whether callsite arguments go through the evaluator.
func (f *Frame) argsEvaluate() bool { return f.Flags&DoNoArgsEvaluate == 0 }

// lookahead reports whether infix lookahead is enabled.
func (f *Frame) lookahead() bool { return f.Flags&DoNoLookahead == 0 }

// Arg returns the argument slot at index i.
func (f *Frame) Arg(i int) *value.Cell {
	if f.Varlist != nil {
		return f.Varlist.Var(i)
	}
	return &f.Args[i]
}

// NumArgs returns the argument slot count.
func (f *Frame) NumArgs() int {
	if f.Varlist != nil {
		return f.Varlist.Len()
	}
	return len(f.Args)
}

// reify migrates chunk-backed argument storage into a durable heap context
// so a FRAME! value can outlive the call. Idempotent.
func (f *Frame) reify() *value.Context {
	if f.Varlist != nil {
		return f.Varlist
	}
	ctx := &value.Context{
		Keys: make([]value.Key, len(f.Fn.Params)),
		Vars: make([]value.Cell, len(f.Fn.Params)),
		Fn:   f.Fn,
	}
	for i, p := range f.Fn.Params {
		ctx.Keys[i] = value.Key{Sym: p.Sym, Types: p.Types}
		if i < len(f.Args) {
			ctx.Vars[i] = f.Args[i]
		}
	}
	ctx.Managed = true
	f.Varlist = ctx
	f.Args = ctx.Vars
	return ctx
}
