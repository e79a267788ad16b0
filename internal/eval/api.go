package eval

import (
	"rebo/internal/errors"
	"rebo/internal/load"
	"rebo/internal/value"
)

// EndIndex is DoArray's "source exhausted" answer.
const EndIndex = -1

// Result is the outcome of a variadic-entry evaluation.
type Result int

const (
	// ResultDone: one expression completed, more source remains.
	ResultDone Result = iota
	// ResultEnd: the source is exhausted.
	ResultEnd
	// ResultThrew: a throw is in the out cell.
	ResultThrew
	// ResultValist: a DO/NEXT stopped inside a still-variadic feed; the
	// position cannot be expressed as an index.
	ResultValist
)

// DoArray evaluates from an array source. An optional first cell is
// evaluated before array[index] (the apply mechanism). Returns the index
// after the consumed expression(s), EndIndex at end of source, and whether
// a throw is in out.
func (m *Machine) DoArray(out *value.Cell, first *value.Cell, a *value.Array, index int, flags DoFlag) (int, bool) {
	fd := NewArrayFeed(a, index)
	if first != nil {
		fd.Index = index
		fd.SeedFirst(first)
	}
	took := false
	if flags&doTookLock == 0 && a.Flags&value.ArrayLocked == 0 {
		a.Flags |= value.ArrayLocked
		flags |= doTookLock
		took = true
	}
	f := m.newFrame(out, fd, flags)
	threw := f.run()
	if took {
		a.Flags &^= value.ArrayLocked
	}
	if threw {
		return fd.Position(), true
	}
	if fd.AtEnd() {
		return EndIndex, false
	}
	return fd.Position(), false
}

// DoVaradic evaluates from a forward-only pull sequence, the stand-in for a
// C variadic call frame. An optional first cell is evaluated before the
// first pulled one.
func (m *Machine) DoVaradic(out *value.Cell, first *value.Cell, pull Puller, flags DoFlag) Result {
	fd := NewPullFeed(first, pull)
	f := m.newFrame(out, fd, flags|doValist)
	threw := f.run()
	switch {
	case threw:
		return ResultThrew
	case fd.AtEnd():
		return ResultEnd
	case fd.Variadic():
		return ResultValist
	default:
		return ResultDone
	}
}

// ApplyOnly invokes applicand with the given literal arguments: one DO/NEXT
// with argument evaluation off and lookahead on. Surplus arguments are an
// error.
func (m *Machine) ApplyOnly(out *value.Cell, applicand *value.Cell, args ...value.Cell) bool {
	i := 0
	pull := func() (value.Cell, bool) {
		if i >= len(args) {
			return value.Cell{}, false
		}
		c := args[i]
		i++
		return c, true
	}
	fd := NewPullFeed(applicand, pull)
	f := m.newFrame(out, fd, DoNext|DoNoArgsEvaluate)
	threw := f.run()
	if !threw && !fd.AtEnd() {
		m.fail(errors.Newf(errors.ApplyTooMany, "apply: too many arguments"))
	}
	return threw
}

// LoadString scans source text into a block cell bound against the library
// context, ready for DoBlock. Words not yet in the library (plain, set, get
// and lit forms) are added to it as new slots.
func (m *Machine) LoadString(src string) (value.Cell, *errors.Error) {
	arr, err := load.LoadString(src)
	if err != nil {
		return value.Cell{}, errors.Newf(errors.Syntax, "%v", err)
	}
	value.BindAll(arr, m.Lib, true)
	return value.Block(arr), nil
}

// DoString loads and runs source text to completion.
func (m *Machine) DoString(out *value.Cell, src string) bool {
	block, err := m.LoadString(src)
	if err != nil {
		m.fail(err)
	}
	return m.DoBlock(out, &block)
}

// DoBlock runs a block cell to completion into out.
func (m *Machine) DoBlock(out *value.Cell, block *value.Cell) bool {
	f := m.newFrame(out, NewArrayFeed(block.Series, block.Index), 0)
	return f.run()
}

// TrapEval runs fn under the host trap, restoring the machine's frame,
// data, and chunk stacks when an error unwinds; the evaluator itself never
// unwinds its own state on failure.
func (m *Machine) TrapEval(fn func()) *errors.Error {
	top := m.Top
	depth := m.depth
	ds := m.DS.Depth()
	chunks := m.Chunks.Depth()
	masked := m.sigMasked
	err := errors.Trap(fn)
	if err != nil {
		m.Top = top
		m.depth = depth
		m.DS.DropTo(ds)
		for m.Chunks.Depth() > chunks {
			m.Chunks.Drop()
		}
		m.sigMasked = masked
		m.throwExit = nil
	}
	return err
}
