package eval

import (
	"rebo/internal/errors"
	"rebo/internal/value"
)

// VarargsHandle is the payload of a VARARGS! cell: a back-reference to the
// frame and parameter it was installed for. The function body pulls
// additional callsite values through it after the ordinary arguments were
// gathered.
type VarargsHandle struct {
	frame *Frame
	param int
}

// live reports whether the originating call is still on the frame stack.
func (h *VarargsHandle) live(m *Machine) bool {
	for f := m.Top; f != nil; f = f.Prior {
		if f == h.frame {
			return f.Mode == ModeFunction
		}
	}
	return false
}

// Take evaluates one more expression from the originating callsite into
// out. At end of stream out becomes none and ok is false. A throw from the
// pulled expression propagates (threw true).
func (h *VarargsHandle) Take(m *Machine, out *value.Cell) (ok bool, threw bool) {
	if !h.live(m) {
		m.fail(errors.Newf(errors.BadSysFunc, "varargs outlived its originating frame"))
	}
	fd := h.frame.Feed
	if fd.AtEnd() {
		*out = value.None()
		return false, false
	}
	p := &h.frame.Fn.Params[h.param]
	switch p.Class {
	case value.ParamVariadic:
		sub := m.newFrame(out, fd, DoNext)
		if sub.run() {
			return false, true
		}
	default:
		m.fail(errors.Newf(errors.BadSysFunc, "varargs handle on a non-variadic parameter"))
	}
	return true, false
}

// Tail reports whether the originating callsite has no values left.
func (h *VarargsHandle) Tail() bool {
	return h.frame.Feed.AtEnd()
}
