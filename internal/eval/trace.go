package eval

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"rebo/internal/value"
)

// Tracer logs each expression step and each call entry/return, indented by
// frame depth. Recursive breakpoint sessions get their own tracer, so every
// session carries an id to keep interleaved logs apart.
type Tracer struct {
	W       io.Writer
	Session string
}

// NewTracer returns a tracer writing to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{W: w, Session: uuid.NewString()[:8]}
}

func (t *Tracer) indent(m *Machine) string {
	return strings.Repeat("    ", m.depth)
}

// step logs one expression about to be evaluated.
func (t *Tracer) step(m *Machine, cur *value.Cell) {
	fmt.Fprintf(t.W, "%s %s%d: %s\n", t.Session, t.indent(m), m.DoCount, value.Mold(cur))
}

// callEnter logs a function call once its frame is pushed.
func (t *Tracer) callEnter(m *Machine, f *Frame) {
	fmt.Fprintf(t.W, "%s %s--> %s\n", t.Session, t.indent(m), f.label())
}

// callReturn logs call completion with the result or the throw name.
func (t *Tracer) callReturn(m *Machine, f *Frame, threw bool) {
	if threw {
		fmt.Fprintf(t.W, "%s %s<-- %s threw %s\n", t.Session, t.indent(m), f.label(), value.Mold(f.Out))
		return
	}
	fmt.Fprintf(t.W, "%s %s<-- %s == %s\n", t.Session, t.indent(m), f.label(), value.Mold(f.Out))
}

// recycle logs a collection cycle run by the signal poller.
func (t *Tracer) recycle(freed string) {
	fmt.Fprintf(t.W, "%s [recycle: %s reclaimed]\n", t.Session, freed)
}
