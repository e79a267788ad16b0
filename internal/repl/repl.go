// internal/repl/repl.go
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"rebo/internal/eval"
	"rebo/internal/value"
)

// Session is an interactive read-eval-print loop over one machine. The same
// loop doubles as the breakpoint session the interrupt signal enters.
type Session struct {
	M      *eval.Machine
	In     io.Reader
	Out    io.Writer
	Prompt string
}

// New returns a session over m reading stdin. The prompt is suppressed when
// stdin is not a terminal, so piped input produces clean output.
func New(m *eval.Machine) *Session {
	prompt := ""
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		prompt = ">> "
	}
	return &Session{M: m, In: os.Stdin, Out: m.Output, Prompt: prompt}
}

// Run reads lines until exit/quit or EOF, evaluating each under a trap so
// errors print and the loop continues. Halt unwinds here too.
func (s *Session) Run() {
	scanner := bufio.NewScanner(s.In)
	for {
		if s.Prompt != "" {
			fmt.Fprint(s.Out, s.Prompt)
		}
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "exit" || line == "quit" {
			return
		}
		if line == "" {
			continue
		}
		s.evalLine(line)
	}
}

func (s *Session) evalLine(line string) {
	m := s.M
	var out value.Cell
	err := m.TrapEval(func() {
		if m.DoString(&out, line) {
			// An uncaught throw surfaced at the top level.
			name := value.Mold(&out)
			payload := m.ThrownPayload()
			fmt.Fprintf(s.Out, "** uncaught throw: %s %s\n", name, value.Mold(&payload))
			out = value.Unset()
		}
	})
	if err != nil {
		fmt.Fprintln(s.Out, err.Error())
		return
	}
	if !out.IsUnset() {
		fmt.Fprintf(s.Out, "== %s\n", value.Mold(&out))
	}
}

// Breakpoint is the interrupt-signal entry: a nested session on the same
// machine. The resume cell stays unset, which is what the poller demands.
func Breakpoint(m *eval.Machine, out *value.Cell) bool {
	if m.Trace != nil {
		outer := m.Trace
		m.Trace = eval.NewTracer(outer.W)
		defer func() { m.Trace = outer }()
	}
	s := New(m)
	s.Prompt = "break>> "
	fmt.Fprintln(s.Out, "-- breakpoint (exit to resume) --")
	s.Run()
	*out = value.Unset()
	return false
}
