// cmd/rebo/main.go
package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"rebo/internal/eval"
	"rebo/internal/repl"
	"rebo/internal/value"
)

const version = "0.1.0"

// Command aliases mapping
var commandAliases = map[string]string{
	"r": "run",
	"i": "repl",
	"e": "eval",
	"v": "version",
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return cmdRepl(nil)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}
	args = args[1:]

	trace := false
	rest := args[:0:0]
	for _, a := range args {
		if a == "-trace" || a == "--trace" {
			trace = true
			continue
		}
		rest = append(rest, a)
	}

	switch cmd {
	case "help", "--help", "-h":
		showUsage()
		return 0
	case "version", "--version", "-v":
		fmt.Printf("rebo %s\n", version)
		return 0
	case "repl":
		return cmdRepl(traceOpt(trace))
	case "eval":
		if len(rest) == 0 {
			fmt.Fprintln(os.Stderr, "usage: rebo eval \"code\"")
			return 2
		}
		return cmdEval(rest[0], trace)
	case "run":
		if len(rest) == 0 {
			fmt.Fprintln(os.Stderr, "usage: rebo run file.rebo...")
			return 2
		}
		return cmdRun(rest, trace)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		showUsage()
		return 2
	}
}

type machineOpt func(m *eval.Machine)

func traceOpt(on bool) machineOpt {
	if !on {
		return nil
	}
	return func(m *eval.Machine) {
		m.Trace = eval.NewTracer(m.Output)
	}
}

func newMachine(opts ...machineOpt) *eval.Machine {
	m := eval.NewMachine()
	m.InstallLib()
	m.Breakpoint = repl.Breakpoint
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func cmdRepl(opt machineOpt) int {
	m := newMachine(opt)
	fmt.Println("rebo " + version + " | type 'exit' to quit")
	repl.New(m).Run()
	return 0
}

func cmdEval(code string, trace bool) int {
	m := newMachine(traceOpt(trace))
	return evalSource(m, code)
}

// cmdRun evaluates each script on its own machine; machines are
// single-threaded, so files run concurrently on separate ones.
func cmdRun(files []string, trace bool) int {
	var g errgroup.Group
	for _, file := range files {
		file := file
		g.Go(func() error {
			src, err := os.ReadFile(file)
			if err != nil {
				return pkgerrors.Wrapf(err, "reading %s", file)
			}
			m := newMachine(traceOpt(trace))
			if code := evalSource(m, string(src)); code != 0 {
				return pkgerrors.Errorf("%s: script failed", file)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func evalSource(m *eval.Machine, src string) int {
	var out value.Cell
	threw := false
	err := m.TrapEval(func() {
		threw = m.DoString(&out, src)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if err.IsHalt() {
			return 0
		}
		return 1
	}
	if threw {
		payload := m.ThrownPayload()
		fmt.Fprintf(os.Stderr, "** uncaught throw: %s %s\n", value.Mold(&out), value.Mold(&payload))
		return 1
	}
	return 0
}

func showUsage() {
	fmt.Println(`rebo - a homoiconic block-language evaluator

Usage:
  rebo run file.rebo...   evaluate script files (concurrently when several)
  rebo eval "code"        evaluate a code string
  rebo repl               interactive session (default with no arguments)
  rebo version            print the version

Options:
  -trace                  log each expression step and call
Aliases: r=run i=repl e=eval v=version`)
}
