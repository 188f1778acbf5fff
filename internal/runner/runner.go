// Package runner wires scanner, parser, resolver and evaluator into the
// single external entry point the CLI (and any other embedder) uses:
// "given source text and an output sink, run the program".
package runner

import (
	"io"

	"github.com/dimetcm/gekko/internal/gkerrors"
	"github.com/dimetcm/gekko/internal/interp"
	"github.com/dimetcm/gekko/internal/parser"
	"github.com/dimetcm/gekko/internal/resolver"
	"github.com/dimetcm/gekko/internal/scanner"
)

// Session wraps the persistent state a REPL needs across lines: a single
// global environment, so a variable defined on one line is visible on the
// next, and a monotonically increasing line counter so diagnostics don't
// reset to 1 every time Run is called again.
type Session struct {
	interp   *interp.Interpreter
	nextLine int
}

// NewSession creates a fresh interpreter session writing `print` output
// to out.
func NewSession(out io.Writer) *Session {
	global := interp.NewGlobalEnvironment(out)
	return &Session{interp: interp.New(global), nextLine: 1}
}

// NewVerboseSession is NewSession plus --verbose instance-construction
// tracing, written to traceOut.
func NewVerboseSession(out, traceOut io.Writer) *Session {
	global := interp.NewGlobalEnvironment(out)
	return &Session{interp: interp.New(global, interp.WithTracing(traceOut)), nextLine: 1}
}

// Run scans, parses, resolves and (if resolution found no errors)
// evaluates source, reporting diagnostics to errStream. It returns true
// when no error was reported at any stage -- the contract the CLI uses to
// decide whether the session continues cleanly.
func (s *Session) Run(source string, errStream io.Writer) bool {
	reporter := gkerrors.NewReporter(errStream)

	sc := scanner.New(source, scanner.WithStartLine(s.nextLine))
	tokens, scanErrs := sc.Scan()
	for _, e := range scanErrs {
		reporter.Error(e.Line, e.Message)
	}
	if len(tokens) > 0 {
		s.nextLine = tokens[len(tokens)-1].Line + 1
	}

	p := parser.New(tokens, reporter)
	stmts := p.Parse()
	if reporter.HadError() {
		return false
	}

	res := resolver.New(reporter)
	if res.Resolve(stmts) {
		return false
	}

	if err := s.interp.Interpret(stmts, res.Locals); err != nil {
		if rerr, ok := err.(*gkerrors.RuntimeError); ok {
			reporter.RuntimeErrorReported(rerr)
		} else {
			reporter.Error(0, err.Error())
		}
		return false
	}
	return true
}

// Run is the one-shot form used to execute a whole file: a fresh session,
// one Run call.
func Run(source string, out, errStream io.Writer) bool {
	return NewSession(out).Run(source, errStream)
}

// RunVerbose is Run plus --verbose instance-construction tracing, written
// to errStream alongside diagnostics.
func RunVerbose(source string, out, errStream io.Writer) bool {
	return NewVerboseSession(out, errStream).Run(source, errStream)
}
