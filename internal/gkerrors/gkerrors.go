// Package gkerrors formats the diagnostics produced by every stage of the
// pipeline. It is a deliberately narrowed cousin of the teacher's
// CompilerError/FormatErrors machinery: that formatter renders a
// caret-annotated source excerpt per error, but Gekko's external wire
// contract (§6 of the spec this module implements) is the flat
// `[line N] Error ...: MSG` / `[line N]: MSG` form, so the richer
// multi-line rendering has no caller here.
package gkerrors

import (
	"fmt"
	"io"

	"github.com/dimetcm/gekko/internal/token"
)

// RuntimeError is raised by the evaluator. It carries the offending token
// so the driver can report the line without threading position state
// through every evaluation call.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d]: %s", e.Token.Line, e.Message)
}

// NewRuntimeError constructs a RuntimeError bound to tok.
func NewRuntimeError(tok token.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

// Reporter accumulates scanner/parser/resolver diagnostics and writes them
// immediately to an io.Writer (normally stderr), matching the source's
// "report and continue" behavior at every stage but the evaluator.
type Reporter struct {
	out      io.Writer
	hadError bool
}

// NewReporter wraps w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{out: w}
}

// Error reports a line-only diagnostic (scanner errors, and any stage that
// has no specific token to anchor to).
func (r *Reporter) Error(line int, message string) {
	r.report(line, "", message)
}

// ErrorAtToken reports a diagnostic anchored to tok, using the parser's
// " at 'LEX'" / " at end" convention.
func (r *Reporter) ErrorAtToken(tok token.Token, message string) {
	if tok.Type == token.EOF {
		r.report(tok.Line, " at end", message)
		return
	}
	r.report(tok.Line, fmt.Sprintf(" at '%s'", tok.Lexeme), message)
}

func (r *Reporter) report(line int, where, message string) {
	fmt.Fprintf(r.out, "[line %d] Error%s: %s\n", line, where, message)
	r.hadError = true
}

// HadError reports whether any diagnostic has been reported so far.
func (r *Reporter) HadError() bool { return r.hadError }

// RuntimeErrorReported writes a runtime error in its distinct format and
// marks the reporter as having seen an error.
func (r *Reporter) RuntimeErrorReported(err *RuntimeError) {
	fmt.Fprintln(r.out, err.Error())
	r.hadError = true
}
