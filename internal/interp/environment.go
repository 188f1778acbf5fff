package interp

import (
	"io"

	"github.com/dolthub/swiss"

	"github.com/dimetcm/gekko/internal/gkerrors"
	"github.com/dimetcm/gekko/internal/token"
	"github.com/dimetcm/gekko/internal/value"
)

// initialFrameCapacity sizes a frame's backing table for the common case --
// a handful of locals or parameters -- without over-allocating for the
// many short-lived frames a deep call chain creates.
const initialFrameCapacity = 8

// Environment is a scope frame: a mutable name -> value map plus a link to
// its outer scope. Generalized from the teacher's case-insensitive
// ident.Map-backed environment into a plain, case-sensitive map (Gekko,
// unlike DWScript, is case-sensitive), and extended with distance-indexed
// lookup/assignment so the evaluator can honor the resolver's locals
// without a name search.
//
// Each frame also carries the two single-slot control-flow signals
// (§4.4.2): rather than unwinding via panic/recover for ordinary break and
// return, every block/loop/call site polls these flags after each
// sub-statement and propagates or absorbs them explicitly.
type Environment struct {
	values *swiss.Map[string, value.Value]
	outer  *Environment

	out io.Writer

	breakRequested  bool
	returnRequested bool
	returnValue     value.Value
}

// NewGlobalEnvironment creates the root environment of an interpreter
// session, writing `print` output to out.
func NewGlobalEnvironment(out io.Writer) *Environment {
	return &Environment{values: swiss.NewMap[string, value.Value](initialFrameCapacity), out: out}
}

// NewEnclosedEnvironment creates a child frame of outer, inheriting its
// output sink.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{values: swiss.NewMap[string, value.Value](initialFrameCapacity), outer: outer, out: outer.out}
}

// Output returns the stream `print` writes to.
func (e *Environment) Output() io.Writer { return e.out }

// Outer returns the enclosing environment, or nil at the global frame.
func (e *Environment) Outer() *Environment { return e.outer }

// Define binds name in this frame, shadowing any outer binding.
func (e *Environment) Define(name string, v value.Value) {
	e.values.Put(name, v)
}

// GetValue looks up name by walking the chain outward, as the resolver's
// "absent from locals map" fallback for globals.
func (e *Environment) GetValue(name token.Token) (value.Value, error) {
	for env := e; env != nil; env = env.outer {
		if v, ok := env.values.Get(name.Lexeme); ok {
			return v, nil
		}
	}
	return nil, gkerrors.NewRuntimeError(name, "Undefined variable '%s'.", name.Lexeme)
}

// Assign walks the chain outward for the innermost binding of name and
// overwrites it.
func (e *Environment) Assign(name token.Token, v value.Value) error {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.values.Get(name.Lexeme); ok {
			env.values.Put(name.Lexeme, v)
			return nil
		}
	}
	return gkerrors.NewRuntimeError(name, "Undefined variable '%s'.", name.Lexeme)
}

// ancestor skips exactly distance outer links, without any name search.
func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.outer
	}
	return env
}

// GetAt reads name at exactly distance outer links from e -- the
// evaluator's path for a resolved local.
func (e *Environment) GetAt(distance int, name string) value.Value {
	v, _ := e.ancestor(distance).values.Get(name)
	return v
}

// AssignAt overwrites name at exactly distance outer links from e.
func (e *Environment) AssignAt(distance int, name string, v value.Value) {
	e.ancestor(distance).values.Put(name, v)
}

// rawValue is the escape hatch callables.go needs to read "this" straight
// out of a closure frame, used only for constructor return (§4.4.3).
func (e *Environment) rawValue(name string) value.Value {
	v, _ := e.values.Get(name)
	return v
}

// RequestBreak sets the break signal. The caller (resolver-verified to be
// inside a loop) is the only one that should ever call this.
func (e *Environment) RequestBreak() { e.breakRequested = true }

// ClearBreak absorbs the break signal, as a `while` does after one
// iteration.
func (e *Environment) ClearBreak() { e.breakRequested = false }

// BreakRequested reports whether a break is pending.
func (e *Environment) BreakRequested() bool { return e.breakRequested }

// RequestReturn sets the return signal and its value.
func (e *Environment) RequestReturn(v value.Value) {
	e.returnRequested = true
	e.returnValue = v
}

// ClearReturn absorbs the return signal, as a function call does once it
// has consumed ReturnValue.
func (e *Environment) ClearReturn() {
	e.returnRequested = false
	e.returnValue = nil
}

// ReturnRequested reports whether a return is pending.
func (e *Environment) ReturnRequested() bool { return e.returnRequested }

// ReturnValue is the value attached to a pending return.
func (e *Environment) ReturnValue() value.Value { return e.returnValue }

// propagateSignalsFrom copies a child frame's pending break/return onto e,
// the mechanism Block/While use to bubble a signal out to the environment
// that can act on it (a loop for break, a call frame for return).
func (e *Environment) propagateSignalsFrom(child *Environment) {
	if child.breakRequested {
		e.breakRequested = true
	}
	if child.returnRequested {
		e.returnRequested = true
		e.returnValue = child.returnValue
	}
}
