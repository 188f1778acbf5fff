package interp

import (
	"fmt"

	"github.com/dimetcm/gekko/internal/ast"
	"github.com/dimetcm/gekko/internal/value"
)

// Function is a user-defined function, method or getter: a declaration
// paired with the environment captured at its declaration site (lexical
// closure, per the spec's Design Notes -- callables hold the class-free
// declaration environment, never a back-reference to the class value).
type Function struct {
	declaration   *ast.FunctionDecl
	closure       *Environment
	isInitializer bool
	interp        *Interpreter
}

// newFunction wraps decl, capturing closure as its lexical environment.
// isInitializer marks a class method whose name equals its class's name:
// such a call always yields the bound instance, never its body's return
// value (the resolver already rejects `return <value>;` inside one).
func newFunction(decl *ast.FunctionDecl, closure *Environment, isInitializer bool, interp *Interpreter) *Function {
	return &Function{declaration: decl, closure: closure, isInitializer: isInitializer, interp: interp}
}

func (*Function) Type() string     { return "callable" }
func (f *Function) String() string { return f.Display() }

// Display renders the callable the way the source prints functions, used
// both by String() and whenever a script prints a bare function value.
func (f *Function) Display() string {
	return fmt.Sprintf("<fn %s>", f.declaration.Name.Lexeme)
}

// Arity is the declared parameter count.
func (f *Function) Arity() int { return len(f.declaration.Params) }

// Call executes the function body in a fresh frame enclosed by the
// closure, per §4.4.2/§4.4.3: a return signal is consumed at this
// boundary; falling off the end yields Nil (or, for a constructor, the
// bound instance).
func (f *Function) Call(args []value.Value) (value.Value, error) {
	env := NewEnclosedEnvironment(f.closure)
	for i, param := range f.declaration.Params {
		env.Define(param.Lexeme, args[i])
	}

	if err := f.interp.execBlock(f.declaration.Body, env); err != nil {
		return nil, err
	}

	if f.isInitializer {
		return f.closure.rawValue("this"), nil
	}

	if env.ReturnRequested() {
		v := env.ReturnValue()
		env.ClearReturn()
		return v, nil
	}
	return value.Nil{}, nil
}

// bind produces a new Function whose closure adds one extra layer
// defining `this` (and, for a subclass method, a further `super` layer
// just outside it, already present in f.closure when f was built from a
// subclass's method list). Binding is a pure constructor: it never
// mutates the underlying method, so the same declaration can be bound to
// many instances independently.
func (f *Function) bind(instance *value.Instance) *Function {
	env := NewEnclosedEnvironment(f.closure)
	env.Define("this", instance)
	return newFunction(f.declaration, env, f.isInitializer, f.interp)
}

// Lambda is an anonymous function expression; identical machinery to
// Function but printed differently and never an initializer.
type Lambda struct {
	declaration *ast.Lambda
	closure     *Environment
	interp      *Interpreter
}

func newLambda(decl *ast.Lambda, closure *Environment, interp *Interpreter) *Lambda {
	return &Lambda{declaration: decl, closure: closure, interp: interp}
}

func (*Lambda) Type() string     { return "callable" }
func (l *Lambda) String() string { return l.Display() }
func (*Lambda) Display() string  { return "<lambda>" }
func (l *Lambda) Arity() int     { return len(l.declaration.Params) }

func (l *Lambda) Call(args []value.Value) (value.Value, error) {
	env := NewEnclosedEnvironment(l.closure)
	for i, param := range l.declaration.Params {
		env.Define(param.Lexeme, args[i])
	}
	if err := l.interp.execBlock(l.declaration.Body, env); err != nil {
		return nil, err
	}
	if env.ReturnRequested() {
		v := env.ReturnValue()
		env.ClearReturn()
		return v, nil
	}
	return value.Nil{}, nil
}

// NativeFunction wraps a host-implemented callable, e.g. clock.
type NativeFunction struct {
	name  string
	arity int
	fn    func(args []value.Value) (value.Value, error)
}

func (*NativeFunction) Type() string     { return "callable" }
func (n *NativeFunction) String() string { return n.Display() }
func (n *NativeFunction) Display() string {
	return fmt.Sprintf("<native %s fn>", n.name)
}
func (n *NativeFunction) Arity() int { return n.arity }
func (n *NativeFunction) Call(args []value.Value) (value.Value, error) {
	return n.fn(args)
}
