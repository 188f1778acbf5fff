// Package interp is the tree-walking evaluator: it executes a resolved
// AST against a lexically scoped environment chain, using the resolver's
// distance map to look up locals without any runtime name search, and
// reserves only a flat name search for variables the resolver left
// unresolved (globals).
package interp

import (
	"fmt"
	"io"
	"time"

	"github.com/dimetcm/gekko/internal/ast"
	"github.com/dimetcm/gekko/internal/gkerrors"
	"github.com/dimetcm/gekko/internal/style"
	"github.com/dimetcm/gekko/internal/token"
	"github.com/dimetcm/gekko/internal/value"
)

// Interpreter owns the global environment and the resolver's distance
// map for one run (a whole script, or -- in the REPL -- every line
// submitted so far, since the global environment persists across them).
type Interpreter struct {
	Global *Environment

	// locals is the resolver's output: expression identity -> distance.
	locals map[ast.Expr]int

	startedAt time.Time

	traceOut io.Writer // nil when tracing is off
}

// Option configures an Interpreter at construction time.
type Option func(*Interpreter)

// WithTracing turns on --verbose instance-construction tracing, writing
// one styled line per `Class(...)` call to out.
func WithTracing(out io.Writer) Option {
	return func(i *Interpreter) { i.traceOut = out }
}

// New constructs an Interpreter bound to global, with clock() measuring
// wall-clock time since this call. Safe to reuse across many Interpret
// calls -- a REPL session constructs one Interpreter and feeds it each
// resolved line in turn, so clock() and the global environment persist
// for the life of the session.
func New(global *Environment, opts ...Option) *Interpreter {
	i := &Interpreter{Global: global, startedAt: time.Now()}
	for _, opt := range opts {
		opt(i)
	}
	i.defineNatives()
	return i
}

// trace emits a styled diagnostic line when tracing is enabled; a no-op
// otherwise, so call sites never need to guard on traceOut themselves.
func (i *Interpreter) trace(format string, args ...any) {
	if i.traceOut == nil {
		return
	}
	fmt.Fprintln(i.traceOut, style.Render(style.Trace, fmt.Sprintf(format, args...)))
}

// defineNatives seeds the global environment with the language's sole
// native function. A FunctionRegistry in the spec's sense of "owning
// storage that outlives every Value referencing it" is, in Go, simply
// the heap plus the garbage collector: NativeFunction/Function/Lambda
// values are ordinary pointers and the runtime keeps them alive for as
// long as any Value refers to them, with no arena or manual delete
// required.
func (i *Interpreter) defineNatives() {
	i.Global.Define("clock", &NativeFunction{
		name:  "clock",
		arity: 0,
		fn: func(args []value.Value) (value.Value, error) {
			return value.Number(time.Since(i.startedAt).Seconds()), nil
		},
	})
}

// Interpret runs stmts against the global environment in order, using
// locals (the resolver's distance map for these statements, merged into
// the maps of earlier calls so functions declared by an earlier call keep
// their distances) to resolve non-global variable references. It returns
// the first runtime error encountered (the spec's "no recovery; abort the
// Interpret call"); the caller is responsible for formatting it to the
// [line N]: MSG wire form.
func (i *Interpreter) Interpret(stmts []ast.Stmt, locals map[ast.Expr]int) error {
	if i.locals == nil {
		i.locals = make(map[ast.Expr]int, len(locals))
	}
	for e, d := range locals {
		i.locals[e] = d
	}
	for _, s := range stmts {
		if err := i.execStmt(s, i.Global); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execBlock(stmts []ast.Stmt, env *Environment) error {
	for _, s := range stmts {
		if err := i.execStmt(s, env); err != nil {
			return err
		}
		if env.BreakRequested() || env.ReturnRequested() {
			return nil
		}
	}
	return nil
}

func (i *Interpreter) execStmt(s ast.Stmt, env *Environment) error {
	switch s := s.(type) {
	case *ast.ExpressionStmt:
		_, err := i.evalExpr(s.Expr, env)
		return err

	case *ast.PrintStmt:
		v, err := i.evalExpr(s.Expr, env)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Output(), value.Stringify(v))
		return nil

	case *ast.VarDecl:
		var v value.Value = value.Nil{}
		if s.Initializer != nil {
			val, err := i.evalExpr(s.Initializer, env)
			if err != nil {
				return err
			}
			v = val
		}
		env.Define(s.Name.Lexeme, v)
		return nil

	case *ast.FunctionDecl:
		env.Define(s.Name.Lexeme, newFunction(s, env, false, i))
		return nil

	case *ast.ClassDecl:
		return i.execClassDecl(s, env)

	case *ast.Block:
		child := NewEnclosedEnvironment(env)
		err := i.execBlock(s.Stmts, child)
		env.propagateSignalsFrom(child)
		return err

	case *ast.If:
		cond, err := i.evalExpr(s.Cond, env)
		if err != nil {
			return err
		}
		if value.IsTruthy(cond) {
			return i.execStmt(s.Then, env)
		} else if s.Else != nil {
			return i.execStmt(s.Else, env)
		}
		return nil

	case *ast.While:
		for {
			cond, err := i.evalExpr(s.Cond, env)
			if err != nil {
				return err
			}
			if !value.IsTruthy(cond) {
				return nil
			}
			if err := i.execStmt(s.Body, env); err != nil {
				return err
			}
			if env.BreakRequested() {
				env.ClearBreak()
				return nil
			}
			if env.ReturnRequested() {
				return nil
			}
		}

	case *ast.Break:
		env.RequestBreak()
		return nil

	case *ast.Return:
		var v value.Value = value.Nil{}
		if s.Value != nil {
			val, err := i.evalExpr(s.Value, env)
			if err != nil {
				return err
			}
			v = val
		}
		env.RequestReturn(v)
		return nil
	}
	panic(fmt.Sprintf("interp: unhandled statement %T", s))
}

func (i *Interpreter) execClassDecl(s *ast.ClassDecl, env *Environment) error {
	var superclass *value.Class
	if s.Superclass != nil {
		v, err := i.evalExpr(s.Superclass, env)
		if err != nil {
			return err
		}
		sc, ok := v.(*value.Class)
		if !ok {
			return gkerrors.NewRuntimeError(s.Superclass.Name, "Superclass must be a class.")
		}
		superclass = sc
	}

	methodEnv := env
	if superclass != nil {
		methodEnv = NewEnclosedEnvironment(env)
		methodEnv.Define("super", superclass)
	}

	methods := map[string]value.Callable{}
	staticMethods := map[string]value.Callable{}
	getters := map[string]value.Callable{}
	for _, m := range s.Methods {
		isInitializer := m.Name.Lexeme == s.Name.Lexeme
		fn := newFunction(m, methodEnv, isInitializer, i)
		switch m.Kind {
		case ast.StaticMethod:
			staticMethods[m.Name.Lexeme] = fn
		case ast.Getter:
			getters[m.Name.Lexeme] = fn
		default:
			methods[m.Name.Lexeme] = fn
		}
	}

	class := &value.Class{
		Name:          s.Name.Lexeme,
		Superclass:    superclass,
		Methods:       methods,
		StaticMethods: staticMethods,
		Getters:       getters,
	}
	env.Define(s.Name.Lexeme, class)
	return nil
}

func (i *Interpreter) evalExpr(e ast.Expr, env *Environment) (value.Value, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return e.Value, nil

	case *ast.Grouping:
		return i.evalExpr(e.Expr, env)

	case *ast.Unary:
		return i.evalUnary(e, env)

	case *ast.Binary:
		return i.evalBinary(e, env)

	case *ast.TernaryConditional:
		cond, err := i.evalExpr(e.Cond, env)
		if err != nil {
			return nil, err
		}
		if value.IsTruthy(cond) {
			return i.evalExpr(e.Then, env)
		}
		return i.evalExpr(e.Else, env)

	case *ast.Logical:
		left, err := i.evalExpr(e.Left, env)
		if err != nil {
			return nil, err
		}
		if e.Op.Type == token.Or {
			if value.IsTruthy(left) {
				return left, nil
			}
		} else {
			if !value.IsTruthy(left) {
				return left, nil
			}
		}
		return i.evalExpr(e.Right, env)

	case *ast.Variable:
		return i.lookUpVariable(e.Name, e, env)

	case *ast.Assignment:
		v, err := i.evalExpr(e.Expr, env)
		if err != nil {
			return nil, err
		}
		if dist, ok := i.locals[e]; ok {
			env.AssignAt(dist, e.Name.Lexeme, v)
		} else if err := i.Global.Assign(e.Name, v); err != nil {
			return nil, err
		}
		return v, nil

	case *ast.Call:
		return i.evalCall(e, env)

	case *ast.Get:
		return i.evalGet(e, env)

	case *ast.Set:
		ownerVal, err := i.evalExpr(e.Owner, env)
		if err != nil {
			return nil, err
		}
		inst, ok := ownerVal.(*value.Instance)
		if !ok {
			return nil, gkerrors.NewRuntimeError(e.Name, "Only instances have properties.")
		}
		v, err := i.evalExpr(e.Value, env)
		if err != nil {
			return nil, err
		}
		inst.Set(e.Name.Lexeme, v)
		return v, nil

	case *ast.Lambda:
		return newLambda(e, env, i), nil

	case *ast.This:
		return i.lookUpVariable(e.Keyword, e, env)

	case *ast.Super:
		return i.evalSuper(e, env)
	}
	panic(fmt.Sprintf("interp: unhandled expression %T", e))
}

func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expr, env *Environment) (value.Value, error) {
	if dist, ok := i.locals[expr]; ok {
		return env.GetAt(dist, name.Lexeme), nil
	}
	return i.Global.GetValue(name)
}

func (i *Interpreter) evalUnary(e *ast.Unary, env *Environment) (value.Value, error) {
	v, err := i.evalExpr(e.Expr, env)
	if err != nil {
		return nil, err
	}
	switch e.Op.Type {
	case token.Bang:
		return value.Boolean(!value.IsTruthy(v)), nil
	case token.Minus:
		n, ok := v.(value.Number)
		if !ok {
			return nil, gkerrors.NewRuntimeError(e.Op, "Operand must be a number.")
		}
		return -n, nil
	case token.Plus:
		n, ok := v.(value.Number)
		if !ok {
			return nil, gkerrors.NewRuntimeError(e.Op, "Operand must be a number.")
		}
		return n, nil
	}
	panic("interp: unhandled unary operator")
}

func (i *Interpreter) evalBinary(e *ast.Binary, env *Environment) (value.Value, error) {
	left, err := i.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}

	// The comma operator discards the left result and never touches the
	// right operand's type at all, so it short-circuits before the
	// arithmetic/comparison/equality handling below.
	if e.Op.Type == token.Comma {
		return i.evalExpr(e.Right, env)
	}

	right, err := i.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Op.Type {
	case token.Plus:
		if ln, ok := left.(value.Number); ok {
			rn, ok := right.(value.Number)
			if !ok {
				return nil, gkerrors.NewRuntimeError(e.Op, "Operand must be a number.")
			}
			return ln + rn, nil
		}
		if ls, ok := left.(value.String); ok {
			rs, ok := right.(value.String)
			if !ok {
				return nil, gkerrors.NewRuntimeError(e.Op, "Expecting string as right hand operand.")
			}
			return ls + rs, nil
		}
		return nil, gkerrors.NewRuntimeError(e.Op, "Operand must be a number.")

	case token.Minus:
		ln, rn, err := numberOperands(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return ln - rn, nil

	case token.Star:
		ln, rn, err := numberOperands(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return ln * rn, nil

	case token.Slash:
		ln, rn, err := numberOperands(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		if rn == 0 {
			return nil, gkerrors.NewRuntimeError(e.Op, "Division by zero.")
		}
		return ln / rn, nil

	case token.Greater:
		ln, rn, err := numberOperands(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return value.Boolean(ln > rn), nil
	case token.GreaterEqual:
		ln, rn, err := numberOperands(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return value.Boolean(ln >= rn), nil
	case token.Less:
		ln, rn, err := numberOperands(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return value.Boolean(ln < rn), nil
	case token.LessEqual:
		ln, rn, err := numberOperands(e.Op, left, right)
		if err != nil {
			return nil, err
		}
		return value.Boolean(ln <= rn), nil

	case token.EqualEqual:
		eq, comparable := value.Equal(left, right)
		if !comparable {
			return nil, gkerrors.NewRuntimeError(e.Op, "Expecting %s as right hand operand.", left.Type())
		}
		return value.Boolean(eq), nil
	case token.BangEqual:
		eq, comparable := value.Equal(left, right)
		if !comparable {
			return nil, gkerrors.NewRuntimeError(e.Op, "Expecting %s as right hand operand.", left.Type())
		}
		return value.Boolean(!eq), nil
	}
	panic("interp: unhandled binary operator")
}

func numberOperands(op token.Token, left, right value.Value) (value.Number, value.Number, error) {
	ln, ok := left.(value.Number)
	if !ok {
		return 0, 0, gkerrors.NewRuntimeError(op, "Operand must be a number.")
	}
	rn, ok := right.(value.Number)
	if !ok {
		return 0, 0, gkerrors.NewRuntimeError(op, "Operand must be a number.")
	}
	return ln, rn, nil
}

func (i *Interpreter) evalCall(e *ast.Call, env *Environment) (value.Value, error) {
	callee, err := i.evalExpr(e.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]value.Value, len(e.Args))
	for idx, a := range e.Args {
		v, err := i.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}

	switch callee := callee.(type) {
	case *value.Class:
		instance := value.NewInstance(callee)
		i.trace("instance %s of %s constructed", instance.ID(), callee.Name)
		if ctor, ok := callee.FindMethod(callee.Name); ok {
			bound := ctor.(*Function).bind(instance)
			if len(args) != bound.Arity() {
				return nil, gkerrors.NewRuntimeError(e.Paren, "Expected %d arguments, but got %d.", bound.Arity(), len(args))
			}
			if _, err := bound.Call(args); err != nil {
				return nil, err
			}
		} else if len(args) != 0 {
			return nil, gkerrors.NewRuntimeError(e.Paren, "Expected %d arguments, but got %d.", 0, len(args))
		}
		return instance, nil

	case value.Callable:
		if len(args) != callee.Arity() {
			return nil, gkerrors.NewRuntimeError(e.Paren, "Expected %d arguments, but got %d.", callee.Arity(), len(args))
		}
		return callee.Call(args)

	default:
		return nil, gkerrors.NewRuntimeError(e.Paren, "Can only call functions and classes.")
	}
}

func (i *Interpreter) evalGet(e *ast.Get, env *Environment) (value.Value, error) {
	ownerVal, err := i.evalExpr(e.Owner, env)
	if err != nil {
		return nil, err
	}

	switch owner := ownerVal.(type) {
	case *value.Instance:
		if v, ok := owner.Get(e.Name.Lexeme); ok {
			return v, nil
		}
		if getter, ok := owner.Class.FindGetter(e.Name.Lexeme); ok {
			return getter.(*Function).bind(owner).Call(nil)
		}
		if method, ok := owner.Class.FindMethod(e.Name.Lexeme); ok {
			return method.(*Function).bind(owner), nil
		}
		return nil, gkerrors.NewRuntimeError(e.Name, "Undefined property '%s'.", e.Name.Lexeme)

	case *value.Class:
		if m, ok := owner.FindStaticMethod(e.Name.Lexeme); ok {
			return m, nil
		}
		return nil, gkerrors.NewRuntimeError(e.Name, "Undefined property '%s'.", e.Name.Lexeme)

	default:
		return nil, gkerrors.NewRuntimeError(e.Name, "Only instances have properties.")
	}
}

func (i *Interpreter) evalSuper(e *ast.Super, env *Environment) (value.Value, error) {
	dist, ok := i.locals[e]
	if !ok {
		// The resolver guarantees `super` only resolves inside a subclass
		// method body, so an unresolved distance here means a bug upstream
		// rather than a user-facing condition.
		return nil, gkerrors.NewRuntimeError(e.Keyword, "Can't use 'super' outside of a class.")
	}
	superclass := env.GetAt(dist, "super").(*value.Class)
	instance := env.GetAt(dist-1, "this").(*value.Instance)

	method, ok := superclass.FindMethod(e.Method.Lexeme)
	if !ok {
		return nil, gkerrors.NewRuntimeError(e.Method, "Undefined property '%s'.", e.Method.Lexeme)
	}
	return method.(*Function).bind(instance), nil
}
