// Package resolver implements Gekko's static pre-pass: a depth-first walk
// of the AST that computes, for every variable-access expression, the
// lexical distance to its defining scope, and diagnoses a family of
// semantic errors (unused locals, unreachable code, misplaced break/
// return/this/super, self-inheriting classes, redeclared locals).
//
// Resolution is best-effort: it keeps going after an error so later
// issues still surface, and leaves the evaluator's behavior untouched --
// the evaluator only ever consults the Locals map, never HadErrors.
package resolver

import (
	"github.com/dimetcm/gekko/internal/ast"
	"github.com/dimetcm/gekko/internal/gkerrors"
	"github.com/dimetcm/gekko/internal/token"
)

type functionType int

const (
	noFunction functionType = iota
	inFunction
	inConstructor
)

type classType int

const (
	noClass classType = iota
	inClass
	inSubclass
)

type variableState int

const (
	declared variableState = iota
	defined
)

// scope maps a local name to its declared/defined state, plus the set of
// names not yet read (used for the unused-local diagnostic).
type scope struct {
	vars   map[string]variableState
	unused map[string]token.Token
}

func newScope() *scope {
	return &scope{vars: map[string]variableState{}, unused: map[string]token.Token{}}
}

// Resolver walks a parsed program and records the result in Locals.
type Resolver struct {
	reporter *gkerrors.Reporter

	scopes []*scope

	// Locals maps the pointer identity of a Variable/Assignment/This/Super
	// expression to its scope distance. Absent entries are globals.
	Locals map[ast.Expr]int

	currentFunction    functionType
	currentClass       classType
	insideLoop         bool
	insideStaticMethod bool

	// breakEncountered/returnEncountered hold the token of the most recent
	// break/return seen in the statement sequence currently being resolved,
	// used to flag unreachable code in the next sibling statement.
	breakEncountered  *token.Token
	returnEncountered *token.Token

	hadErrors bool
}

// New constructs a Resolver reporting diagnostics to reporter.
func New(reporter *gkerrors.Reporter) *Resolver {
	return &Resolver{reporter: reporter, Locals: map[ast.Expr]int{}}
}

// Resolve walks stmts and returns whether any semantic error was found.
func (r *Resolver) Resolve(stmts []ast.Stmt) bool {
	r.resolveStmts(stmts)
	return r.hadErrors
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	if r.breakEncountered != nil {
		r.hadErrors = true
		r.reportAt(*r.breakEncountered, "Unreachable code after break.")
	} else if r.returnEncountered != nil {
		r.hadErrors = true
		r.reportAt(*r.returnEncountered, "Unreachable code after return.")
	}

	switch s := s.(type) {
	case *ast.ExpressionStmt:
		r.resolveExpr(s.Expr)
	case *ast.PrintStmt:
		r.resolveExpr(s.Expr)
	case *ast.VarDecl:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)
	case *ast.FunctionDecl:
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, inFunction, false)
	case *ast.ClassDecl:
		r.resolveClass(s)
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()
	case *ast.If:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		r.breakEncountered = nil
		r.returnEncountered = nil
		if s.Else != nil {
			r.resolveStmt(s.Else)
			r.breakEncountered = nil
			r.returnEncountered = nil
		}
	case *ast.While:
		r.resolveExpr(s.Cond)
		wasInsideLoop := r.insideLoop
		r.insideLoop = true
		r.resolveStmt(s.Body)
		r.breakEncountered = nil
		r.returnEncountered = nil
		r.insideLoop = wasInsideLoop
	case *ast.Break:
		if !r.insideLoop {
			r.hadErrors = true
			r.reportAt(s.Keyword, "Break encountered outside of a cycle.")
		}
		kw := s.Keyword
		r.breakEncountered = &kw
	case *ast.Return:
		if r.currentFunction == noFunction {
			r.hadErrors = true
			r.reportAt(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == inConstructor {
				r.hadErrors = true
				r.reportAt(s.Keyword, "Can't return a value from a constructor.")
			}
			r.resolveExpr(s.Value)
		}
		kw := s.Keyword
		r.returnEncountered = &kw
	}
}

func (r *Resolver) resolveClass(decl *ast.ClassDecl) {
	enclosingClass := r.currentClass
	r.currentClass = inClass

	r.declare(decl.Name)
	r.define(decl.Name)

	if decl.Superclass != nil {
		if decl.Superclass.Name.Lexeme == decl.Name.Lexeme {
			r.hadErrors = true
			r.reportAt(decl.Superclass.Name, "A class can't inherit from itself.")
		}
		r.resolveExpr(decl.Superclass)
		r.currentClass = inSubclass

		r.beginScope()
		r.scopes[len(r.scopes)-1].vars["super"] = defined
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1].vars["this"] = defined

	for _, method := range decl.Methods {
		ft := inFunction
		if method.Name.Lexeme == decl.Name.Lexeme {
			ft = inConstructor
		}
		r.resolveFunction(method, ft, method.Kind == ast.StaticMethod)
	}

	r.endScope()

	if decl.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(decl *ast.FunctionDecl, ft functionType, isStaticMethod bool) {
	enclosingFunction := r.currentFunction
	enclosingStaticMethod := r.insideStaticMethod
	r.currentFunction = ft
	r.insideStaticMethod = isStaticMethod

	r.beginScope()
	for _, p := range decl.Params {
		r.declare(p)
		r.define(p)
	}
	r.resolveStmts(decl.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
	r.insideStaticMethod = enclosingStaticMethod
}

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Unary:
		r.resolveExpr(e.Expr)
	case *ast.Binary:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.TernaryConditional:
		r.resolveExpr(e.Cond)
		r.resolveExpr(e.Then)
		r.resolveExpr(e.Else)
	case *ast.Grouping:
		r.resolveExpr(e.Expr)
	case *ast.Literal:
		// nothing to resolve
	case *ast.Variable:
		if len(r.scopes) > 0 {
			top := r.scopes[len(r.scopes)-1]
			if state, ok := top.vars[e.Name.Lexeme]; ok && state == declared {
				r.hadErrors = true
				r.reportAt(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)
	case *ast.Assignment:
		r.resolveExpr(e.Expr)
		r.resolveLocal(e, e.Name)
	case *ast.Logical:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.Call:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}
	case *ast.Lambda:
		r.resolveLambda(e)
	case *ast.Get:
		r.resolveExpr(e.Owner)
	case *ast.Set:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Owner)
	case *ast.This:
		if r.currentClass == noClass {
			r.hadErrors = true
			r.reportAt(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		if r.insideStaticMethod {
			r.hadErrors = true
			r.reportAt(e.Keyword, "Can't use 'this' inside a static method.")
			return
		}
		r.resolveLocal(e, e.Keyword)
	case *ast.Super:
		switch r.currentClass {
		case noClass:
			r.hadErrors = true
			r.reportAt(e.Keyword, "Can't use 'super' outside of a class.")
		case inClass:
			r.hadErrors = true
			r.reportAt(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, e.Keyword)
	}
}

func (r *Resolver) resolveLambda(l *ast.Lambda) {
	enclosingFunction := r.currentFunction
	r.currentFunction = inFunction

	r.beginScope()
	for _, p := range l.Params {
		r.declare(p)
		r.define(p)
	}
	r.resolveStmts(l.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, newScope())
}

func (r *Resolver) endScope() {
	r.breakEncountered = nil
	r.returnEncountered = nil

	top := r.scopes[len(r.scopes)-1]
	for _, tok := range top.unused {
		r.hadErrors = true
		r.reportAt(tok, "Unused variable.")
	}

	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	top := r.scopes[len(r.scopes)-1]
	if _, ok := top.vars[name.Lexeme]; ok {
		r.hadErrors = true
		r.reportAt(name, "Already a variable with this name in this scope.")
	}
	top.vars[name.Lexeme] = declared
	top.unused[name.Lexeme] = name
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1].vars[name.Lexeme] = defined
}

// resolveLocal records expr's scope distance keyed by its own identity,
// per the spec's guidance: two textually identical references at
// different positions must resolve independently, so the key must be the
// expression node itself, not its name.
func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i].vars[name.Lexeme]; ok {
			r.Locals[expr] = len(r.scopes) - 1 - i
			delete(r.scopes[i].unused, name.Lexeme)
			return
		}
	}
	// not found in any scope: treated as a global, no entry recorded.
}

func (r *Resolver) reportAt(tok token.Token, message string) {
	r.reporter.ErrorAtToken(tok, message)
}
