package resolver

import (
	"bytes"
	"testing"

	"github.com/dimetcm/gekko/internal/ast"
	"github.com/dimetcm/gekko/internal/gkerrors"
	"github.com/dimetcm/gekko/internal/parser"
	"github.com/dimetcm/gekko/internal/scanner"
)

func resolve(t *testing.T, source string) ([]ast.Stmt, *Resolver, string) {
	t.Helper()
	tokens, scanErrs := scanner.New(source).Scan()
	if len(scanErrs) != 0 {
		t.Fatalf("unexpected scan errors: %v", scanErrs)
	}
	var buf bytes.Buffer
	reporter := gkerrors.NewReporter(&buf)
	stmts := parser.New(tokens, reporter).Parse()
	if reporter.HadError() {
		t.Fatalf("unexpected parse errors: %s", buf.String())
	}
	r := New(reporter)
	r.Resolve(stmts)
	return stmts, r, buf.String()
}

func TestResolveLocalDistances(t *testing.T) {
	stmts, r, errs := resolve(t, `
		var a = "global";
		{
			var b = "outer";
			{
				var c = "inner";
				print a;
				print b;
				print c;
			}
		}
	`)
	if errs != "" {
		t.Fatalf("unexpected resolver errors: %s", errs)
	}
	outerBlock := stmts[1].(*ast.Block)
	innerBlock := outerBlock.Stmts[1].(*ast.Block)
	prints := innerBlock.Stmts[1:]

	// "a" is a top-level global, never pushed onto any scope, so it must
	// NOT appear in Locals at all -- the evaluator treats an absent entry
	// as "look it up in the global environment".
	aVar := prints[0].(*ast.PrintStmt).Expr.(*ast.Variable)
	if _, ok := r.Locals[aVar]; ok {
		t.Fatalf("expected global variable %q to have no recorded distance", aVar.Name.Lexeme)
	}

	wantDistance := []int{1, 0}
	for i, s := range prints[1:] {
		v := s.(*ast.PrintStmt).Expr.(*ast.Variable)
		dist, ok := r.Locals[v]
		if !ok {
			t.Fatalf("print %d (%s): expected a recorded local distance, got none (global)", i, v.Name.Lexeme)
		}
		if dist != wantDistance[i] {
			t.Fatalf("print %d (%s): expected distance %d, got %d", i, v.Name.Lexeme, wantDistance[i], dist)
		}
	}
}

func TestSameNameDifferentSiteResolvesIndependently(t *testing.T) {
	stmts, r, errs := resolve(t, `
		var a = "global";
		{
			print a;
			var a = "shadow";
			print a;
		}
	`)
	if errs != "" {
		t.Fatalf("unexpected resolver errors: %s", errs)
	}
	// Two distinct *ast.Variable nodes referring to the same name "a" but
	// resolving to different scopes must not collide: the map is keyed by
	// expression identity, not name.
	if len(r.Locals) < 1 {
		t.Fatalf("expected at least one recorded local, got %d", len(r.Locals))
	}
	block := stmts[1].(*ast.Block)
	first := block.Stmts[0].(*ast.PrintStmt).Expr.(*ast.Variable)
	second := block.Stmts[2].(*ast.PrintStmt).Expr.(*ast.Variable)
	if _, ok := r.Locals[first]; ok {
		t.Fatalf("expected the reference before the shadowing declaration to stay global")
	}
	if dist, ok := r.Locals[second]; !ok || dist != 0 {
		t.Fatalf("expected the reference after the shadowing declaration at distance 0, got %d (recorded: %v)", dist, ok)
	}
}

func TestUnusedLocalIsReported(t *testing.T) {
	_, _, errs := resolve(t, `{ var unused = 1; }`)
	if errs == "" {
		t.Fatalf("expected an unused-variable diagnostic")
	}
}

func TestRedeclarationInSameScopeIsReported(t *testing.T) {
	_, _, errs := resolve(t, `{ var a = 1; var a = 2; print a; }`)
	if errs == "" {
		t.Fatalf("expected a redeclaration diagnostic")
	}
}

func TestSelfReferenceInInitializerIsReported(t *testing.T) {
	_, _, errs := resolve(t, `{ var a = a; }`)
	if errs == "" {
		t.Fatalf("expected a self-reference-in-initializer diagnostic")
	}
}

func TestUnreachableCodeAfterReturnIsReported(t *testing.T) {
	_, _, errs := resolve(t, `fun f() { return 1; print "dead"; }`)
	if errs == "" {
		t.Fatalf("expected an unreachable-code diagnostic")
	}
}

func TestBreakOutsideLoopIsReported(t *testing.T) {
	_, _, errs := resolve(t, `break;`)
	if errs == "" {
		t.Fatalf("expected a break-outside-loop diagnostic")
	}
}

func TestReturnOutsideFunctionIsReported(t *testing.T) {
	_, _, errs := resolve(t, `return 1;`)
	if errs == "" {
		t.Fatalf("expected a return-outside-function diagnostic")
	}
}

func TestReturnValueFromConstructorIsReported(t *testing.T) {
	_, _, errs := resolve(t, `class C { C() { return 1; } }`)
	if errs == "" {
		t.Fatalf("expected a return-value-from-constructor diagnostic")
	}
}

func TestThisOutsideClassIsReported(t *testing.T) {
	_, _, errs := resolve(t, `print this;`)
	if errs == "" {
		t.Fatalf("expected a this-outside-class diagnostic")
	}
}

func TestSuperWithoutSuperclassIsReported(t *testing.T) {
	_, _, errs := resolve(t, `class C { m() { super.m(); } }`)
	if errs == "" {
		t.Fatalf("expected a super-without-superclass diagnostic")
	}
}

func TestClassInheritingFromItselfIsReported(t *testing.T) {
	_, _, errs := resolve(t, `class C < C {}`)
	if errs == "" {
		t.Fatalf("expected a self-inheritance diagnostic")
	}
}

func TestThisInsideStaticMethodIsReported(t *testing.T) {
	_, _, errs := resolve(t, `class C { class make() { return this; } }`)
	if errs == "" {
		t.Fatalf("expected a this-inside-static-method diagnostic")
	}
}

func TestWellFormedSuperclassMethodResolvesCleanly(t *testing.T) {
	_, _, errs := resolve(t, `
		class Base { greet() { print "hi"; } }
		class Derived < Base {
			greet() { super.greet(); print this; }
		}
	`)
	if errs != "" {
		t.Fatalf("unexpected resolver errors: %s", errs)
	}
}
