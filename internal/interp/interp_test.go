package interp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dimetcm/gekko/internal/gkerrors"
	"github.com/dimetcm/gekko/internal/interp"
	"github.com/dimetcm/gekko/internal/parser"
	"github.com/dimetcm/gekko/internal/resolver"
	"github.com/dimetcm/gekko/internal/scanner"
)

// run scans, parses, resolves and interprets source against a fresh
// Interpreter, returning stdout and the first runtime error (if any).
func run(t *testing.T, source string) (string, error) {
	t.Helper()
	tokens, scanErrs := scanner.New(source).Scan()
	if len(scanErrs) != 0 {
		t.Fatalf("unexpected scan errors: %v", scanErrs)
	}
	var errBuf bytes.Buffer
	reporter := gkerrors.NewReporter(&errBuf)
	stmts := parser.New(tokens, reporter).Parse()
	if reporter.HadError() {
		t.Fatalf("unexpected parse errors: %s", errBuf.String())
	}
	res := resolver.New(reporter)
	if res.Resolve(stmts) {
		t.Fatalf("unexpected resolver errors: %s", errBuf.String())
	}
	var out bytes.Buffer
	it := interp.New(interp.NewGlobalEnvironment(&out))
	err := it.Interpret(stmts, res.Locals)
	return out.String(), err
}

func TestArithmeticAndPrecedence(t *testing.T) {
	out, err := run(t, `print 2 + 3 * 4;`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "14" {
		t.Fatalf("got %q, want %q", out, "14")
	}
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "foo" + "bar";`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "foobar" {
		t.Fatalf("got %q, want foobar", out)
	}
}

func TestMixedPlusOperandsIsRuntimeError(t *testing.T) {
	_, err := run(t, `print "foo" + 1;`)
	if err == nil {
		t.Fatalf("expected a runtime error mixing string and number with +")
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := run(t, `print 1 / 0;`)
	if err == nil {
		t.Fatalf("expected a division-by-zero runtime error")
	}
}

func TestTernaryOperator(t *testing.T) {
	out, err := run(t, `print 1 < 2 ? "yes" : "no";`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "yes" {
		t.Fatalf("got %q, want yes", out)
	}
}

func TestCrossTypeEqualityIsRuntimeError(t *testing.T) {
	_, err := run(t, `print 1 == "1";`)
	if err == nil {
		t.Fatalf("expected a runtime error comparing mismatched types with ==")
	}
}

func TestClosureCapturesEnclosingVariable(t *testing.T) {
	out, err := run(t, `
		fun makeCounter() {
			var count = 0;
			fun counter() {
				count = count + 1;
				return count;
			}
			return counter;
		}
		var c = makeCounter();
		print c();
		print c();
		print c();
	`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "1\n2\n3" {
		t.Fatalf("got %q, want \"1\\n2\\n3\"", out)
	}
}

func TestWhileBreak(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		while (true) {
			if (i == 3) break;
			print i;
			i = i + 1;
		}
	`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "0\n1\n2" {
		t.Fatalf("got %q, want \"0\\n1\\n2\"", out)
	}
}

func TestForLoopDesugaring(t *testing.T) {
	out, err := run(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "0\n1\n2" {
		t.Fatalf("got %q, want \"0\\n1\\n2\"", out)
	}
}

func TestClassInstanceFieldsAndMethods(t *testing.T) {
	out, err := run(t, `
		class Counter {
			Counter(start) { this.n = start; }
			increment() { this.n = this.n + 1; return this.n; }
		}
		var c = Counter(10);
		print c.increment();
		print c.increment();
	`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "11\n12" {
		t.Fatalf("got %q, want \"11\\n12\"", out)
	}
}

func TestInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
		class Animal {
			speak() { return "..."; }
		}
		class Dog < Animal {
			speak() { return "Woof, says the animal that goes " + super.speak(); }
		}
		print Dog().speak();
	`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "Woof, says the animal that goes ..." {
		t.Fatalf("got %q", out)
	}
}

func TestGetterIsInvokedImmediately(t *testing.T) {
	out, err := run(t, `
		class Circle {
			Circle(r) { this.radius = r; }
			area { return this.radius * this.radius * 3; }
		}
		print Circle(2).area;
	`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "12" {
		t.Fatalf("got %q, want 12", out)
	}
}

func TestStaticMethodIsNotInherited(t *testing.T) {
	_, err := run(t, `
		class Base { class make() { return "made"; } }
		class Derived < Base {}
		print Derived.make();
	`)
	if err == nil {
		t.Fatalf("expected an undefined-property runtime error, since static methods aren't inherited")
	}
}

func TestClassConstructorArityMismatchIsRuntimeError(t *testing.T) {
	_, err := run(t, `
		class Point { Point(x, y) { this.x = x; this.y = y; } }
		Point(1);
	`)
	if err == nil {
		t.Fatalf("expected an arity-mismatch runtime error")
	}
}

func TestLambdaExpressionIsCallable(t *testing.T) {
	out, err := run(t, `
		var add = fun(a, b) { return a + b; };
		print add(3, 4);
	`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "7" {
		t.Fatalf("got %q, want 7", out)
	}
}

func TestClockNativeReturnsNumber(t *testing.T) {
	out, err := run(t, `print clock() >= 0;`)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	if strings.TrimSpace(out) != "true" {
		t.Fatalf("got %q, want true", out)
	}
}
