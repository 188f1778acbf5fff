package runner_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/dimetcm/gekko/internal/runner"
)

// TestEndToEndFixtures runs the spec's end-to-end scenarios through the
// whole pipeline and snapshots stdout, following the teacher's
// fixture-by-snapshot style (internal/interp/fixture_test.go there walks
// a directory of DWScript sources; here the fixture set is small enough
// to inline as a table).
func TestEndToEndFixtures(t *testing.T) {
	fixtures := []struct {
		name   string
		source string
	}{
		{"arithmetic", `print 2 * 10 - 1 + 3;`},
		{"stringConcatLoop", `var a = "a"; var i = 0; while (i < 3) { a = a + a; i = i + 1; } print a;`},
		{"functionCall", `fun f(a,b) { return a+b; } print f("x","y");`},
		{"shadowing", `var a = 1; { var a = a + 2; print a; } print a;`},
		{"classMethod", `class C { greet() { return "hi"; } } print C().greet();`},
	}

	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			var out bytes.Buffer
			ok := runner.Run(fx.source, &out, &out)
			if !ok {
				t.Fatalf("expected clean run, got output:\n%s", out.String())
			}
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_stdout", fx.name), out.String())
		})
	}
}

// TestRuntimeErrorFixture checks the one table scenario that is expected
// to fail: the division-by-zero abort.
func TestRuntimeErrorFixture(t *testing.T) {
	var out, errOut bytes.Buffer
	ok := runner.Run(`print 1/0;`, &out, &errOut)
	if ok {
		t.Fatalf("expected a reported error, got clean run with stdout:\n%s", out.String())
	}
	snaps.MatchSnapshot(t, "divisionByZero_stderr", errOut.String())
}
