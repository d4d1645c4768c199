package vm_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ramsaycarslaw/mt/internal/compiler"
	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// runScript compiles and interprets source, returning everything
// written through `print`. Grounded on the teacher's
// test/integration_test.go table-driven style.
func runScript(t *testing.T, source string) string {
	t.Helper()
	strs := value.NewStrings()
	fn, err := compiler.Compile(source, strs)
	require.NoError(t, err)

	var buf bytes.Buffer
	m := vm.New(strs, &buf, zerolog.Nop())
	result, err := m.Interpret(fn)
	require.NoError(t, err)
	require.Equal(t, vm.Ok, result)
	return buf.String()
}

// TestEndToEndScenarios mirrors spec.md §8's six inputs-to-stdout cases
// verbatim.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"arithmetic precedence", `print 1 + 2 * 3;`, "7\n"},
		{"string concatenation", `var a = "hi"; var b = " there"; print a + b;`, "hi there\n"},
		{"closures share upvalues", `fn make() { var x = 0; fn inc() { x = x + 1; return x; } return inc; } var f = make(); print f(); print f(); print f();`, "1\n2\n3\n"},
		{"super call chains to subclass", `class A { greet() { print "a"; } } class B < A { greet() { super.greet(); print "b"; } } B().greet();`, "a\nb\n"},
		{"list broadcast add then index", `var xs = [1,2,3]; xs = xs + 10; print xs[1];`, "12\n"},
		{"continue skips one iteration", `for (var i = 0; i < 3; i = i + 1) { if (i == 1) continue; print i; }`, "0\n2\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, runScript(t, tc.source))
		})
	}
}

func TestDivisionByZeroProducesInfNotRuntimeError(t *testing.T) {
	out := runScript(t, `print 1 / 0;`)
	require.Equal(t, "inf\n", out)
}

func TestUndefinedGlobalRaisesRuntimeError(t *testing.T) {
	strs := value.NewStrings()
	fn, err := compiler.Compile(`print missing;`, strs)
	require.NoError(t, err)

	var buf bytes.Buffer
	m := vm.New(strs, &buf, zerolog.Nop())
	result, err := m.Interpret(fn)
	require.Error(t, err)
	require.Equal(t, vm.RuntimeErr, result)
	require.Contains(t, err.Error(), "Undefined variable 'missing'")
}

func TestArityMismatchRaisesRuntimeError(t *testing.T) {
	strs := value.NewStrings()
	fn, err := compiler.Compile(`fn f(a, b) { return a + b; } f(1);`, strs)
	require.NoError(t, err)

	var buf bytes.Buffer
	m := vm.New(strs, &buf, zerolog.Nop())
	_, err = m.Interpret(fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Expected 2 arguments but got 1")
}

func TestListIndexNoOpDoesNotMutate(t *testing.T) {
	out := runScript(t, `var xs = [5,6,7]; xs[0] = xs[0]; print xs[0];`)
	require.Equal(t, "5\n", out)
}

func TestDeferOpcodeRaisesReservedRuntimeError(t *testing.T) {
	strs := value.NewStrings()
	fn, err := compiler.Compile(`defer 1;`, strs)
	require.NoError(t, err)

	var buf bytes.Buffer
	m := vm.New(strs, &buf, zerolog.Nop())
	_, err = m.Interpret(fn)
	require.Error(t, err)
	require.Contains(t, err.Error(), "defer is not yet supported")
}
