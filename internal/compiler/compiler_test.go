package compiler_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramsaycarslaw/mt/internal/compiler"
	"github.com/ramsaycarslaw/mt/internal/value"
)

func compile(t *testing.T, source string) (*value.ObjFunction, error) {
	t.Helper()
	return compiler.Compile(source, value.NewStrings())
}

func TestCompilesSimpleExpression(t *testing.T) {
	_, err := compile(t, `print 1 + 2;`)
	require.NoError(t, err)
}

func Test256ConstantsCompiles(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&b, "print %d.5;\n", i)
	}
	_, err := compile(t, b.String())
	require.NoError(t, err)
}

func Test257ConstantsFailsWithTooManyConstants(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 257; i++ {
		fmt.Fprintf(&b, "print %d.5;\n", i)
	}
	_, err := compile(t, b.String())
	require.Error(t, err)
	require.Contains(t, err.Error(), "constant")
}

// Slot 0 of every function's local array is reserved (the receiver for
// methods, the called closure itself otherwise), so a scope can declare
// 255 genuine locals before the 256-entry array fills up.
func Test255LocalsFillingTheReservedSlotArrayCompiles(t *testing.T) {
	var b strings.Builder
	b.WriteString("{\n")
	for i := 0; i < 255; i++ {
		fmt.Fprintf(&b, "var v%d = %d;\n", i, i)
	}
	b.WriteString("}\n")
	_, err := compile(t, b.String())
	require.NoError(t, err)
}

func Test256thLocalOverflowsTheArrayAndFails(t *testing.T) {
	var b strings.Builder
	b.WriteString("{\n")
	for i := 0; i < 256; i++ {
		fmt.Fprintf(&b, "var v%d = %d;\n", i, i)
	}
	b.WriteString("}\n")
	_, err := compile(t, b.String())
	require.Error(t, err)
}

func TestTopLevelReturnIsCompileError(t *testing.T) {
	_, err := compile(t, `return 1;`)
	require.Error(t, err)
}

func TestReturnValueFromInitializerIsCompileError(t *testing.T) {
	_, err := compile(t, `class A { init() { return 1; } }`)
	require.Error(t, err)
}

func TestBreakOutsideLoopOrSwitchIsCompileError(t *testing.T) {
	_, err := compile(t, `break;`)
	require.Error(t, err)
}

func TestBreakInsideSwitchIsAllowed(t *testing.T) {
	_, err := compile(t, `switch (1) { case 1: break; }`)
	require.NoError(t, err)
}

func TestContinueInsideSwitchTargetsEnclosingLoop(t *testing.T) {
	_, err := compile(t, `for (var i = 0; i < 3; i = i + 1) { switch (i) { case 1: continue; } }`)
	require.NoError(t, err)
}

func TestContinueOutsideAnyLoopIsCompileError(t *testing.T) {
	_, err := compile(t, `switch (1) { case 1: continue; }`)
	require.Error(t, err)
}

func TestSuperOutsideClassIsCompileError(t *testing.T) {
	_, err := compile(t, `fn f() { super.greet(); }`)
	require.Error(t, err)
}

func TestSelfInheritanceIsCompileError(t *testing.T) {
	_, err := compile(t, `class A < A {}`)
	require.Error(t, err)
}

func TestVariableRedeclarationInSameScopeIsCompileError(t *testing.T) {
	_, err := compile(t, `{ var x = 1; var x = 2; }`)
	require.Error(t, err)
}
