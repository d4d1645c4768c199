package natives_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ramsaycarslaw/mt/internal/compiler"
	"github.com/ramsaycarslaw/mt/internal/natives"
	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

func run(t *testing.T, source string) string {
	t.Helper()
	strs := value.NewStrings()
	fn, err := compiler.Compile(source, strs)
	require.NoError(t, err)

	var buf bytes.Buffer
	m := vm.New(strs, &buf, zerolog.Nop())
	natives.Register(m, strs, zerolog.Nop())
	_, err = m.Interpret(fn)
	require.NoError(t, err)
	return buf.String()
}

func TestMathSqrt(t *testing.T) {
	require.Equal(t, "3\n", run(t, `print math.sqrt(9);`))
}

func TestStringsUpper(t *testing.T) {
	require.Equal(t, "HI\n", run(t, `print strings.upper("hi");`))
}

func TestArraysPushAndMap(t *testing.T) {
	out := run(t, `
		var xs = [1, 2, 3];
		arrays.push(xs, 4);
		var doubled = arrays.map(xs, \(n) -> n * 2);
		print doubled;
	`)
	require.Equal(t, "[2, 4, 6, 8]\n", out)
}

func TestArraysFilter(t *testing.T) {
	out := run(t, `
		var xs = [1, 2, 3, 4, 5];
		print arrays.filter(xs, \(n) -> n > 2);
	`)
	require.Equal(t, "[3, 4, 5]\n", out)
}

func TestSortsQuicksort(t *testing.T) {
	require.Equal(t, "[1, 2, 3]\n", run(t, `print sorts.quicksort([3, 1, 2]);`))
}

func TestAssertPassesSilently(t *testing.T) {
	require.Equal(t, "", run(t, `assert.assert(1 == 1);`))
}

func TestClockReturnsNumber(t *testing.T) {
	out := run(t, `print clock() >= 0;`)
	require.Equal(t, "true\n", out)
}
