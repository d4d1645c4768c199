package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramsaycarslaw/mt/internal/value"
)

func TestIntegralFloatsPrintWithoutDecimal(t *testing.T) {
	require.Equal(t, "42", value.Number(42).String())
	require.Equal(t, "-3", value.Number(-3).String())
}

func TestFractionalFloatsKeepDecimal(t *testing.T) {
	require.Equal(t, "3.5", value.Number(3.5).String())
}

func TestInfinityAndNanRenderAsWords(t *testing.T) {
	require.Equal(t, "inf", value.Number(math.Inf(1)).String())
	require.Equal(t, "-inf", value.Number(math.Inf(-1)).String())
	require.Equal(t, "nan", value.Number(math.NaN()).String())
}

func TestFalseyness(t *testing.T) {
	require.True(t, value.Nil().IsFalsey())
	require.True(t, value.Bool(false).IsFalsey())
	require.False(t, value.Bool(true).IsFalsey())
	require.False(t, value.Number(0).IsFalsey())
}

func TestInternedStringsCompareByIdentityAfterInterning(t *testing.T) {
	strs := value.NewStrings()
	a := strs.Intern("hello")
	b := strs.Intern("hello")
	require.Same(t, a, b)
	require.True(t, value.FromObj(a).Equal(value.FromObj(b)))
}

func TestDistinctObjectsAreNotEqualEvenWithSameShape(t *testing.T) {
	l1 := &value.ObjList{Items: []value.Value{value.Number(1)}}
	l2 := &value.ObjList{Items: []value.Value{value.Number(1)}}
	require.False(t, value.FromObj(l1).Equal(value.FromObj(l2)))
	require.True(t, value.FromObj(l1).Equal(value.FromObj(l1)))
}
