package natives

import (
	"math"
	"math/rand"

	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// registerMath grounds on original_source/module/math.c's sin/cos/tan
// natives, extended with the rest of spec.md's math surface.
func registerMath(m *vm.VM, strs *value.Strings) {
	c := newClass("math").
		add("sqrt", func(argc int, args []value.Value) value.Value {
			checkArgc("sqrt", argc, 1)
			return value.Number(math.Sqrt(asNumber("sqrt", args[0])))
		}).
		add("abs", func(argc int, args []value.Value) value.Value {
			checkArgc("abs", argc, 1)
			return value.Number(math.Abs(asNumber("abs", args[0])))
		}).
		add("floor", func(argc int, args []value.Value) value.Value {
			checkArgc("floor", argc, 1)
			return value.Number(math.Floor(asNumber("floor", args[0])))
		}).
		add("ceil", func(argc int, args []value.Value) value.Value {
			checkArgc("ceil", argc, 1)
			return value.Number(math.Ceil(asNumber("ceil", args[0])))
		}).
		add("pow", func(argc int, args []value.Value) value.Value {
			checkArgc("pow", argc, 2)
			return value.Number(math.Pow(asNumber("pow", args[0]), asNumber("pow", args[1])))
		}).
		add("sin", func(argc int, args []value.Value) value.Value {
			checkArgc("sin", argc, 1)
			return value.Number(math.Sin(asNumber("sin", args[0])))
		}).
		add("cos", func(argc int, args []value.Value) value.Value {
			checkArgc("cos", argc, 1)
			return value.Number(math.Cos(asNumber("cos", args[0])))
		}).
		add("tan", func(argc int, args []value.Value) value.Value {
			checkArgc("tan", argc, 1)
			return value.Number(math.Tan(asNumber("tan", args[0])))
		}).
		add("random", func(argc int, args []value.Value) value.Value {
			checkArgc("random", argc, 0)
			return value.Number(rand.Float64())
		})

	m.DefineGlobal("math", value.FromObj(c.obj))
}
