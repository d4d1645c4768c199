package natives

import (
	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// registerAssert grounds on original_source/module/assert.c's
// assertIsTrue/assertIsFalse pair, generalized to the assert/assertEqual
// names spec.md's roster uses.
func registerAssert(m *vm.VM, strs *value.Strings) {
	c := newClass("assert").
		add("assert", func(argc int, args []value.Value) value.Value {
			if argc < 1 {
				panic("assert() takes at least 1 argument")
			}
			if args[0].IsFalsey() {
				msg := "assertion failed"
				if argc >= 2 {
					msg = args[1].String()
				}
				panic(msg)
			}
			return value.Nil()
		}).
		add("assertEqual", func(argc int, args []value.Value) value.Value {
			checkArgc("assertEqual", argc, 2)
			if !args[0].Equal(args[1]) {
				panic("assertEqual failed: " + args[0].String() + " != " + args[1].String())
			}
			return value.Nil()
		})

	m.DefineGlobal("assert", value.FromObj(c.obj))
}
