package natives

import (
	goStrings "strings"

	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// registerStrings grounds on original_source/module/strings.c's
// toUpperNative/toLowerNative/splitNative/trimNative/indexOfNative
// family, plus `join` and `contains` to round out spec.md's roster.
func registerStrings(m *vm.VM, strs *value.Strings) {
	c := newClass("strings").
		add("upper", func(argc int, args []value.Value) value.Value {
			checkArgc("upper", argc, 1)
			return value.FromObj(strs.Intern(goStrings.ToUpper(asString("upper", args[0]).Chars)))
		}).
		add("lower", func(argc int, args []value.Value) value.Value {
			checkArgc("lower", argc, 1)
			return value.FromObj(strs.Intern(goStrings.ToLower(asString("lower", args[0]).Chars)))
		}).
		add("trim", func(argc int, args []value.Value) value.Value {
			checkArgc("trim", argc, 1)
			return value.FromObj(strs.Intern(goStrings.TrimSpace(asString("trim", args[0]).Chars)))
		}).
		add("contains", func(argc int, args []value.Value) value.Value {
			checkArgc("contains", argc, 2)
			return value.Bool(goStrings.Contains(asString("contains", args[0]).Chars, asString("contains", args[1]).Chars))
		}).
		add("indexOf", func(argc int, args []value.Value) value.Value {
			checkArgc("indexOf", argc, 2)
			return value.Number(float64(goStrings.Index(asString("indexOf", args[0]).Chars, asString("indexOf", args[1]).Chars)))
		}).
		add("split", func(argc int, args []value.Value) value.Value {
			checkArgc("split", argc, 2)
			parts := goStrings.Split(asString("split", args[0]).Chars, asString("split", args[1]).Chars)
			items := make([]value.Value, len(parts))
			for i, p := range parts {
				items[i] = value.FromObj(strs.Intern(p))
			}
			return value.FromObj(&value.ObjList{Items: items})
		}).
		add("join", func(argc int, args []value.Value) value.Value {
			checkArgc("join", argc, 2)
			list := asList("join", args[0])
			sep := asString("join", args[1]).Chars
			parts := make([]string, len(list.Items))
			for i, v := range list.Items {
				parts[i] = v.String()
			}
			return value.FromObj(strs.Intern(goStrings.Join(parts, sep)))
		})

	m.DefineGlobal("strings", value.FromObj(c.obj))
}
