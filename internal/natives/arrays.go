package natives

import (
	"sort"

	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// registerArrays grounds on original_source/module/arrays.c's
// pushNative/popNative/reverseNative family and the teacher's "do:"/
// "at:" list message handlers, adapted to direct Go dispatch; `map`
// and `filter` call back into user closures via vm.VM.Call.
func registerArrays(m *vm.VM, strs *value.Strings) {
	c := newClass("arrays").
		add("push", func(argc int, args []value.Value) value.Value {
			checkArgc("push", argc, 2)
			list := asList("push", args[0])
			list.Items = append(list.Items, args[1])
			return value.FromObj(list)
		}).
		add("pop", func(argc int, args []value.Value) value.Value {
			checkArgc("pop", argc, 1)
			list := asList("pop", args[0])
			if len(list.Items) == 0 {
				panic("pop() called on an empty list")
			}
			last := list.Items[len(list.Items)-1]
			list.Items = list.Items[:len(list.Items)-1]
			return last
		}).
		add("reverse", func(argc int, args []value.Value) value.Value {
			checkArgc("reverse", argc, 1)
			list := asList("reverse", args[0])
			items := make([]value.Value, len(list.Items))
			for i, v := range list.Items {
				items[len(items)-1-i] = v
			}
			return value.FromObj(&value.ObjList{Items: items})
		}).
		add("sort", func(argc int, args []value.Value) value.Value {
			checkArgc("sort", argc, 1)
			list := asList("sort", args[0])
			items := make([]value.Value, len(list.Items))
			copy(items, list.Items)
			sort.Slice(items, func(i, j int) bool {
				return items[i].AsNumber() < items[j].AsNumber()
			})
			return value.FromObj(&value.ObjList{Items: items})
		}).
		add("map", func(argc int, args []value.Value) value.Value {
			checkArgc("map", argc, 2)
			list := asList("map", args[0])
			fn := args[1]
			result := make([]value.Value, len(list.Items))
			for i, v := range list.Items {
				out, err := m.Call(fn, []value.Value{v})
				if err != nil {
					panic(err.Error())
				}
				result[i] = out
			}
			return value.FromObj(&value.ObjList{Items: result})
		}).
		add("filter", func(argc int, args []value.Value) value.Value {
			checkArgc("filter", argc, 2)
			list := asList("filter", args[0])
			fn := args[1]
			result := make([]value.Value, 0, len(list.Items))
			for _, v := range list.Items {
				out, err := m.Call(fn, []value.Value{v})
				if err != nil {
					panic(err.Error())
				}
				if !out.IsFalsey() {
					result = append(result, v)
				}
			}
			return value.FromObj(&value.ObjList{Items: result})
		})

	m.DefineGlobal("arrays", value.FromObj(c.obj))
}
