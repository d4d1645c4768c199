package natives

import (
	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// registerSorts grounds on original_source/module/sorts.c's
// bubbleSortNative, generalized to the quicksort/mergesort pair
// spec.md's roster names; both return a freshly sorted copy rather
// than mutating in place, matching arrays.sort's convention.
func registerSorts(m *vm.VM, strs *value.Strings) {
	c := newClass("sorts").
		add("quicksort", func(argc int, args []value.Value) value.Value {
			checkArgc("quicksort", argc, 1)
			items := append([]value.Value(nil), asList("quicksort", args[0]).Items...)
			quicksort(items)
			return value.FromObj(&value.ObjList{Items: items})
		}).
		add("mergesort", func(argc int, args []value.Value) value.Value {
			checkArgc("mergesort", argc, 1)
			items := mergesort(asList("mergesort", args[0]).Items)
			return value.FromObj(&value.ObjList{Items: items})
		})

	m.DefineGlobal("sorts", value.FromObj(c.obj))
}

func quicksort(items []value.Value) {
	if len(items) < 2 {
		return
	}
	pivot := items[len(items)/2].AsNumber()
	left, right := 0, len(items)-1
	for left <= right {
		for items[left].AsNumber() < pivot {
			left++
		}
		for items[right].AsNumber() > pivot {
			right--
		}
		if left <= right {
			items[left], items[right] = items[right], items[left]
			left++
			right--
		}
	}
	quicksort(items[:right+1])
	quicksort(items[left:])
}

func mergesort(items []value.Value) []value.Value {
	if len(items) < 2 {
		out := make([]value.Value, len(items))
		copy(out, items)
		return out
	}
	mid := len(items) / 2
	left := mergesort(items[:mid])
	right := mergesort(items[mid:])
	return merge(left, right)
}

func merge(left, right []value.Value) []value.Value {
	out := make([]value.Value, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if left[i].AsNumber() <= right[j].AsNumber() {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out
}
