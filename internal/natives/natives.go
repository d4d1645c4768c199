// Package natives implements MT's host-native surface: the bare global
// functions every script sees without qualification, plus the
// NativeClass namespaces (math, strings, arrays, sorts, assert, errors,
// http, log) scripts reach through dotted calls like math.sqrt(x).
//
// Every function here follows the native ABI spec.md §4.6 describes:
// (argc int, args []value.Value) value.Value, signaling failure by
// panicking with a string that the VM's call frame turns into a
// RuntimeError.
package natives

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// Register installs every bare global and NativeClass namespace into
// the given VM. Callers typically do this once, right after vm.New,
// before the first Interpret call.
func Register(m *vm.VM, strings *value.Strings, log zerolog.Logger) {
	registerBareGlobals(m, strings)
	registerMath(m, strings)
	registerStrings(m, strings)
	registerArrays(m, strings)
	registerSorts(m, strings)
	registerAssert(m, strings)
	registerErrors(m, strings)
	registerHTTP(m, strings)
	registerLog(m, strings, log)
}

// class is a small builder: newClass followed by repeated add calls
// reads better at each registerX call site than building the map literal.
type class struct {
	obj *value.ObjNativeClass
}

func newClass(name string) *class {
	return &class{obj: &value.ObjNativeClass{Name: name, Methods: make(map[string]*value.ObjNative)}}
}

func (c *class) add(name string, fn value.NativeFn) *class {
	c.obj.Methods[name] = &value.ObjNative{Name: name, Fn: fn}
	return c
}

func checkArgc(name string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("%s() takes %d argument(s), got %d", name, want, got))
	}
}

func asNumber(name string, v value.Value) float64 {
	if !v.IsNumber() {
		panic(name + "() expects a number")
	}
	return v.AsNumber()
}

func asString(name string, v value.Value) *value.ObjString {
	s, ok := v.AsObj().(*value.ObjString)
	if !v.IsObj() || !ok {
		panic(name + "() expects a string")
	}
	return s
}

func asList(name string, v value.Value) *value.ObjList {
	l, ok := v.AsObj().(*value.ObjList)
	if !v.IsObj() || !ok {
		panic(name + "() expects a list")
	}
	return l
}
