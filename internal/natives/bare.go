package natives

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// registerBareGlobals wires the handful of natives every script sees
// unqualified, grounded on original_source/native.c's clockNative,
// inputNative, exitNative, and the teacher's print-primitive dispatch.
func registerBareGlobals(m *vm.VM, strs *value.Strings) {
	start := time.Now()

	m.DefineGlobal("clock", value.FromObj(&value.ObjNative{Name: "clock", Fn: func(argc int, args []value.Value) value.Value {
		checkArgc("clock", argc, 0)
		return value.Number(time.Since(start).Seconds())
	}}))

	m.DefineGlobal("sleep", value.FromObj(&value.ObjNative{Name: "sleep", Fn: func(argc int, args []value.Value) value.Value {
		checkArgc("sleep", argc, 1)
		secs := asNumber("sleep", args[0])
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return value.Nil()
	}}))

	reader := bufio.NewReader(os.Stdin)
	m.DefineGlobal("input", value.FromObj(&value.ObjNative{Name: "input", Fn: func(argc int, args []value.Value) value.Value {
		if argc == 1 {
			fmt.Print(asString("input", args[0]).Chars)
		}
		line, _ := reader.ReadString('\n')
		return value.FromObj(strs.Intern(strings.TrimRight(line, "\r\n")))
	}}))

	m.DefineGlobal("exit", value.FromObj(&value.ObjNative{Name: "exit", Fn: func(argc int, args []value.Value) value.Value {
		code := 0
		if argc == 1 {
			code = int(asNumber("exit", args[0]))
		}
		os.Exit(code)
		return value.Nil()
	}}))

	m.DefineGlobal("printf", value.FromObj(&value.ObjNative{Name: "printf", Fn: func(argc int, args []value.Value) value.Value {
		if argc == 0 {
			panic("printf() takes at least 1 argument")
		}
		format := asString("printf", args[0]).Chars
		rest := make([]interface{}, len(args)-1)
		for i, a := range args[1:] {
			rest[i] = a.String()
		}
		fmt.Printf(expandPrintf(format), rest...)
		return value.Nil()
	}}))

	m.DefineGlobal("println", value.FromObj(&value.ObjNative{Name: "println", Fn: func(argc int, args []value.Value) value.Value {
		parts := make([]string, argc)
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Println(strings.Join(parts, " "))
		return value.Nil()
	}}))
}

// expandPrintf rewrites the language's bare "%" placeholders into Go's
// "%v" equivalent so printf("%, is %", name, age) works without
// requiring callers to know Go's verb set.
func expandPrintf(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteByte(format[i])
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			b.WriteString("%%")
			i++
			continue
		}
		b.WriteString("%v")
	}
	return b.String()
}
