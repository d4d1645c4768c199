package vm

import (
	"fmt"
	"strings"
)

// StackFrame is a single line of a runtime error's trace: the function
// name ("script" for top-level code) and the source line active in
// that frame at the moment of the error.
type StackFrame struct {
	Name string
	Line int
}

// RuntimeError is raised by the dispatch loop or a native function. Its
// Error() rendering matches the `[line N] in <fn>|script` trace format
// callers print to stderr, one line per active frame, innermost first.
type RuntimeError struct {
	Message string
	Trace   []StackFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Trace {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "[line %d] in %s", f.Line, f.Name)
	}
	return b.String()
}

func newRuntimeError(message string, trace []StackFrame) *RuntimeError {
	return &RuntimeError{Message: message, Trace: trace}
}
