// Package vm implements the stack-based virtual machine that executes
// compiled MT bytecode: the value stack, the call-frame stack, method
// dispatch, inheritance, and the closure/upvalue protocol.
package vm

import (
	"fmt"
	"io"

	"github.com/dolthub/swiss"
	"github.com/rs/zerolog"

	"github.com/ramsaycarslaw/mt/internal/bytecode"
	"github.com/ramsaycarslaw/mt/internal/value"
)

// FramesMax bounds call recursion depth; StackMax follows from it since
// every frame can push up to 256 locals before recursing again.
const (
	FramesMax = 1024
	StackMax  = FramesMax * 256
)

// CallFrame is one activation record: the closure under execution, its
// instruction pointer, and the base slot in the shared value stack
// where its locals begin.
type CallFrame struct {
	closure *value.ObjClosure
	ip      int
	slots   int
}

// VM is one independent interpreter instance. Nothing here is a
// process-wide singleton: callers may run several VMs, each with its
// own stack, globals, and string table, concurrently — though any one
// VM's dispatch loop is itself strictly single-threaded.
type VM struct {
	frames     [FramesMax]CallFrame
	frameCount int

	stack    [StackMax]value.Value
	stackTop int

	globals *swiss.Map[string, value.Value]
	strings *value.Strings

	openUpvalues *value.ObjUpvalue

	initString *value.ObjString

	out io.Writer
	log zerolog.Logger
}

// New creates a VM writing `print` output to out and structured
// diagnostics through log. strings must be the same interning table
// the source was compiled with: Value.Equal compares strings by
// pointer, so a compiled string constant and an equal runtime string
// from another table would compare unequal.
func New(strings *value.Strings, out io.Writer, log zerolog.Logger) *VM {
	return &VM{
		globals:    swiss.NewMap[string, value.Value](64),
		strings:    strings,
		initString: strings.Intern("init"),
		out:        out,
		log:        log,
	}
}

// DefineGlobal registers a value (typically a NativeClass namespace or
// a bare native function) as a global binding before interpretation
// starts.
func (vm *VM) DefineGlobal(name string, v value.Value) {
	vm.globals.Put(vm.strings.Intern(name).Chars, v)
}

// Result is the outcome Interpret reports: Ok or RuntimeErr. Compile
// errors never reach this package; callers classify a compiler package
// error before getting here.
type Result int

const (
	Ok Result = iota
	RuntimeErr
)

// Interpret runs a compiled top-level script to completion.
func (vm *VM) Interpret(fn *value.ObjFunction) (Result, error) {
	closure := &value.ObjClosure{Fn: fn, Upvalues: make([]*value.ObjUpvalue, fn.UpvalueCount)}
	vm.push(value.FromObj(closure))
	if rtErr := vm.callValue(value.FromObj(closure), 0); rtErr != nil {
		vm.resetStack()
		return RuntimeErr, rtErr
	}

	if err := vm.run(0); err != nil {
		vm.resetStack()
		return RuntimeErr, err
	}
	return Ok, nil
}

// Call invokes an arbitrary callable value (closure, bound method, or
// native) from outside the dispatch loop and returns its result. This
// is how natives like arrays.map/arrays.filter call back into
// user-defined closures passed to them.
func (vm *VM) Call(callee value.Value, args []value.Value) (value.Value, error) {
	base := vm.frameCount
	vm.push(callee)
	for _, a := range args {
		vm.push(a)
	}
	if rtErr := vm.callValue(callee, len(args)); rtErr != nil {
		vm.stackTop -= len(args) + 1
		return value.Nil(), rtErr
	}
	if vm.frameCount == base {
		// callValue ran a native inline; its result is already on
		// top of the stack with no frame left to unwind.
		return vm.pop(), nil
	}
	if err := vm.run(base); err != nil {
		return value.Nil(), err
	}
	return vm.pop(), nil
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) currentFrame() *CallFrame {
	return &vm.frames[vm.frameCount-1]
}

func (vm *VM) currentChunk() *bytecode.Chunk {
	return vm.currentFrame().closure.Fn.Chunk.(*bytecode.Chunk)
}

func (vm *VM) readByte(frame *CallFrame) byte {
	chunk := frame.closure.Fn.Chunk.(*bytecode.Chunk)
	b := chunk.Code[frame.ip]
	frame.ip++
	return b
}

func (vm *VM) readShort(frame *CallFrame) uint16 {
	chunk := frame.closure.Fn.Chunk.(*bytecode.Chunk)
	hi, lo := chunk.Code[frame.ip], chunk.Code[frame.ip+1]
	frame.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readConstant(frame *CallFrame, idx byte) value.Value {
	return frame.closure.Fn.Chunk.(*bytecode.Chunk).Constants[idx]
}

func (vm *VM) readString(frame *CallFrame, idx byte) *value.ObjString {
	return vm.readConstant(frame, idx).AsObj().(*value.ObjString)
}

// runtimeError builds a RuntimeError carrying the current call stack,
// innermost frame first, for every active frame at the point of
// failure.
func (vm *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	trace := make([]StackFrame, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		chunk := f.closure.Fn.Chunk.(*bytecode.Chunk)
		line := 0
		if f.ip-1 >= 0 && f.ip-1 < len(chunk.Lines) {
			line = chunk.Lines[f.ip-1]
		}
		name := f.closure.Fn.Name
		if name == "" {
			name = "script"
		}
		trace = append(trace, StackFrame{Name: name, Line: line})
	}
	return newRuntimeError(msg, trace)
}
