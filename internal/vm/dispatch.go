package vm

import (
	"fmt"
	"math"

	"github.com/ramsaycarslaw/mt/internal/bytecode"
	"github.com/ramsaycarslaw/mt/internal/value"
)

// run is the single dispatch loop: it decodes and executes one
// instruction from the current frame per iteration until control
// unwinds back to base frames (0 for a top-level script, or the
// depth Call resumed from for a native-triggered callback) or a
// runtime error aborts.
func (vm *VM) run(base int) error {
	frame := vm.currentFrame()

	for {
		op := bytecode.Op(vm.readByte(frame))

		switch op {
		case bytecode.OpConstant:
			vm.push(vm.readConstant(frame, vm.readByte(frame)))

		case bytecode.OpNil:
			vm.push(value.Nil())
		case bytecode.OpTrue:
			vm.push(value.Bool(true))
		case bytecode.OpFalse:
			vm.push(value.Bool(false))
		case bytecode.OpPop:
			vm.pop()
		case bytecode.OpCopy:
			vm.push(vm.peek(0))

		case bytecode.OpGetLocal:
			slot := vm.readByte(frame)
			vm.push(vm.stack[frame.slots+int(slot)])
		case bytecode.OpSetLocal:
			slot := vm.readByte(frame)
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := vm.readString(frame, vm.readByte(frame))
			v, ok := vm.globals.Get(name.Chars)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'", name.Chars)
			}
			vm.push(v)
		case bytecode.OpDefineGlobal:
			name := vm.readString(frame, vm.readByte(frame))
			vm.globals.Put(name.Chars, vm.pop())
		case bytecode.OpSetGlobal:
			name := vm.readString(frame, vm.readByte(frame))
			if _, ok := vm.globals.Get(name.Chars); !ok {
				return vm.runtimeError("Undefined variable '%s'", name.Chars)
			}
			vm.globals.Put(name.Chars, vm.peek(0))

		case bytecode.OpGetUpvalue:
			idx := vm.readByte(frame)
			vm.push(frame.closure.Upvalues[idx].Get())
		case bytecode.OpSetUpvalue:
			idx := vm.readByte(frame)
			frame.closure.Upvalues[idx].Set(vm.peek(0))

		case bytecode.OpGetProperty:
			name := vm.readString(frame, vm.readByte(frame))
			v, rtErr := vm.getProperty(name.Chars)
			if rtErr != nil {
				return rtErr
			}
			vm.pop()
			vm.push(v)
		case bytecode.OpSetProperty:
			name := vm.readString(frame, vm.readByte(frame))
			instance, ok := vm.peek(1).AsObj().(*value.ObjInstance)
			if !ok {
				return vm.runtimeError("only instances have fields")
			}
			val := vm.pop()
			instance.Fields[name.Chars] = val
			vm.pop()
			vm.push(val)
		case bytecode.OpGetSuper:
			name := vm.readString(frame, vm.readByte(frame))
			superclass := vm.pop().AsObj().(*value.ObjClass)
			bound, rtErr := vm.bindMethod(superclass, name.Chars)
			if rtErr != nil {
				return rtErr
			}
			vm.pop()
			vm.push(bound)

		case bytecode.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(a.Equal(b)))
		case bytecode.OpGreater:
			if rtErr := vm.numericCompare(func(a, b float64) bool { return a > b }); rtErr != nil {
				return rtErr
			}
		case bytecode.OpLess:
			if rtErr := vm.numericCompare(func(a, b float64) bool { return a < b }); rtErr != nil {
				return rtErr
			}

		case bytecode.OpAdd, bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide, bytecode.OpPow:
			if rtErr := vm.arith(op); rtErr != nil {
				return rtErr
			}
		case bytecode.OpMod:
			b, a := vm.pop(), vm.pop()
			if !a.IsNumber() || !b.IsNumber() {
				return vm.runtimeError("operands must be numbers")
			}
			ai, bi := int64(a.AsNumber()), int64(b.AsNumber())
			if bi == 0 {
				return vm.runtimeError("modulo by zero")
			}
			vm.push(value.Number(float64(ai % bi)))

		case bytecode.OpNot:
			vm.push(value.Bool(vm.pop().IsFalsey()))
		case bytecode.OpNegate:
			v := vm.pop()
			if !v.IsNumber() {
				return vm.runtimeError("operand must be a number")
			}
			vm.push(value.Number(-v.AsNumber()))
		case bytecode.OpIncrement:
			v := vm.pop()
			if !v.IsNumber() {
				return vm.runtimeError("operand must be a number")
			}
			vm.push(value.Number(v.AsNumber() + 1))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.out, vm.pop().String())

		case bytecode.OpJump:
			offset := vm.readShort(frame)
			frame.ip += int(offset)
		case bytecode.OpJumpIfFalse:
			offset := vm.readShort(frame)
			if vm.peek(0).IsFalsey() {
				frame.ip += int(offset)
			}
		case bytecode.OpLoop:
			offset := vm.readShort(frame)
			frame.ip -= int(offset)

		case bytecode.OpCall:
			argc := int(vm.readByte(frame))
			if rtErr := vm.callValue(vm.peek(argc), argc); rtErr != nil {
				return rtErr
			}
			frame = vm.currentFrame()
		case bytecode.OpInvoke:
			name := vm.readString(frame, vm.readByte(frame))
			argc := int(vm.readByte(frame))
			if rtErr := vm.invoke(name.Chars, argc); rtErr != nil {
				return rtErr
			}
			frame = vm.currentFrame()
		case bytecode.OpSuperInvoke:
			name := vm.readString(frame, vm.readByte(frame))
			argc := int(vm.readByte(frame))
			superclass := vm.pop().AsObj().(*value.ObjClass)
			if rtErr := vm.invokeFromClass(superclass, name.Chars, argc); rtErr != nil {
				return rtErr
			}
			frame = vm.currentFrame()

		case bytecode.OpClosure:
			fn := vm.readConstant(frame, vm.readByte(frame)).AsObj().(*value.ObjFunction)
			closure := &value.ObjClosure{Fn: fn, Upvalues: make([]*value.ObjUpvalue, fn.UpvalueCount)}
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte(frame)
				index := vm.readByte(frame)
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			vm.push(value.FromObj(closure))
		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()
		case bytecode.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			vm.stackTop = frame.slots
			vm.push(result)
			if vm.frameCount == base {
				return nil
			}
			frame = vm.currentFrame()

		case bytecode.OpClass:
			name := vm.readString(frame, vm.readByte(frame))
			vm.push(value.FromObj(&value.ObjClass{Name: name.Chars, Methods: make(map[string]*value.ObjClosure)}))
		case bytecode.OpInherit:
			superVal := vm.peek(1)
			superclass, ok := superVal.AsObj().(*value.ObjClass)
			if !ok {
				return vm.runtimeError("superclass must be a class")
			}
			subclass := vm.peek(0).AsObj().(*value.ObjClass)
			for name, method := range superclass.Methods {
				subclass.Methods[name] = method
			}
			subclass.Superclass = superclass
			vm.pop()
		case bytecode.OpMethod:
			name := vm.readString(frame, vm.readByte(frame))
			method := vm.pop().AsObj().(*value.ObjClosure)
			class := vm.peek(0).AsObj().(*value.ObjClass)
			class.Methods[name.Chars] = method

		case bytecode.OpBuildList:
			n := int(vm.readByte(frame))
			items := make([]value.Value, n)
			copy(items, vm.stack[vm.stackTop-n:vm.stackTop])
			vm.stackTop -= n
			vm.push(value.FromObj(&value.ObjList{Items: items}))
		case bytecode.OpBuildTuple:
			n := int(vm.readByte(frame))
			items := make([]value.Value, n)
			copy(items, vm.stack[vm.stackTop-n:vm.stackTop])
			vm.stackTop -= n
			vm.push(value.FromObj(&value.ObjTuple{Items: items}))
		case bytecode.OpGenerateList:
			high := vm.pop()
			low := vm.pop()
			if !low.IsNumber() || !high.IsNumber() {
				return vm.runtimeError("range bounds must be numbers")
			}
			lo, hi := int(low.AsNumber()), int(high.AsNumber())
			items := make([]value.Value, 0, maxInt(hi-lo, 0))
			for i := lo; i < hi; i++ {
				items = append(items, value.Number(float64(i)))
			}
			vm.push(value.FromObj(&value.ObjList{Items: items}))

		case bytecode.OpIndexGet:
			if rtErr := vm.indexGet(); rtErr != nil {
				return rtErr
			}
		case bytecode.OpIndexSet:
			if rtErr := vm.indexSet(); rtErr != nil {
				return rtErr
			}
		case bytecode.OpIterator:
			if rtErr := vm.makeIterator(); rtErr != nil {
				return rtErr
			}
		case bytecode.OpForIterator:
			offset := vm.readShort(frame)
			it, ok := vm.peek(0).AsObj().(*value.ObjIterator)
			if !ok {
				return vm.runtimeError("for-in requires an iterator")
			}
			next, more := it.Next()
			if !more {
				frame.ip += int(offset)
			} else {
				vm.push(next)
			}

		case bytecode.OpDefer:
			return vm.runtimeError("defer is not yet supported")

		default:
			return vm.runtimeError("unknown opcode %d", byte(op))
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (vm *VM) numericCompare(cmp func(a, b float64) bool) *RuntimeError {
	b, a := vm.pop(), vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	vm.push(value.Bool(cmp(a.AsNumber(), b.AsNumber())))
	return nil
}

// arith implements ADD/SUBTRACT/MULTIPLY/DIVIDE/POW, including ADD's
// string-concatenation overload and the elementwise list-vs-number
// overload shared by all five operators.
func (vm *VM) arith(op bytecode.Op) *RuntimeError {
	b, a := vm.pop(), vm.pop()

	if op == bytecode.OpAdd {
		if as, ok := a.AsObj().(*value.ObjString); a.IsObj() && ok {
			if bs, ok2 := b.AsObj().(*value.ObjString); b.IsObj() && ok2 {
				vm.push(value.FromObj(vm.strings.Intern(as.Chars + bs.Chars)))
				return nil
			}
		}
	}

	if list, ok := a.AsObj().(*value.ObjList); a.IsObj() && ok && b.IsNumber() {
		applyElementwise(list, b.AsNumber(), op, false)
		vm.push(value.FromObj(list))
		return nil
	}
	if list, ok := b.AsObj().(*value.ObjList); b.IsObj() && ok && a.IsNumber() {
		applyElementwise(list, a.AsNumber(), op, true)
		vm.push(value.FromObj(list))
		return nil
	}

	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case bytecode.OpAdd:
		vm.push(value.Number(x + y))
	case bytecode.OpSubtract:
		vm.push(value.Number(x - y))
	case bytecode.OpMultiply:
		vm.push(value.Number(x * y))
	case bytecode.OpDivide:
		vm.push(value.Number(x / y))
	case bytecode.OpPow:
		vm.push(value.Number(math.Pow(x, y)))
	}
	return nil
}

// applyElementwise mutates list in place, applying op against scalar to
// every numeric element; non-numeric elements pass through unchanged.
// swapped indicates the scalar was the left operand (`number - list`),
// which matters for non-commutative operators.
func applyElementwise(list *value.ObjList, scalar float64, op bytecode.Op, swapped bool) {
	for i, v := range list.Items {
		if !v.IsNumber() {
			continue
		}
		n := v.AsNumber()
		var result float64
		a, b := n, scalar
		if swapped {
			a, b = scalar, n
		}
		switch op {
		case bytecode.OpAdd:
			result = a + b
		case bytecode.OpSubtract:
			result = a - b
		case bytecode.OpMultiply:
			result = a * b
		case bytecode.OpDivide:
			result = a / b
		case bytecode.OpPow:
			result = math.Pow(a, b)
		}
		list.Items[i] = value.Number(result)
	}
}
