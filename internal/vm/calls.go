package vm

import "github.com/ramsaycarslaw/mt/internal/value"

// callValue dispatches OP_CALL's callee-type switch: closures push a
// frame, natives run inline, classes instantiate (running `init` if
// present), and bound methods rebind the receiver before calling
// through to their closure.
func (vm *VM) callValue(callee value.Value, argCount int) *RuntimeError {
	if !callee.IsObj() {
		return vm.runtimeError("can only call functions and classes")
	}
	switch obj := callee.AsObj().(type) {
	case *value.ObjClosure:
		return vm.call(obj, argCount)
	case *value.ObjNative:
		return vm.callNative(obj, argCount)
	case *value.ObjClass:
		return vm.instantiate(obj, argCount)
	case *value.ObjBoundMethod:
		vm.stack[vm.stackTop-argCount-1] = obj.Receiver
		return vm.call(obj.Method, argCount)
	default:
		return vm.runtimeError("can only call functions and classes")
	}
}

func (vm *VM) call(closure *value.ObjClosure, argCount int) *RuntimeError {
	if argCount != closure.Fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d", closure.Fn.Arity, argCount)
	}
	if vm.frameCount == FramesMax {
		return vm.runtimeError("stack overflow")
	}
	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argCount - 1
	return nil
}

func (vm *VM) callNative(native *value.ObjNative, argCount int) (rtErr *RuntimeError) {
	defer func() {
		if r := recover(); r != nil {
			msg, ok := r.(string)
			if !ok {
				msg = "native function error"
			}
			rtErr = vm.runtimeError("%s", msg)
		}
	}()
	args := vm.stack[vm.stackTop-argCount : vm.stackTop]
	result := native.Fn(argCount, args)
	vm.stackTop -= argCount + 1
	vm.push(result)
	return nil
}

func (vm *VM) instantiate(class *value.ObjClass, argCount int) *RuntimeError {
	instance := &value.ObjInstance{Class: class, Fields: make(map[string]value.Value)}
	vm.stack[vm.stackTop-argCount-1] = value.FromObj(instance)

	if initializer, ok := class.FindMethod(vm.initString.Chars); ok {
		return vm.call(initializer, argCount)
	}
	if argCount != 0 {
		return vm.runtimeError("Expected 0 arguments but got %d", argCount)
	}
	return nil
}

// invoke is OP_INVOKE's fast path: GET_PROPERTY + CALL collapsed into
// one step so that a plain method call never materializes a
// BoundMethod. Field-shadowing a method still falls back to calling
// through callValue, preserving "fields win over methods" lookup order.
func (vm *VM) invoke(name string, argCount int) *RuntimeError {
	receiver := vm.peek(argCount)

	if nc, ok := receiver.AsObj().(*value.ObjNativeClass); ok {
		native, ok := nc.Methods[name]
		if !ok {
			return vm.runtimeError("undefined property '%s'", name)
		}
		return vm.callNative(native, argCount)
	}

	instance, ok := receiver.AsObj().(*value.ObjInstance)
	if !ok {
		return vm.runtimeError("only instances have methods")
	}
	if field, ok := instance.Fields[name]; ok {
		vm.stack[vm.stackTop-argCount-1] = field
		return vm.callValue(field, argCount)
	}
	method, ok := instance.Class.FindMethod(name)
	if !ok {
		return vm.runtimeError("undefined property '%s'", name)
	}
	return vm.call(method, argCount)
}

func (vm *VM) invokeFromClass(class *value.ObjClass, name string, argCount int) *RuntimeError {
	method, ok := class.FindMethod(name)
	if !ok {
		return vm.runtimeError("undefined property '%s'", name)
	}
	return vm.call(method, argCount)
}

func (vm *VM) bindMethod(class *value.ObjClass, name string) (value.Value, *RuntimeError) {
	method, ok := class.FindMethod(name)
	if !ok {
		return value.Nil(), vm.runtimeError("undefined property '%s'", name)
	}
	bound := &value.ObjBoundMethod{Receiver: vm.peek(0), Method: method}
	return value.FromObj(bound), nil
}
