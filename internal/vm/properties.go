package vm

import "github.com/ramsaycarslaw/mt/internal/value"

// getProperty resolves OP_GET_PROPERTY against the instance sitting at
// peek(0): an own field wins over a method, which is then bound to the
// receiver. The instance itself is left on the stack for the caller to
// pop once the result is ready.
func (vm *VM) getProperty(name string) (value.Value, *RuntimeError) {
	if nc, ok := vm.peek(0).AsObj().(*value.ObjNativeClass); ok {
		native, ok := nc.Methods[name]
		if !ok {
			return value.Nil(), vm.runtimeError("undefined property '%s'", name)
		}
		return value.FromObj(native), nil
	}

	instance, ok := vm.peek(0).AsObj().(*value.ObjInstance)
	if !ok {
		return value.Nil(), vm.runtimeError("only instances have properties")
	}
	if v, ok := instance.Fields[name]; ok {
		return v, nil
	}
	return vm.bindMethod(instance.Class, name)
}

// indexGet implements OP_INDEX_GET for lists, tuples, and strings, all
// 0-based; negative indices are out of range at this level.
func (vm *VM) indexGet() *RuntimeError {
	indexVal := vm.pop()
	target := vm.pop()

	if !indexVal.IsNumber() {
		return vm.runtimeError("index must be a number")
	}
	idx := int(indexVal.AsNumber())

	switch t := target.AsObj().(type) {
	case *value.ObjList:
		i, rtErr := vm.resolveIndex(idx, len(t.Items))
		if rtErr != nil {
			return rtErr
		}
		vm.push(t.Items[i])
		return nil
	case *value.ObjTuple:
		i, rtErr := vm.resolveIndex(idx, len(t.Items))
		if rtErr != nil {
			return rtErr
		}
		vm.push(t.Items[i])
		return nil
	case *value.ObjString:
		i, rtErr := vm.resolveIndex(idx, len(t.Chars))
		if rtErr != nil {
			return rtErr
		}
		vm.push(value.FromObj(vm.strings.Intern(string(t.Chars[i]))))
		return nil
	default:
		return vm.runtimeError("value is not indexable")
	}
}

// indexSet implements OP_INDEX_SET; only lists are mutable subscript
// targets, matching ObjTuple's immutability.
func (vm *VM) indexSet() *RuntimeError {
	val := vm.pop()
	indexVal := vm.pop()
	target := vm.pop()

	if !indexVal.IsNumber() {
		return vm.runtimeError("index must be a number")
	}
	list, ok := target.AsObj().(*value.ObjList)
	if !ok {
		return vm.runtimeError("only lists support item assignment")
	}
	i, rtErr := vm.resolveIndex(int(indexVal.AsNumber()), len(list.Items))
	if rtErr != nil {
		return rtErr
	}
	list.Items[i] = val
	vm.push(val)
	return nil
}

// resolveIndex bounds-checks a subscript at the opcode level. Negative
// indices are not supported here; callers wanting `xs[-1]`-style sugar
// must normalize the index themselves before it reaches OP_INDEX_GET /
// OP_INDEX_SET.
func (vm *VM) resolveIndex(idx, length int) (int, *RuntimeError) {
	if idx < 0 || idx >= length {
		return 0, vm.runtimeError("index out of range")
	}
	return idx, nil
}

// makeIterator implements OP_ITERATOR: lists, tuples, and strings (by
// rune) all produce a fresh ObjIterator snapshotting their contents.
func (vm *VM) makeIterator() *RuntimeError {
	v := vm.pop()
	switch t := v.AsObj().(type) {
	case *value.ObjList:
		items := make([]value.Value, len(t.Items))
		copy(items, t.Items)
		vm.push(value.FromObj(&value.ObjIterator{Items: items}))
	case *value.ObjTuple:
		items := make([]value.Value, len(t.Items))
		copy(items, t.Items)
		vm.push(value.FromObj(&value.ObjIterator{Items: items}))
	case *value.ObjString:
		runes := []rune(t.Chars)
		items := make([]value.Value, len(runes))
		for i, r := range runes {
			items[i] = value.FromObj(vm.strings.Intern(string(r)))
		}
		vm.push(value.FromObj(&value.ObjIterator{Items: items}))
	default:
		return vm.runtimeError("value is not iterable")
	}
	return nil
}
