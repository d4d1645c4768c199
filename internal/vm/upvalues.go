package vm

import "github.com/ramsaycarslaw/mt/internal/value"

// captureUpvalue finds or creates the open upvalue for the stack slot
// at index, keeping the VM-wide open list sorted by strictly
// decreasing slot index so closeUpvalues can stop at the first
// closed-too-early candidate.
func (vm *VM) captureUpvalue(slot int) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Slot > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.Slot == slot {
		return cur
	}

	created := &value.ObjUpvalue{Location: &vm.stack[slot], IsOpen: true, Slot: slot, Next: cur}
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above lastSlot, copying
// the live stack value into the upvalue and detaching it from the
// stack-backed storage before the frame that owns that slot goes away.
func (vm *VM) closeUpvalues(lastSlot int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Slot >= lastSlot {
		uv := vm.openUpvalues
		uv.Closed = *uv.Location
		uv.Location = &uv.Closed
		uv.IsOpen = false
		vm.openUpvalues = uv.Next
		uv.Next = nil
	}
}
