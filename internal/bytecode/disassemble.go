package bytecode

import (
	"fmt"
	"strings"

	"github.com/ramsaycarslaw/mt/internal/value"
)

// Disassemble renders an entire chunk as human-readable text, one line
// per instruction, under a name header. It is a debugging and
// `mt disasm` tool only; the VM never calls it.
func (c *Chunk) Disassemble(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = c.disassembleInstruction(&b, offset)
	}
	return b.String()
}

func (c *Chunk) disassembleInstruction(b *strings.Builder, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(b, "   | ")
	} else {
		fmt.Fprintf(b, "%4d ", c.Lines[offset])
	}

	op := Op(c.Code[offset])
	switch op {
	case OpNil, OpTrue, OpFalse, OpPop, OpCopy, OpEqual, OpGreater, OpLess,
		OpAdd, OpSubtract, OpMultiply, OpDivide, OpPow, OpMod, OpNot, OpNegate,
		OpIncrement, OpPrint, OpCloseUpvalue, OpReturn, OpInherit, OpGenerateList,
		OpIndexGet, OpIndexSet, OpIterator, OpDefer:
		return c.simpleInstruction(b, op, offset)
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal, OpClass, OpMethod:
		return c.constantInstruction(b, op, offset)
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall, OpBuildList, OpBuildTuple:
		return c.byteInstruction(b, op, offset)
	case OpGetProperty, OpSetProperty, OpGetSuper:
		return c.constantInstruction(b, op, offset)
	case OpInvoke, OpSuperInvoke:
		return c.invokeInstruction(b, op, offset)
	case OpJump, OpJumpIfFalse, OpForIterator:
		return c.jumpInstruction(b, op, offset, 1)
	case OpLoop:
		return c.jumpInstruction(b, op, offset, -1)
	case OpClosure:
		return c.closureInstruction(b, offset)
	default:
		fmt.Fprintf(b, "Unknown opcode %d\n", op)
		return offset + 1
	}
}

func (c *Chunk) simpleInstruction(b *strings.Builder, op Op, offset int) int {
	fmt.Fprintf(b, "%s\n", op)
	return offset + 1
}

func (c *Chunk) byteInstruction(b *strings.Builder, op Op, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(b, "%-16s %4d\n", op, slot)
	return offset + 2
}

func (c *Chunk) constantInstruction(b *strings.Builder, op Op, offset int) int {
	idx := c.Code[offset+1]
	var val string
	if int(idx) < len(c.Constants) {
		val = c.Constants[idx].String()
	}
	fmt.Fprintf(b, "%-16s %4d '%s'\n", op, idx, val)
	return offset + 2
}

func (c *Chunk) invokeInstruction(b *strings.Builder, op Op, offset int) int {
	idx := c.Code[offset+1]
	argc := c.Code[offset+2]
	var name string
	if int(idx) < len(c.Constants) {
		name = c.Constants[idx].String()
	}
	fmt.Fprintf(b, "%-16s (%d args) %4d '%s'\n", op, argc, idx, name)
	return offset + 3
}

func (c *Chunk) jumpInstruction(b *strings.Builder, op Op, offset int, sign int) int {
	jump := int(c.ReadShort(offset + 1))
	target := offset + 3 + sign*jump
	fmt.Fprintf(b, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func (c *Chunk) closureInstruction(b *strings.Builder, offset int) int {
	idx := c.Code[offset+1]
	var name string
	if int(idx) < len(c.Constants) {
		name = c.Constants[idx].String()
	}
	fmt.Fprintf(b, "%-16s %4d '%s'\n", OpClosure, idx, name)
	offset += 2
	if int(idx) < len(c.Constants) {
		if fn, ok := c.Constants[idx].AsObj().(*value.ObjFunction); ok {
			offset += 2 * fn.UpvalueCount
		}
	}
	return offset
}
