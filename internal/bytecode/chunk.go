package bytecode

import (
	"encoding/binary"

	"github.com/ramsaycarslaw/mt/internal/value"
)

// MaxConstants is the per-function cap on the constant pool; an index
// into it is encoded as a single byte.
const MaxConstants = 256

// Chunk is one function's compiled bytecode: a flat byte stream, a
// parallel line table (one entry per byte, not per instruction, so
// that disassembly and runtime errors can map any byte back to its
// source line without a separate run-length table), and the constant
// pool that OP_CONSTANT indexes into.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
}

// Write appends a single opcode or raw operand byte, recording the
// source line it came from.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode.
func (c *Chunk) WriteOp(op Op, line int) {
	c.Write(byte(op), line)
}

// WriteShort appends a 16-bit big-endian operand, used for jump
// offsets and any index that can exceed 255.
func (c *Chunk) WriteShort(v uint16, line int) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	c.Write(buf[0], line)
	c.Write(buf[1], line)
}

// ReadShort decodes the 16-bit big-endian operand at offset.
func (c *Chunk) ReadShort(offset int) uint16 {
	return binary.BigEndian.Uint16(c.Code[offset : offset+2])
}

// AddConstant appends v to the constant pool and returns its index.
// Callers are responsible for enforcing MaxConstants; the compiler
// reports "too many constants in function" rather than let this wrap.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// PatchJump backfills the 16-bit operand at offset with the distance
// from just after that operand to the current end of Code, used once
// a jump's target is known.
func (c *Chunk) PatchJump(offset int) {
	jump := len(c.Code) - offset - 2
	binary.BigEndian.PutUint16(c.Code[offset:offset+2], uint16(jump))
}
