// Package bytecode defines the bytecode format and opcodes the MT
// compiler emits and the MT virtual machine executes.
//
// Unlike the teacher's decoded Instruction{Op, Operand} slice, a Chunk
// here is a flat byte array with a parallel line table and a constant
// pool, matching the wire contract spec.md §4.4 describes: 1-byte and
// 16-bit big-endian operands, constants indexed by a single byte (max
// 256 per function), jump offsets patched in place after the target is
// known.
package bytecode

// Op identifies a single bytecode instruction.
type Op byte

// Opcodes, in the stack-effect order spec.md §4.4 lists them.
const (
	OpConstant Op = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpCopy

	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpGetProperty
	OpSetProperty
	OpGetSuper

	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpPow
	OpMod
	OpNot
	OpNegate
	OpIncrement

	OpPrint

	OpJump
	OpJumpIfFalse
	OpLoop

	OpCall
	OpInvoke
	OpSuperInvoke

	OpClosure
	OpCloseUpvalue
	OpReturn

	OpClass
	OpInherit
	OpMethod

	OpBuildList
	OpBuildTuple
	OpGenerateList
	OpIndexGet
	OpIndexSet
	OpIterator
	OpForIterator

	OpDefer
)

var names = [...]string{
	OpConstant:      "OP_CONSTANT",
	OpNil:           "OP_NIL",
	OpTrue:          "OP_TRUE",
	OpFalse:         "OP_FALSE",
	OpPop:           "OP_POP",
	OpCopy:          "OP_COPY",
	OpGetLocal:      "OP_GET_LOCAL",
	OpSetLocal:      "OP_SET_LOCAL",
	OpGetGlobal:     "OP_GET_GLOBAL",
	OpDefineGlobal:  "OP_DEFINE_GLOBAL",
	OpSetGlobal:     "OP_SET_GLOBAL",
	OpGetUpvalue:    "OP_GET_UPVALUE",
	OpSetUpvalue:    "OP_SET_UPVALUE",
	OpGetProperty:   "OP_GET_PROPERTY",
	OpSetProperty:   "OP_SET_PROPERTY",
	OpGetSuper:      "OP_GET_SUPER",
	OpEqual:         "OP_EQUAL",
	OpGreater:       "OP_GREATER",
	OpLess:          "OP_LESS",
	OpAdd:           "OP_ADD",
	OpSubtract:      "OP_SUBTRACT",
	OpMultiply:      "OP_MULTIPLY",
	OpDivide:        "OP_DIVIDE",
	OpPow:           "OP_POW",
	OpMod:           "OP_MOD",
	OpNot:           "OP_NOT",
	OpNegate:        "OP_NEGATE",
	OpIncrement:     "OP_INCR",
	OpPrint:         "OP_PRINT",
	OpJump:          "OP_JUMP",
	OpJumpIfFalse:   "OP_JUMP_IF_FALSE",
	OpLoop:          "OP_LOOP",
	OpCall:          "OP_CALL",
	OpInvoke:        "OP_INVOKE",
	OpSuperInvoke:   "OP_SUPER_INVOKE",
	OpClosure:       "OP_CLOSURE",
	OpCloseUpvalue:  "OP_CLOSE_UPVALUE",
	OpReturn:        "OP_RETURN",
	OpClass:         "OP_CLASS",
	OpInherit:       "OP_INHERIT",
	OpMethod:        "OP_METHOD",
	OpBuildList:     "OP_BUILD_LIST",
	OpBuildTuple:    "OP_BUILD_TUPLE",
	OpGenerateList:  "OP_GENERATE_LIST",
	OpIndexGet:      "OP_INDEX_SUBSCR",
	OpIndexSet:      "OP_STORE_SUBSCR",
	OpIterator:      "OP_ITERATOR",
	OpForIterator:   "OP_FOR_ITERATOR",
	OpDefer:         "OP_DEFER",
}

// String returns the canonical mnemonic for an opcode, used by the
// disassembler and by diagnostic logging.
func (op Op) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return "OP_UNKNOWN"
}
