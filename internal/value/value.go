// Package value implements the MT value and object model: the tagged
// union every stack slot and constant pool entry holds, the heap object
// graph reachable through it, and string interning.
package value

import (
	"fmt"
	"math"
)

// Kind discriminates the tagged union a Value holds.
type Kind byte

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is MT's universal runtime representation: nil, a bool, a
// float64, or a pointer to a heap Obj. It is passed by value everywhere
// the VM and compiler move data around, mirroring the teacher's use of
// plain interface{} stack slots but with an explicit tag instead of a
// Go type switch on every access.
type Value struct {
	kind Kind
	num  float64
	obj  Obj
}

func Nil() Value                { return Value{kind: KindNil} }
func Bool(b bool) Value         { return Value{kind: KindBool, num: boolToFloat(b)} }
func Number(n float64) Value    { return Value{kind: KindNumber, num: n} }
func FromObj(o Obj) Value       { return Value{kind: KindObj, obj: o} }

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool    { return v.kind == KindObj }

func (v Value) AsBool() bool     { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObj() Obj        { return v.obj }

// IsFalsey implements MT truthiness: nil and false are falsey,
// everything else (including 0 and "") is truthy.
func (v Value) IsFalsey() bool {
	return v.kind == KindNil || (v.kind == KindBool && v.num == 0)
}

// Equal implements value equality: numbers and bools compare by value,
// interned strings compare by content (which, once interned, reduces to
// pointer identity), and every other object compares by identity.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool, KindNumber:
		return v.num == other.num
	case KindObj:
		if vs, ok := v.obj.(*ObjString); ok {
			if os, ok := other.obj.(*ObjString); ok {
				return vs == os
			}
			return false
		}
		return v.obj == other.obj
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return fmt.Sprintf("%t", v.AsBool())
	case KindNumber:
		return formatNumber(v.num)
	case KindObj:
		return v.obj.String()
	}
	return "<invalid>"
}

func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "nan"
	case n == float64(int64(n)):
		return fmt.Sprintf("%d", int64(n))
	default:
		return fmt.Sprintf("%g", n)
	}
}

// TypeName returns the MT-level type name: "nil", "bool", "number", or
// the object's ObjType.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObj:
		return v.obj.ObjType()
	}
	return "unknown"
}
