package value

import (
	"fmt"
	"strings"
)

// Obj is the interface every heap-allocated MT value implements.
// Strings, functions, closures, classes, instances, lists, tuples and
// iterators are all Obj; equality for everything except interned
// strings is pointer identity, enforced by Value.Equal.
type Obj interface {
	ObjType() string
	String() string
}

// ObjString is an interned string. Two ObjStrings with the same
// content are always the same pointer once interned through a Strings table,
// so comparison and hashing are cheap.
type ObjString struct {
	Chars string
	Hash  uint32
}

func (s *ObjString) ObjType() string { return "string" }
func (s *ObjString) String() string  { return s.Chars }

// FNV1a32 computes the hash stored in ObjString.Hash. The interning
// table is keyed by the string's content, not by this hash.
func FNV1a32(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// Function is a compiled, un-closed-over function: its bytecode plus
// arity and upvalue metadata. Chunk is declared as an interface{} here
// to avoid an import cycle with package bytecode, which itself stores
// Values in its constant pool; the compiler and VM both know the
// concrete type is *bytecode.Chunk.
type ObjFunction struct {
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        interface{}
}

func (f *ObjFunction) ObjType() string { return "function" }
func (f *ObjFunction) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}

// ObjUpvalue is a reference cell closing over a stack slot. While Open
// it points at a live VM stack slot (Location); once the frame that
// owns the slot returns, the VM closes it by copying the value into
// Closed and flipping IsOpen off.
type ObjUpvalue struct {
	Location *Value
	Closed   Value
	IsOpen   bool
	Slot     int         // stack index Location refers to while IsOpen
	Next     *ObjUpvalue // intrusive list, sorted by descending slot address
}

func (u *ObjUpvalue) ObjType() string { return "upvalue" }
func (u *ObjUpvalue) String() string  { return "<upvalue>" }

// Get dereferences the upvalue regardless of open/closed state.
func (u *ObjUpvalue) Get() Value {
	if u.IsOpen {
		return *u.Location
	}
	return u.Closed
}

// Set writes through the upvalue regardless of open/closed state.
func (u *ObjUpvalue) Set(v Value) {
	if u.IsOpen {
		*u.Location = v
		return
	}
	u.Closed = v
}

// ObjClosure pairs a Function with its captured upvalues.
type ObjClosure struct {
	Fn       *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) ObjType() string { return "closure" }
func (c *ObjClosure) String() string  { return c.Fn.String() }

// NativeFn is the host callback ABI: argc plus the argument slice in,
// a single Value out. Native functions signal errors by panicking with
// a string, which the VM's call frame converts into a runtime error.
type NativeFn func(argCount int, args []Value) Value

// ObjNative wraps a NativeFn so it can live in a Value and be called
// through the same OP_CALL path as a closure.
type ObjNative struct {
	Name string
	Fn   NativeFn
}

func (n *ObjNative) ObjType() string { return "native" }
func (n *ObjNative) String() string  { return fmt.Sprintf("<native fn %s>", n.Name) }

// ObjClass is a user-defined class: its method table and, for runtime
// inheritance checks, its resolved superclass.
type ObjClass struct {
	Name       string
	Superclass *ObjClass
	Methods    map[string]*ObjClosure
}

func (c *ObjClass) ObjType() string { return "class" }
func (c *ObjClass) String() string  { return fmt.Sprintf("<class %s>", c.Name) }

// FindMethod walks the inheritance chain looking up a method by name.
func (c *ObjClass) FindMethod(name string) (*ObjClosure, bool) {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// ObjNativeClass is a namespace of host-implemented static methods,
// the vehicle natives modules (math, strings, http, ...) register
// themselves under. It never has instances.
type ObjNativeClass struct {
	Name    string
	Methods map[string]*ObjNative
}

func (n *ObjNativeClass) ObjType() string { return "native class" }
func (n *ObjNativeClass) String() string  { return fmt.Sprintf("<native class %s>", n.Name) }

// ObjInstance is a live object: a pointer back to its class plus a
// field table.
type ObjInstance struct {
	Class  *ObjClass
	Fields map[string]Value
}

func (i *ObjInstance) ObjType() string { return "instance" }
func (i *ObjInstance) String() string  { return fmt.Sprintf("<%s instance>", i.Class.Name) }

// ObjBoundMethod pairs a receiver with the closure found for a method
// lookup, so that later calling it supplies `this` without another
// lookup.
type ObjBoundMethod struct {
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) ObjType() string { return "bound method" }
func (b *ObjBoundMethod) String() string  { return b.Method.String() }

// ObjList is a mutable, growable sequence.
type ObjList struct {
	Items []Value
}

func (l *ObjList) ObjType() string { return "list" }
func (l *ObjList) String() string {
	parts := make([]string, len(l.Items))
	for i, v := range l.Items {
		parts[i] = quoteIfString(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjTuple is an immutable fixed-size sequence.
type ObjTuple struct {
	Items []Value
}

func (t *ObjTuple) ObjType() string { return "tuple" }
func (t *ObjTuple) String() string {
	parts := make([]string, len(t.Items))
	for i, v := range t.Items {
		parts[i] = quoteIfString(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func quoteIfString(v Value) string {
	if v.IsObj() {
		if s, ok := v.AsObj().(*ObjString); ok {
			return fmt.Sprintf("%q", s.Chars)
		}
	}
	return v.String()
}

// ObjIterator walks a list, tuple, or range without exposing its
// backing index to MT code.
type ObjIterator struct {
	Items []Value
	Pos   int
}

func (it *ObjIterator) ObjType() string { return "iterator" }
func (it *ObjIterator) String() string  { return "<iterator>" }

// Next returns the next item and advances, or ok=false when exhausted.
func (it *ObjIterator) Next() (Value, bool) {
	if it.Pos >= len(it.Items) {
		return Value{}, false
	}
	v := it.Items[it.Pos]
	it.Pos++
	return v, true
}

// ObjModule is a named table of globals. Nothing in this module creates
// one: `use` directives are inlined textually by package driver before
// compilation.
type ObjModule struct {
	Name    string
	Globals map[string]Value
}

func (m *ObjModule) ObjType() string { return "module" }
func (m *ObjModule) String() string  { return fmt.Sprintf("<module %s>", m.Name) }
