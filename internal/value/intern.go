package value

import "github.com/dolthub/swiss"

// Strings is an interning table: every distinct content string the
// lexer, compiler, or VM produces is allocated once and shared, so
// string equality and hashing both collapse to pointer comparison.
// Backed by a swiss-table map (grounded on the open-addressed table
// used for symbol/global lookups in the wider corpus) rather than a
// plain Go map, since it is on the hot path of every identifier and
// string-literal load.
type Strings struct {
	table *swiss.Map[string, *ObjString]
}

// NewStrings creates an empty interning table.
func NewStrings() *Strings {
	return &Strings{table: swiss.NewMap[string, *ObjString](64)}
}

// Intern returns the canonical *ObjString for chars, allocating and
// registering one if this is the first time chars has been seen.
func (s *Strings) Intern(chars string) *ObjString {
	if existing, ok := s.table.Get(chars); ok {
		return existing
	}
	str := &ObjString{Chars: chars, Hash: FNV1a32(chars)}
	s.table.Put(chars, str)
	return str
}

// Len reports how many distinct strings are currently interned.
func (s *Strings) Len() int { return s.table.Count() }
