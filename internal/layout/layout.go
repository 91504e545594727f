// Package layout rebuilds C type definitions from a debuginfo type graph.
//
// Every reconstructed struct and union is emitted with
// __attribute__((__packed__)) and explicit padding fields, so its layout no
// longer depends on the compiler that consumes the header. Each definition is
// paired with runtime checks of every field offset and size.
package layout

import (
	"fmt"
	"strings"

	"clayout/internal/debuginfo"
	"clayout/internal/emit"
	"clayout/internal/ident"
)

// TypeIndex identifies a type node across all inputs.
type TypeIndex struct {
	Input  int
	Offset debuginfo.Offset
}

func (i TypeIndex) String() string {
	return fmt.Sprintf("%d:0x%x", i.Input, uint64(i.Offset))
}

// TypeInfo is the resolved form of a type.
//
// Name is a C type expression ("struct Foo", "long int", "Foo*").
// PackedSize is the size of the packed reconstruction, Size the size the
// metadata reports; PackedSize <= Size. For a struct ending in tail padding
// the two differ, e.g. { long l; char c; } has PackedSize 9 and Size 16.
type TypeInfo struct {
	Name       string
	PackedSize uint64
	Size       uint64
}

// Ident returns an identifier fragment derived from the last word of Name.
func (t *TypeInfo) Ident() string {
	fields := strings.Fields(t.Name)
	if len(fields) == 0 {
		return ""
	}
	return ident.Part(fields[len(fields)-1])
}

// Member is one field of an emitted struct or union.
type Member struct {
	Off       uint64
	Len       uint64
	FieldName string
	Decl      string // e.g. "__u8 __padding33[3]"
	Padding   bool   // synthesized gap filler
}

func (e *Engine) padding(off, length uint64) Member {
	name := e.counter.Name("__padding")
	return Member{
		Off:       off,
		Len:       length,
		FieldName: name,
		Decl:      fmt.Sprintf("__u8 %s[%d]", name, length),
		Padding:   true,
	}
}

// placeholder is an opaque byte array standing in for a field that cannot be
// expressed (bit-fields, unknown types, variant parts).
func (e *Engine) placeholder(off, length uint64, prefix string) Member {
	name := e.counter.Name(prefix)
	return Member{
		Off:       off,
		Len:       length,
		FieldName: name,
		Decl:      fmt.Sprintf("__u8 %s[%d]", name, length),
	}
}

func (m Member) asserts(tydef string) []emit.EqAssert {
	return []emit.EqAssert{
		{Expr: fmt.Sprintf("(long int)(&(((%s*)0)->%s))", tydef, m.FieldName), Want: m.Off},
		{Expr: fmt.Sprintf("sizeof(((%s*)0)->%s)", tydef, m.FieldName), Want: m.Len},
	}
}

// memberName keeps names that are valid identifiers.
func (e *Engine) memberName(name string) string {
	if name == "" {
		return e.counter.Name("__anon")
	}
	if ident.Valid(name) {
		return name
	}
	return e.counter.Name("__mem")
}
