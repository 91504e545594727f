// Package testkit builds type graphs in memory and checks generated output.
package testkit

import (
	"fmt"

	"clayout/internal/debuginfo"
)

// Source is an in-memory debuginfo.Source. Offsets are handed out in
// creation order starting at 0x10.
type Source struct {
	path  string
	nodes map[debuginfo.Offset]*debuginfo.Node
	order []debuginfo.Offset
	next  debuginfo.Offset
}

var _ debuginfo.Source = (*Source)(nil)

func NewSource(path string) *Source {
	return &Source{
		path:  path,
		nodes: make(map[debuginfo.Offset]*debuginfo.Node),
		next:  0x10,
	}
}

func (s *Source) Path() string { return s.path }

func (s *Source) Node(off debuginfo.Offset) (*debuginfo.Node, error) {
	n, ok := s.nodes[off]
	if !ok {
		return nil, fmt.Errorf("%s: no type node at 0x%x", s.path, off)
	}
	cp := *n
	return &cp, nil
}

func (s *Source) Types() []debuginfo.TypeEntry {
	out := make([]debuginfo.TypeEntry, 0, len(s.order))
	for _, off := range s.order {
		n := s.nodes[off]
		out = append(out, debuginfo.TypeEntry{
			Offset:      off,
			Kind:        n.Kind,
			Declaration: n.Declaration,
			Name:        n.Name,
		})
	}
	return out
}

// Add stores n at the next free offset and returns it.
func (s *Source) Add(n debuginfo.Node) debuginfo.Offset {
	off := s.next
	s.next += 0x10
	n.Offset = off
	s.nodes[off] = &n
	s.order = append(s.order, off)
	return off
}

// Name builds a qualified name from "ns::Leaf" style segments.
func Name(segments ...string) debuginfo.TypeName {
	if len(segments) == 0 {
		return debuginfo.TypeName{}
	}
	return debuginfo.TypeName{
		Scopes: append([]string(nil), segments[:len(segments)-1]...),
		Name:   segments[len(segments)-1],
	}
}

func (s *Source) Void() debuginfo.Offset {
	return s.Add(debuginfo.Node{Kind: debuginfo.KindVoid})
}

func (s *Source) Base(name string, size uint64) debuginfo.Offset {
	return s.Add(debuginfo.Node{
		Kind:     debuginfo.KindBase,
		Name:     debuginfo.TypeName{Name: name},
		ByteSize: debuginfo.Known(size),
	})
}

func (s *Source) Typedef(name debuginfo.TypeName, target debuginfo.Offset) debuginfo.Offset {
	return s.Add(debuginfo.Node{
		Kind:      debuginfo.KindTypedef,
		Name:      name,
		Target:    target,
		HasTarget: true,
	})
}

// Modifier adds a qualifier or pointer-like node; pointer-likes get size 8.
func (s *Source) Modifier(kind debuginfo.ModifierKind, target debuginfo.Offset) debuginfo.Offset {
	n := debuginfo.Node{
		Kind:      debuginfo.KindModifier,
		Modifier:  kind,
		Target:    target,
		HasTarget: true,
	}
	if kind.PointerLike() {
		n.ByteSize = debuginfo.Known(8)
	}
	return s.Add(n)
}

func (s *Source) Pointer(target debuginfo.Offset) debuginfo.Offset {
	return s.Modifier(debuginfo.ModPointer, target)
}

// Placeholder reserves an offset for a node filled in later with Set, so
// self-referencing graphs can be built.
func (s *Source) Placeholder() debuginfo.Offset {
	return s.Add(debuginfo.Node{Kind: debuginfo.KindUnspecified})
}

// Set replaces the node at off.
func (s *Source) Set(off debuginfo.Offset, n debuginfo.Node) {
	n.Offset = off
	s.nodes[off] = &n
}

// Item describes one struct member before linearization.
type Item struct {
	Kind    debuginfo.ItemKind
	Name    string
	ByteOff uint64
	BitOff  uint64 // added to ByteOff*8
	Bits    uint64 // 0: use the type's size
	Type    debuginfo.Offset
}

func Member(name string, byteOff uint64, typ debuginfo.Offset) Item {
	return Item{Kind: debuginfo.ItemMember, Name: name, ByteOff: byteOff, Type: typ}
}

func BitField(name string, bitOff, bits uint64, typ debuginfo.Offset) Item {
	return Item{Kind: debuginfo.ItemMember, Name: name, BitOff: bitOff, Bits: bits, Type: typ}
}

func Inherit(byteOff uint64, typ debuginfo.Offset) Item {
	return Item{Kind: debuginfo.ItemInherit, ByteOff: byteOff, Type: typ}
}

// Struct adds a complete structure of the given byte size.
func (s *Source) Struct(name debuginfo.TypeName, size uint64, items ...Item) debuginfo.Offset {
	return s.Add(s.StructNode(debuginfo.KindStruct, name, size, items...))
}

// StructNode builds a struct node without adding it, for use with Set.
func (s *Source) StructNode(kind debuginfo.Kind, name debuginfo.TypeName, size uint64, items ...Item) debuginfo.Node {
	raw := make([]debuginfo.LayoutItem, 0, len(items))
	for _, it := range items {
		li := debuginfo.LayoutItem{
			Kind:      it.Kind,
			Name:      it.Name,
			BitOffset: it.ByteOff*debuginfo.BitsPerByte + it.BitOff,
			Type:      it.Type,
			HasType:   true,
		}
		if it.Bits != 0 {
			li.BitSize = debuginfo.Known(it.Bits)
		} else if bits, ok := s.bits(it.Type); ok {
			li.BitSize = debuginfo.Known(bits)
		}
		raw = append(raw, li)
	}
	n := debuginfo.Node{
		Kind:     kind,
		Name:     name,
		ByteSize: debuginfo.Known(size),
	}
	if kind == debuginfo.KindUnion {
		n.Members = raw
	} else {
		n.Layout = debuginfo.Linearize(raw, debuginfo.Known(size*debuginfo.BitsPerByte))
	}
	return n
}

// Union adds a union; all members sit at offset 0.
func (s *Source) Union(name debuginfo.TypeName, size uint64, items ...Item) debuginfo.Offset {
	return s.Add(s.StructNode(debuginfo.KindUnion, name, size, items...))
}

// Decl adds a forward declaration of a struct, union or enum.
func (s *Source) Decl(kind debuginfo.Kind, name debuginfo.TypeName) debuginfo.Offset {
	return s.Add(debuginfo.Node{Kind: kind, Name: name, Declaration: true})
}

// Enum adds an enumeration with sequential values starting at 0.
func (s *Source) Enum(name debuginfo.TypeName, size uint64, names ...string) debuginfo.Offset {
	enums := make([]debuginfo.Enumerator, 0, len(names))
	for i, n := range names {
		enums = append(enums, debuginfo.Enumerator{Name: n, Value: int64(i), HasValue: true})
	}
	return s.Add(debuginfo.Node{
		Kind:        debuginfo.KindEnum,
		Name:        name,
		ByteSize:    debuginfo.Known(size),
		Enumerators: enums,
	})
}

// Array adds an array of count elements; the byte size is derived from the
// element when known. A negative count yields an array of unknown bound.
func (s *Source) Array(elem debuginfo.Offset, count int) debuginfo.Offset {
	n := debuginfo.Node{
		Kind:      debuginfo.KindArray,
		Target:    elem,
		HasTarget: true,
	}
	if count >= 0 {
		c := uint64(count)
		n.Count = debuginfo.Known(c)
		if bits, ok := s.bits(elem); ok {
			n.ByteSize = debuginfo.Known(bits / debuginfo.BitsPerByte * c)
		}
	}
	return s.Add(n)
}

// bits follows typedefs and qualifiers to the storage size of off.
func (s *Source) bits(off debuginfo.Offset) (uint64, bool) {
	for range 64 {
		n, ok := s.nodes[off]
		if !ok {
			return 0, false
		}
		if b, ok := n.Bits(); ok {
			return b, true
		}
		if !n.HasTarget || n.Kind == debuginfo.KindArray {
			return 0, false
		}
		off = n.Target
	}
	return 0, false
}
