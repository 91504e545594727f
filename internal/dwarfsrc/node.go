package dwarfsrc

import (
	"debug/dwarf"
	"fmt"

	"fortio.org/safecast"
	"github.com/go-delve/delve/pkg/dwarf/godwarf"

	"clayout/internal/debuginfo"
)

// Node decodes the type entry at off together with its direct children.
func (f *File) Node(off debuginfo.Offset) (*debuginfo.Node, error) {
	doff, err := safecast.Conv[dwarf.Offset](uint64(off))
	if err != nil {
		return nil, fmt.Errorf("offset 0x%x: %w", uint64(off), err)
	}
	r := f.data.Reader()
	r.Seek(doff)
	e, err := r.Next()
	if err != nil {
		return nil, err
	}
	if e == nil || e.Offset != doff {
		return nil, fmt.Errorf("no entry at 0x%x", uint64(off))
	}
	kind, mod, ok := kindOf(e.Tag)
	if !ok {
		return nil, fmt.Errorf("entry at 0x%x is %s, not a type", uint64(off), e.Tag)
	}

	n := &debuginfo.Node{
		Offset:   off,
		Kind:     kind,
		Modifier: mod,
		Name:     f.nameOf(off, e),
	}
	n.Declaration, _ = e.Val(dwarf.AttrDeclaration).(bool)
	if v, ok := attrUint(e.Val(dwarf.AttrByteSize)); ok {
		n.ByteSize = debuginfo.Known(v)
	}
	if v, ok := attrUint(e.Val(dwarf.AttrBitSize)); ok {
		n.BitSize = debuginfo.Known(v)
	}
	if t, ok := e.Val(dwarf.AttrType).(dwarf.Offset); ok {
		n.Target = debuginfo.Offset(t)
		n.HasTarget = true
	}

	switch kind {
	case debuginfo.KindModifier:
		if mod.PointerLike() && !n.ByteSize.Known && f.addrSize > 0 {
			n.ByteSize = debuginfo.Known(uint64(f.addrSize))
		}
	case debuginfo.KindStruct, debuginfo.KindUnion, debuginfo.KindEnum, debuginfo.KindArray:
		if !e.Children {
			break
		}
		if err := f.children(r, n); err != nil {
			return nil, fmt.Errorf("children of 0x%x: %w", uint64(off), err)
		}
	}
	if kind == debuginfo.KindStruct && !n.Declaration {
		total := debuginfo.Unknown
		if bits, ok := n.Bits(); ok {
			total = debuginfo.Known(bits)
		}
		n.Layout = debuginfo.Linearize(n.Layout, total)
	}
	if kind == debuginfo.KindArray && !n.ByteSize.Known && n.Count.Known {
		if sz, ok := f.typeBytes(doff); ok {
			n.ByteSize = debuginfo.Known(sz)
		}
	}
	return n, nil
}

func (f *File) nameOf(off debuginfo.Offset, e *dwarf.Entry) debuginfo.TypeName {
	if name, ok := f.names[off]; ok {
		return name
	}
	return debuginfo.TypeName{Name: entryName(e)}
}

// children consumes the direct children of the entry r just returned.
func (f *File) children(r *dwarf.Reader, n *debuginfo.Node) error {
	count := debuginfo.Known(1)
	dims := 0
	for {
		c, err := r.Next()
		if err != nil {
			return err
		}
		if c == nil || c.Tag == 0 {
			break
		}
		switch {
		case n.Kind == debuginfo.KindStruct && (c.Tag == dwarf.TagMember || c.Tag == dwarf.TagInheritance || c.Tag == dwarf.TagVariantPart):
			switch it, st := f.structItem(c); st {
			case itemPlaced:
				n.Layout = append(n.Layout, it)
			case itemUnplaced:
				n.Unplaced = append(n.Unplaced, it.Name)
			}
		case n.Kind == debuginfo.KindUnion && c.Tag == dwarf.TagMember:
			switch it, st := f.structItem(c); st {
			case itemPlaced:
				n.Members = append(n.Members, it)
			case itemUnplaced:
				n.Unplaced = append(n.Unplaced, it.Name)
			}
		case n.Kind == debuginfo.KindEnum && c.Tag == dwarf.TagEnumerator:
			it := debuginfo.Enumerator{Name: entryName(c)}
			it.Value, it.HasValue = c.Val(dwarf.AttrConstValue).(int64)
			n.Enumerators = append(n.Enumerators, it)
		case n.Kind == debuginfo.KindArray && c.Tag == dwarf.TagSubrangeType:
			dims++
			dim, ok := subrangeCount(c)
			if !ok || !count.Known {
				count = debuginfo.Unknown
			} else {
				count = debuginfo.Known(count.Value * dim)
			}
		}
		if c.Children {
			r.SkipChildren()
		}
	}
	if n.Kind == debuginfo.KindArray && dims > 0 {
		n.Count = count
	}
	return nil
}

type itemStatus uint8

const (
	itemPlaced itemStatus = iota
	itemStatic
	itemUnplaced // location present but not decodable
)

// structItem decodes a member, base class or variant part. Static members
// take no room in the object.
func (f *File) structItem(c *dwarf.Entry) (debuginfo.LayoutItem, itemStatus) {
	it := debuginfo.LayoutItem{Name: entryName(c)}
	switch c.Tag {
	case dwarf.TagInheritance:
		it.Kind = debuginfo.ItemInherit
	case dwarf.TagVariantPart:
		it.Kind = debuginfo.ItemVariantPart
	default:
		it.Kind = debuginfo.ItemMember
		if ext, _ := c.Val(dwarf.AttrExternal).(bool); ext {
			return it, itemStatic
		}
		if decl, _ := c.Val(dwarf.AttrDeclaration).(bool); decl {
			return it, itemStatic
		}
	}
	if t, ok := c.Val(dwarf.AttrType).(dwarf.Offset); ok {
		it.Type = debuginfo.Offset(t)
		it.HasType = true
	}

	if bits, ok := attrUint(c.Val(dwarf.AttrBitSize)); ok {
		it.BitSize = debuginfo.Known(bits)
	} else if it.HasType && it.Kind != debuginfo.ItemVariantPart {
		if sz, ok := f.typeBytes(dwarf.Offset(it.Type)); ok {
			it.BitSize = debuginfo.Known(sz * 8)
		}
	}

	var byteOff uint64
	if loc := c.Val(dwarf.AttrDataMemberLoc); loc != nil {
		off, ok := memberByteOffset(loc)
		if !ok {
			return it, itemUnplaced
		}
		byteOff = off
	}
	switch {
	case c.Val(dwarf.AttrDataBitOffset) != nil:
		bitOff, ok := attrUint(c.Val(dwarf.AttrDataBitOffset))
		if !ok {
			return it, itemUnplaced
		}
		it.BitOffset = bitOff
	case c.Val(dwarf.AttrBitOffset) != nil:
		bitOff, ok1 := attrUint(c.Val(dwarf.AttrBitOffset))
		storage, ok2 := attrUint(c.Val(dwarf.AttrByteSize))
		if !ok2 && it.HasType {
			storage, ok2 = f.typeBytes(dwarf.Offset(it.Type))
		}
		if !ok1 || !ok2 || !it.BitSize.Known {
			return it, itemUnplaced
		}
		pos, ok := legacyBitOffset(byteOff, storage, bitOff, it.BitSize.Value, f.order)
		if !ok {
			return it, itemUnplaced
		}
		it.BitOffset = pos
	default:
		it.BitOffset = byteOff * 8
	}
	return it, itemPlaced
}

func subrangeCount(c *dwarf.Entry) (uint64, bool) {
	if n, ok := attrUint(c.Val(dwarf.AttrCount)); ok {
		return n, true
	}
	upper, ok := c.Val(dwarf.AttrUpperBound).(int64)
	if !ok {
		return 0, false
	}
	lower, _ := c.Val(dwarf.AttrLowerBound).(int64)
	if upper+1 < lower {
		return 0, false
	}
	return attrUint(upper + 1 - lower)
}

// typeBytes returns the storage size of the type at off, following typedefs
// and qualifiers. Incomplete types have no size.
func (f *File) typeBytes(off dwarf.Offset) (uint64, bool) {
	t, err := godwarf.ReadType(f.data, 0, off, f.types)
	if err != nil {
		return 0, false
	}
	sz := storageSize(t)
	if sz < 0 {
		return 0, false
	}
	return attrUint(sz)
}

// storageSize is godwarf's Size, except that arrays without DW_AT_byte_size
// are measured from their element type and incomplete aggregates are -1.
func storageSize(t godwarf.Type) int64 {
	t = resolveTypedef(t)
	if t == nil {
		return -1
	}
	switch tt := t.(type) {
	case *godwarf.StructType:
		if tt.Incomplete {
			return -1
		}
	case *godwarf.ArrayType:
		if tt.ByteSize >= 0 {
			break
		}
		if tt.Count < 0 {
			return -1
		}
		elem := storageSize(tt.Type)
		if elem < 0 {
			return -1
		}
		return elem * tt.Count
	}
	return t.Size()
}

func resolveTypedef(t godwarf.Type) godwarf.Type {
	for range 64 {
		switch tt := t.(type) {
		case *godwarf.TypedefType:
			t = tt.Type
		case *godwarf.QualType:
			t = tt.Type
		default:
			return t
		}
	}
	return t
}
