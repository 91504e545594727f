package layout

import (
	"fmt"

	"clayout/internal/debuginfo"
	"clayout/internal/diag"
	"clayout/internal/emit"
)

func isBitfield(it debuginfo.LayoutItem) bool {
	bits, ok := it.BitSize.Get()
	return ok && bits%debuginfo.BitsPerByte != 0
}

// nextAligned returns the first item at or after start that begins on a byte
// boundary, or -1.
func nextAligned(items []debuginfo.LayoutItem, start int) int {
	for i := start; i < len(items); i++ {
		if items[i].BitOffset%debuginfo.BitsPerByte == 0 {
			return i
		}
	}
	return -1
}

// processStruct walks byte-aligned items; each one owns the bytes up to the
// next aligned item. Items that start mid-byte fold into the preceding span.
func (e *Engine) processStruct(idx TypeIndex, n *debuginfo.Node, maxSize debuginfo.Size) error {
	bits, ok := n.Bits()
	if !ok {
		diag.Warnf(e.reporter, diag.LayUnknownSize, e.loc(idx, n), "structure %s has no size", n.Name)
		return nil
	}
	byteSize, ok := n.ByteSize.Get()
	if !ok {
		byteSize = debuginfo.BitToByte(bits)
	}
	e.reportUnplaced(idx, n)

	items := n.Layout
	for len(items) > 0 && items[len(items)-1].Kind == debuginfo.ItemPadding {
		pad := items[len(items)-1].BitSize.Value
		bits -= min(pad, bits)
		items = items[:len(items)-1]
	}
	limit := debuginfo.BitToByte(bits)
	if hint, ok := maxSize.Get(); ok && hint < limit {
		limit = hint
	}

	mems := make([]Member, 0, len(items))
	next := nextAligned(items, 0)
	for next >= 0 {
		i := next
		next = nextAligned(items, i+1)
		item := items[i]

		off := item.BitOffset / debuginfo.BitsPerByte
		end := limit
		if next >= 0 {
			end = items[next].BitOffset / debuginfo.BitsPerByte
		}
		if end < off {
			diag.Warnf(e.reporter, diag.LayMemberBeyondSize, e.loc(idx, n),
				"member at offset %d starts beyond the %d bytes available", off, end)
			return nil
		}
		span := end - off
		if span == 0 && next >= 0 {
			continue
		}

		if isBitfield(item) {
			mems = append(mems, e.placeholder(off, span, "__bitfield"))
			continue
		}

		var name string
		switch item.Kind {
		case debuginfo.ItemPadding:
			mems = append(mems, e.padding(off, span))
			continue
		case debuginfo.ItemVariantPart:
			mems = append(mems, e.placeholder(off, span, "__variant_part"))
			continue
		case debuginfo.ItemInherit:
			name = e.counter.Name("__parent")
		default:
			name = e.memberName(item.Name)
		}
		if !item.HasType {
			mems = append(mems, e.placeholder(off, span, "__unknown_type"))
			continue
		}

		info, err := e.Resolve(sameInput(idx, item.Type), debuginfo.Known(span))
		if err != nil {
			return err
		}
		if info == nil {
			mems = append(mems, e.placeholder(off, span, "__unknown_type"))
			continue
		}
		mems = append(mems, Member{
			Off:       off,
			Len:       info.PackedSize,
			FieldName: name,
			Decl:      info.Name + " " + name,
		})
		if info.PackedSize < span {
			mems = append(mems, e.padding(off+info.PackedSize, span-info.PackedSize))
		}
	}
	for len(mems) > 0 && mems[len(mems)-1].Padding {
		mems = mems[:len(mems)-1]
	}
	if len(mems) == 0 {
		diag.Warnf(e.reporter, diag.LayEmptyStruct, e.loc(idx, n), "structure %s has no fields to emit", n.Name)
		return nil
	}

	tydef := "struct " + e.alloc.Alloc(n.Name)
	info, err := e.emitMembers(idx, header(n, idx), tydef, mems)
	if err != nil {
		return err
	}
	info.Size = max(byteSize, info.PackedSize)
	e.install(idx, info)
	return nil
}

// processUnion emits every member at offset 0 and widens the union with a
// full-size byte array so its size never depends on member layouts.
func (e *Engine) processUnion(idx TypeIndex, n *debuginfo.Node, maxSize debuginfo.Size) error {
	size, ok := n.ByteSize.Get()
	if !ok {
		diag.Warnf(e.reporter, diag.LayUnknownSize, e.loc(idx, n), "union %s has no size", n.Name)
		return nil
	}
	if limit, ok := maxSize.Get(); ok && size > limit {
		diag.Warnf(e.reporter, diag.LaySizeExceedsHint, e.loc(idx, n),
			"union %s needs %d bytes but only %d are available", n.Name, size, limit)
		return nil
	}

	e.reportUnplaced(idx, n)
	mems := make([]Member, 0, len(n.Members)+1)
	for _, m := range n.Members {
		if m.BitOffset != 0 {
			diag.Warnf(e.reporter, diag.LayUnionMemberOffset, e.loc(idx, n),
				"member %q of union %s starts at bit %d", m.Name, n.Name, m.BitOffset)
			return nil
		}
		bits, ok := m.BitSize.Get()
		if !ok {
			diag.Warnf(e.reporter, diag.LayUnionMemberSize, e.loc(idx, n),
				"member %q of union %s has no size", m.Name, n.Name)
			return nil
		}
		msize := debuginfo.BitToByte(bits)
		if isBitfield(m) {
			mems = append(mems, e.placeholder(0, msize, "__bitfield"))
			continue
		}
		name := e.memberName(m.Name)
		if !m.HasType {
			mems = append(mems, e.placeholder(0, msize, "__unknown_type"))
			continue
		}
		info, err := e.Resolve(sameInput(idx, m.Type), debuginfo.Known(msize))
		if err != nil {
			return err
		}
		if info == nil {
			mems = append(mems, e.placeholder(0, msize, "__unknown_type"))
			continue
		}
		mems = append(mems, Member{
			Len:       info.PackedSize,
			FieldName: name,
			Decl:      info.Name + " " + name,
		})
	}
	mems = append(mems, e.placeholder(0, size, "__clayout_dont_use"))

	tydef := "union " + e.alloc.Alloc(n.Name)
	info, err := e.emitMembers(idx, header(n, idx), tydef, mems)
	if err != nil {
		return err
	}
	info.Size = max(size, info.PackedSize)
	e.install(idx, info)
	return nil
}

// reportUnplaced warns about members whose location could not be decoded;
// their bytes end up in padding.
func (e *Engine) reportUnplaced(idx TypeIndex, n *debuginfo.Node) {
	for _, name := range n.Unplaced {
		diag.Warnf(e.reporter, diag.LayUnsupportedAttachment, e.loc(idx, n),
			"member %q of %s has an unsupported location and is left out", name, n.Name)
	}
}

// emitMembers writes a packed definition of tydef with its checks. The
// returned TypeInfo has Size == PackedSize; callers adjust Size.
func (e *Engine) emitMembers(idx TypeIndex, comment, tydef string, mems []Member) (*TypeInfo, error) {
	lines := make([]string, 0, len(mems)+3)
	asserts := make([]emit.EqAssert, 0, 2*len(mems)+1)
	lines = append(lines, comment, tydef+" {")
	for _, m := range mems {
		lines = append(lines, "  "+m.Decl+";")
		asserts = append(asserts, m.asserts(tydef)...)
	}
	lines = append(lines, "} __attribute__((__packed__));")

	last := mems[len(mems)-1]
	packed := last.Off + last.Len
	asserts = append(asserts, emit.EqAssert{Expr: fmt.Sprintf("sizeof(%s)", tydef), Want: packed})

	if err := e.emitType(idx, lines); err != nil {
		return nil, err
	}
	if err := e.emitAsserts(idx, asserts); err != nil {
		return nil, err
	}
	return &TypeInfo{Name: tydef, PackedSize: packed, Size: packed}, nil
}
