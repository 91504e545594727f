package layout

import (
	"fmt"

	"clayout/internal/debuginfo"
	"clayout/internal/diag"
)

// processArray emits "typedef Elem Elem_ArrayN[N];". Elements whose metadata
// size exceeds their packed size are wrapped in a padded struct first, so
// consecutive elements keep their original stride. Nothing is emitted for an
// array that fails its size checks.
func (e *Engine) processArray(idx TypeIndex, n *debuginfo.Node, maxSize debuginfo.Size) error {
	if !n.HasTarget {
		diag.Warnf(e.reporter, diag.LayUnknownNode, e.loc(idx, n), "array has no element type")
		return nil
	}
	elem, err := e.resolve(sameInput(idx, n.Target), debuginfo.Unknown)
	if err != nil {
		return err
	}
	if elem == nil {
		diag.Warnf(e.reporter, diag.LayUnknownNode, e.loc(idx, n), "array element type has no layout")
		return nil
	}

	var count uint64
	// zero room: a flexible array member
	if limit, ok := maxSize.Get(); !ok || limit != 0 {
		size, ok := n.ByteSize.Get()
		if !ok {
			diag.Warnf(e.reporter, diag.LayUnknownSize, e.loc(idx, n), "array of %s has no size", elem.Name)
			return nil
		}
		if limit, ok := maxSize.Get(); ok && limit < size {
			diag.Warnf(e.reporter, diag.LaySizeExceedsHint, e.loc(idx, n),
				"array of %s needs %d bytes but only %d are available", elem.Name, size, limit)
			return nil
		}
		c, ok := n.Count.Get()
		if !ok {
			diag.Warnf(e.reporter, diag.LayUnknownSize, e.loc(idx, n), "array of %s has no element count", elem.Name)
			return nil
		}
		switch {
		case c == 0 && size == 0:
		case c == 0 || size%c != 0 || elem.Size != size/c:
			diag.Warnf(e.reporter, diag.LayArrayIndivisible, e.loc(idx, n),
				"array of %d bytes does not hold %d elements of %s (%d bytes)", size, c, elem.Name, elem.Size)
			return nil
		}
		count = c
	}

	elemIdent := elem.Ident()
	elemName := elem.Name
	if elem.Size > elem.PackedSize {
		wrapper := e.alloc.AllocPlain(elemIdent + "_Padded")
		elemName = "struct " + wrapper
		mems := []Member{
			{Off: 0, Len: elem.PackedSize, FieldName: "data", Decl: elem.Name + " data"},
			e.padding(elem.PackedSize, elem.Size-elem.PackedSize),
		}
		comment := fmt.Sprintf("// tyname=%s tyidx=%s", wrapper, idx)
		if _, err := e.emitMembers(idx, comment, elemName, mems); err != nil {
			return err
		}
	}

	name := e.alloc.AllocPlain(fmt.Sprintf("%s_Array%d", elemIdent, count))
	total := elem.Size * count
	e.install(idx, &TypeInfo{Name: name, PackedSize: total, Size: total})
	if err := e.emitType(idx, []string{fmt.Sprintf("typedef %s %s[%d];", elemName, name, count)}); err != nil {
		return err
	}
	return e.emitAssert(idx, fmt.Sprintf("sizeof(%s)", name), total)
}
