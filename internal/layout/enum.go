package layout

import (
	"fmt"
	"strconv"

	"clayout/internal/debuginfo"
	"clayout/internal/diag"
)

var enumReprs = map[uint64]string{
	1: "__s8",
	2: "__s16",
	4: "__s32",
	8: "__s64",
}

// processEnum emits the enumeration as a fixed-width integer typedef with the
// enumerators listed in comments.
func (e *Engine) processEnum(idx TypeIndex, n *debuginfo.Node, maxSize debuginfo.Size) error {
	size, ok := n.ByteSize.Get()
	if !ok {
		diag.Warnf(e.reporter, diag.LayUnknownSize, e.loc(idx, n), "enumeration %s has no size", n.Name)
		return nil
	}
	if limit, ok := maxSize.Get(); ok && size > limit {
		diag.Warnf(e.reporter, diag.LaySizeExceedsHint, e.loc(idx, n),
			"enumeration %s needs %d bytes but only %d are available", n.Name, size, limit)
		return nil
	}
	repr, ok := enumReprs[size]
	if !ok {
		diag.Warnf(e.reporter, diag.LayUnsupportedEnumWidth, e.loc(idx, n),
			"enumeration %s is %d bytes wide, expected 1, 2, 4 or 8", n.Name, size)
		return nil
	}

	name := e.alloc.Alloc(n.Name)
	lines := make([]string, 0, len(n.Enumerators)+4)
	lines = append(lines, header(n, idx), fmt.Sprintf("// --- enum %s begin ---", name))
	for _, it := range n.Enumerators {
		label := it.Name
		if label == "" {
			label = "<unknown enum item>"
		}
		value := "?"
		if it.HasValue {
			value = strconv.FormatInt(it.Value, 10)
		}
		lines = append(lines, fmt.Sprintf("// %s=%s", label, value))
	}
	lines = append(lines,
		fmt.Sprintf("// --- enum %s end ---", name),
		fmt.Sprintf("typedef %s %s;", repr, name),
	)

	e.install(idx, &TypeInfo{Name: name, PackedSize: size, Size: size})
	if err := e.emitType(idx, lines); err != nil {
		return err
	}
	return e.emitAssert(idx, fmt.Sprintf("sizeof(%s)", repr), size)
}
