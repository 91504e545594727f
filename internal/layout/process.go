package layout

import (
	"fmt"

	"clayout/internal/debuginfo"
	"clayout/internal/diag"
	"clayout/internal/trace"
)

// process installs exactly one entry for idx. The sentinel is already set.
func (e *Engine) process(idx TypeIndex, maxSize debuginfo.Size) error {
	e.stats.Visited++
	n, ok := e.node(idx)
	if !ok {
		return nil
	}
	trace.Point(e.tracer, trace.ScopeType, n.Kind.String(), fmt.Sprintf("%s %s", idx, n.Name), e.span)

	switch n.Kind {
	case debuginfo.KindVoid, debuginfo.KindFunction, debuginfo.KindPointerToMember,
		debuginfo.KindSubrange, debuginfo.KindUnspecified:
		return nil
	case debuginfo.KindBase:
		return e.processBase(idx, n)
	case debuginfo.KindTypedef:
		if !n.HasTarget {
			return nil
		}
		return e.link(idx, sameInput(idx, n.Target), maxSize)
	case debuginfo.KindStruct:
		if n.Declaration {
			return e.processDecl(idx, n, maxSize)
		}
		return e.processStruct(idx, n, maxSize)
	case debuginfo.KindUnion:
		if n.Declaration {
			return e.processDecl(idx, n, maxSize)
		}
		return e.processUnion(idx, n, maxSize)
	case debuginfo.KindEnum:
		if n.Declaration {
			return e.processDecl(idx, n, maxSize)
		}
		return e.processEnum(idx, n, maxSize)
	case debuginfo.KindArray:
		return e.processArray(idx, n, maxSize)
	case debuginfo.KindModifier:
		return e.processModifier(idx, n, maxSize)
	default:
		diag.Warnf(e.reporter, diag.LayUnknownNode, e.loc(idx, n), "unsupported type node kind %s", n.Kind)
		return nil
	}
}

// processDecl links a forward declaration to the registered definition.
func (e *Engine) processDecl(idx TypeIndex, n *debuginfo.Node, maxSize debuginfo.Size) error {
	if e.names != nil && !n.Name.Anonymous() {
		if def, ok := e.names.Lookup(n.Name, n.Kind); ok && def != idx {
			return e.link(idx, def, maxSize)
		}
	}
	diag.Warnf(e.reporter, diag.LayUnresolvedDecl, e.loc(idx, n), "%s %s is declared but never defined", n.Kind, n.Name)
	return nil
}

func (e *Engine) processBase(idx TypeIndex, n *debuginfo.Node) error {
	if n.Name.Anonymous() {
		diag.Warnf(e.reporter, diag.LayMissingName, e.loc(idx, n), "base type has no name")
		return nil
	}
	size, ok := n.ByteSize.Get()
	if !ok {
		diag.Warnf(e.reporter, diag.LayUnknownSize, e.loc(idx, n), "base type %s has no size", n.Name.Name)
		return nil
	}
	name := n.Name.Name
	e.install(idx, &TypeInfo{Name: name, PackedSize: size, Size: size})
	return e.emitAssert(idx, fmt.Sprintf("sizeof(%s)", name), size)
}

func (e *Engine) processModifier(idx TypeIndex, n *debuginfo.Node, maxSize debuginfo.Size) error {
	if !n.Modifier.PointerLike() {
		if !n.HasTarget {
			return nil
		}
		return e.link(idx, sameInput(idx, n.Target), maxSize)
	}

	size, ok := n.ByteSize.Get()
	if !ok {
		diag.Warnf(e.reporter, diag.LayUnknownSize, e.loc(idx, n), "%s has no size", n.Modifier)
		return nil
	}
	if limit, ok := maxSize.Get(); ok && limit < size {
		diag.Warnf(e.reporter, diag.LaySizeExceedsHint, e.loc(idx, n),
			"%s needs %d bytes but only %d are available", n.Modifier, size, limit)
		return nil
	}

	target := "void"
	if n.HasTarget {
		info, err := e.resolve(sameInput(idx, n.Target), debuginfo.Unknown)
		if err != nil {
			return err
		}
		if info != nil {
			target = info.Name
		}
	}
	name := target + "*"
	e.install(idx, &TypeInfo{Name: name, PackedSize: size, Size: size})
	return e.emitAssert(idx, fmt.Sprintf("sizeof(%s)", name), size)
}
