package dwarfsrc

import (
	"debug/dwarf"

	"golang.org/x/text/unicode/norm"

	"clayout/internal/debuginfo"
)

const (
	tagSharedType    dwarf.Tag = 0x40
	tagAtomicType    dwarf.Tag = 0x47
	tagImmutableType dwarf.Tag = 0x4b
)

// kindOf maps a DWARF tag to a type node kind.
func kindOf(tag dwarf.Tag) (debuginfo.Kind, debuginfo.ModifierKind, bool) {
	switch tag {
	case dwarf.TagBaseType:
		return debuginfo.KindBase, 0, true
	case dwarf.TagTypedef:
		return debuginfo.KindTypedef, 0, true
	case dwarf.TagStructType, dwarf.TagClassType:
		return debuginfo.KindStruct, 0, true
	case dwarf.TagUnionType:
		return debuginfo.KindUnion, 0, true
	case dwarf.TagEnumerationType:
		return debuginfo.KindEnum, 0, true
	case dwarf.TagArrayType:
		return debuginfo.KindArray, 0, true
	case dwarf.TagSubroutineType:
		return debuginfo.KindFunction, 0, true
	case dwarf.TagSubrangeType:
		return debuginfo.KindSubrange, 0, true
	case dwarf.TagUnspecifiedType:
		return debuginfo.KindUnspecified, 0, true
	case dwarf.TagPtrToMemberType:
		return debuginfo.KindPointerToMember, 0, true
	case dwarf.TagPointerType:
		return debuginfo.KindModifier, debuginfo.ModPointer, true
	case dwarf.TagReferenceType:
		return debuginfo.KindModifier, debuginfo.ModReference, true
	case dwarf.TagRvalueReferenceType:
		return debuginfo.KindModifier, debuginfo.ModRvalueReference, true
	case dwarf.TagConstType:
		return debuginfo.KindModifier, debuginfo.ModConst, true
	case dwarf.TagVolatileType:
		return debuginfo.KindModifier, debuginfo.ModVolatile, true
	case dwarf.TagRestrictType:
		return debuginfo.KindModifier, debuginfo.ModRestrict, true
	case tagAtomicType:
		return debuginfo.KindModifier, debuginfo.ModAtomic, true
	case tagSharedType:
		return debuginfo.KindModifier, debuginfo.ModShared, true
	case dwarf.TagPackedType:
		return debuginfo.KindModifier, debuginfo.ModPacked, true
	case tagImmutableType:
		return debuginfo.KindModifier, debuginfo.ModOther, true
	}
	return 0, 0, false
}

// opensScope reports whether children of tag are qualified by its name.
func opensScope(tag dwarf.Tag) bool {
	switch tag {
	case dwarf.TagNamespace, dwarf.TagStructType, dwarf.TagClassType,
		dwarf.TagUnionType, dwarf.TagEnumerationType:
		return true
	}
	return false
}

func isUnit(tag dwarf.Tag) bool {
	switch tag {
	case dwarf.TagCompileUnit, dwarf.TagPartialUnit, dwarf.TagTypeUnit, dwarf.TagSkeletonUnit:
		return true
	}
	return false
}

func entryName(e *dwarf.Entry) string {
	s, _ := e.Val(dwarf.AttrName).(string)
	return norm.NFC.String(s)
}

type frame struct {
	name  string
	scope bool
}

// buildIndex walks every entry once, tracking the enclosing named scopes.
func (f *File) buildIndex() error {
	r := f.data.Reader()
	var (
		stack   []frame
		entries []debuginfo.TypeEntry
	)
	for {
		e, err := r.Next()
		if err != nil {
			return err
		}
		if e == nil {
			break
		}
		if e.Tag == 0 {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}
		if isUnit(e.Tag) {
			stack = stack[:0]
			if f.addrSize == 0 {
				f.addrSize = r.AddressSize()
			}
			if e.Children {
				stack = append(stack, frame{})
			}
			continue
		}

		name := entryName(e)
		if kind, _, ok := kindOf(e.Tag); ok {
			decl, _ := e.Val(dwarf.AttrDeclaration).(bool)
			entries = append(entries, debuginfo.TypeEntry{
				Offset:      debuginfo.Offset(e.Offset),
				Kind:        kind,
				Declaration: decl,
				Name:        debuginfo.TypeName{Scopes: scopesOf(stack), Name: name},
			})
		}
		if e.Children {
			stack = append(stack, frame{name: name, scope: opensScope(e.Tag)})
		}
	}
	f.setIndex(entries, f.addrSize)
	return nil
}

func scopesOf(stack []frame) []string {
	var out []string
	for _, fr := range stack {
		if fr.scope {
			out = append(out, fr.name)
		}
	}
	return out
}
