// Package debuginfo describes the type graph that the layout engine consumes.
//
// It is deliberately independent of any on-disk format: internal/dwarfsrc
// fills these structures from DWARF, internal/testkit fills them by hand.
package debuginfo

// Offset locates a type node inside one input's metadata.
type Offset uint64

// Kind is the closed set of type node kinds.
type Kind uint8

const (
	KindVoid Kind = iota + 1
	KindBase
	KindTypedef
	KindStruct
	KindUnion
	KindEnum
	KindArray
	KindModifier
	KindFunction
	KindSubrange
	KindUnspecified
	KindPointerToMember
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBase:
		return "base"
	case KindTypedef:
		return "typedef"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindModifier:
		return "modifier"
	case KindFunction:
		return "function"
	case KindSubrange:
		return "subrange"
	case KindUnspecified:
		return "unspecified"
	case KindPointerToMember:
		return "ptr_to_member"
	default:
		return "unknown"
	}
}

// ModifierKind distinguishes qualifier and pointer-like modifier nodes.
type ModifierKind uint8

const (
	ModPointer ModifierKind = iota + 1
	ModReference
	ModRvalueReference
	ModConst
	ModVolatile
	ModRestrict
	ModAtomic
	ModShared
	ModPacked
	ModOther
)

// PointerLike reports whether the modifier occupies storage of its own.
func (m ModifierKind) PointerLike() bool {
	return m == ModPointer || m == ModReference || m == ModRvalueReference
}

func (m ModifierKind) String() string {
	switch m {
	case ModPointer:
		return "pointer"
	case ModReference:
		return "reference"
	case ModRvalueReference:
		return "rvalue_reference"
	case ModConst:
		return "const"
	case ModVolatile:
		return "volatile"
	case ModRestrict:
		return "restrict"
	case ModAtomic:
		return "atomic"
	case ModShared:
		return "shared"
	case ModPacked:
		return "packed"
	default:
		return "other"
	}
}

// Size is an optional byte or bit quantity. The zero value is unknown.
type Size struct {
	Value uint64
	Known bool
}

// Known wraps a known quantity.
func Known(v uint64) Size { return Size{Value: v, Known: true} }

// Unknown is the absent quantity.
var Unknown = Size{}

// Get returns the value and whether it is known.
func (s Size) Get() (uint64, bool) { return s.Value, s.Known }

// ItemKind tags an entry of a linearized struct layout.
type ItemKind uint8

const (
	ItemMember ItemKind = iota + 1
	ItemInherit
	ItemPadding
	ItemVariantPart
)

func (k ItemKind) String() string {
	switch k {
	case ItemMember:
		return "member"
	case ItemInherit:
		return "inherit"
	case ItemPadding:
		return "padding"
	case ItemVariantPart:
		return "variant_part"
	default:
		return "unknown"
	}
}

// LayoutItem is one slot of a struct layout or one union member.
type LayoutItem struct {
	Kind      ItemKind
	Name      string // empty for unnamed members
	BitOffset uint64
	BitSize   Size
	Type      Offset
	HasType   bool
}

// Enumerator is one (name, value) pair of an enumeration.
type Enumerator struct {
	Name     string
	Value    int64
	HasValue bool
}

// Node is the decoded form of one type node.
//
// Fields not meaningful for Kind stay at their zero value.
type Node struct {
	Offset      Offset
	Kind        Kind
	Name        TypeName
	Declaration bool
	ByteSize    Size
	BitSize     Size

	// KindStruct: ordered by bit offset, gaps filled with ItemPadding.
	Layout []LayoutItem
	// KindStruct and KindUnion: members left out because their location
	// could not be decoded.
	Unplaced []string
	// KindUnion.
	Members []LayoutItem
	// KindEnum.
	Enumerators []Enumerator
	// KindArray: total element count over all dimensions.
	Count Size

	// KindTypedef, KindModifier and KindArray (element type).
	Target    Offset
	HasTarget bool
	Modifier  ModifierKind
}

// Bits returns the node size in bits, preferring an explicit bit size.
func (n *Node) Bits() (uint64, bool) {
	if n == nil {
		return 0, false
	}
	if n.BitSize.Known {
		return n.BitSize.Value, true
	}
	if n.ByteSize.Known {
		return n.ByteSize.Value * 8, true
	}
	return 0, false
}

// TypeEntry is the index-level summary of a type node.
type TypeEntry struct {
	Offset      Offset
	Kind        Kind
	Declaration bool
	Name        TypeName
}

// Source is the lazily consulted metadata of one input binary.
type Source interface {
	// Path identifies the input for diagnostics.
	Path() string
	// Node decodes the type node at off.
	Node(off Offset) (*Node, error)
	// Types lists every type node in metadata order.
	Types() []TypeEntry
}
