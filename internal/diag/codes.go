package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Layout reconstruction (4000-4999)
	LayInfo                  Code = 4000
	LayUnknownSize           Code = 4001
	LaySizeExceedsHint       Code = 4002
	LayUnresolvedDecl        Code = 4003
	LayArrayIndivisible      Code = 4004
	LayUnsupportedEnumWidth  Code = 4005
	LayUnionMemberOffset     Code = 4006
	LayUnionMemberSize       Code = 4007
	LayUnknownNode           Code = 4008
	LayEmptyStruct           Code = 4009
	LayMemberBeyondSize      Code = 4010
	LayMissingName           Code = 4011
	LayUnreadableNode        Code = 4012
	LayUnsupportedAttachment Code = 4013

	// Driver and inputs (5000-5999)
	DrvInfo                Code = 5000
	DrvDestinationNotFound Code = 5001
	DrvCacheUnavailable    Code = 5002
	DrvNoTypes             Code = 5003
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	LayInfo:                  "Layout information",
	LayUnknownSize:           "Size is unknown",
	LaySizeExceedsHint:       "Size exceeds the space available",
	LayUnresolvedDecl:        "Declaration has no definition",
	LayArrayIndivisible:      "Array size is not a multiple of the element size",
	LayUnsupportedEnumWidth:  "Unsupported enumeration width",
	LayUnionMemberOffset:     "Union member is not at offset zero",
	LayUnionMemberSize:       "Union member size is unknown or too large",
	LayUnknownNode:           "Type node cannot be laid out",
	LayEmptyStruct:           "Structure has no fields",
	LayMemberBeyondSize:      "Member starts beyond the structure size",
	LayMissingName:           "Type has no name",
	LayUnreadableNode:        "Type node cannot be read",
	LayUnsupportedAttachment: "Member location is not supported",
	DrvInfo:                  "Driver information",
	DrvDestinationNotFound:   "Destination type not found",
	DrvCacheUnavailable:      "Index cache unavailable",
	DrvNoTypes:               "Input has no type information",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LAY%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("DRV%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
