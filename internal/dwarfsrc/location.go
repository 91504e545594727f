package dwarfsrc

import (
	"encoding/binary"

	"fortio.org/safecast"
)

const (
	opConstu     = 0x10
	opPlusUconst = 0x23
)

// memberByteOffset decodes DW_AT_data_member_location. Only constant
// offsets and the single-operation expressions compilers emit for them are
// supported.
func memberByteOffset(v any) (uint64, bool) {
	switch x := v.(type) {
	case int64:
		off, err := safecast.Conv[uint64](x)
		return off, err == nil
	case []byte:
		if len(x) < 2 || (x[0] != opPlusUconst && x[0] != opConstu) {
			return 0, false
		}
		off, n := binary.Uvarint(x[1:])
		if n <= 0 || n != len(x)-1 {
			return 0, false
		}
		return off, true
	}
	return 0, false
}

// legacyBitOffset converts a DWARF 2 DW_AT_bit_offset, counted from the most
// significant bit of a storage unit of storage bytes, into a bit offset from
// the start of the enclosing struct.
func legacyBitOffset(byteOff, storage, bitOff, bitSize uint64, order binary.ByteOrder) (uint64, bool) {
	if order == binary.BigEndian {
		return byteOff*8 + bitOff, true
	}
	if bitOff+bitSize > storage*8 {
		return 0, false
	}
	return byteOff*8 + storage*8 - bitOff - bitSize, true
}

func attrUint(v any) (uint64, bool) {
	x, ok := v.(int64)
	if !ok {
		return 0, false
	}
	u, err := safecast.Conv[uint64](x)
	return u, err == nil
}
