package debuginfo

import "sort"

// BitsPerByte is the width of one addressable unit.
const BitsPerByte = 8

// BitToByte rounds a bit quantity up to whole bytes.
func BitToByte(bits uint64) uint64 {
	return (bits + BitsPerByte - 1) / BitsPerByte
}

// Linearize orders struct items by bit offset and fills holes with padding
// items, including a trailing one up to totalBits when it is known.
//
// Items sharing an offset keep their declaration order. An item of unknown
// size does not advance the cursor.
func Linearize(items []LayoutItem, totalBits Size) []LayoutItem {
	sorted := make([]LayoutItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BitOffset < sorted[j].BitOffset
	})

	out := make([]LayoutItem, 0, len(sorted)+2)
	var cursor uint64
	for _, it := range sorted {
		if it.BitOffset > cursor {
			out = append(out, padding(cursor, it.BitOffset-cursor))
		}
		out = append(out, it)
		if size, ok := it.BitSize.Get(); ok {
			cursor = max(cursor, it.BitOffset+size)
		} else {
			cursor = max(cursor, it.BitOffset)
		}
	}
	if total, ok := totalBits.Get(); ok && total > cursor {
		out = append(out, padding(cursor, total-cursor))
	}
	return out
}

func padding(off, bits uint64) LayoutItem {
	return LayoutItem{Kind: ItemPadding, BitOffset: off, BitSize: Known(bits)}
}
