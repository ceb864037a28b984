package export

import "math"

// PageOffsets returns the vertical offsets at which content of
// totalHeight is sliced into pages of pageHeight. Offsets advance by
// exactly one page height, so the tiles cover the full content with
// no gap and no overlap; the final tile may be partially filled.
func PageOffsets(totalHeight, pageHeight float64) []float64 {
	if pageHeight <= 0 || totalHeight <= 0 {
		return []float64{0}
	}
	pages := int(math.Ceil(totalHeight / pageHeight))
	if pages < 1 {
		pages = 1
	}
	offsets := make([]float64, pages)
	for i := range offsets {
		offsets[i] = float64(i) * pageHeight
	}
	return offsets
}
