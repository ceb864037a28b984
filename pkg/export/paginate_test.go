package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageOffsetsSinglePage(t *testing.T) {
	assert.Equal(t, []float64{0}, PageOffsets(500, 1056))
	assert.Equal(t, []float64{0}, PageOffsets(1056, 1056))
}

func TestPageOffsetsAdvanceByExactlyOnePage(t *testing.T) {
	offsets := PageOffsets(2500, 1056)
	require.Len(t, offsets, 3)
	for i := 1; i < len(offsets); i++ {
		assert.Equal(t, 1056.0, offsets[i]-offsets[i-1])
	}
}

func TestPageOffsetsTileCoverage(t *testing.T) {
	cases := []struct {
		total, page float64
	}{
		{1, 1056},
		{1055.9, 1056},
		{1056.1, 1056},
		{3168, 1056}, // exact multiple
		{10000, 1344},
	}
	for _, tc := range cases {
		offsets := PageOffsets(tc.total, tc.page)
		require.NotEmpty(t, offsets, "total=%.1f", tc.total)
		assert.Equal(t, 0.0, offsets[0], "tiles start at the top")

		last := offsets[len(offsets)-1]
		assert.Less(t, last, tc.total, "no tile starts past the content (total=%.1f)", tc.total)
		assert.GreaterOrEqual(t, last+tc.page, tc.total, "tiles cover all content (total=%.1f)", tc.total)

		for i := 1; i < len(offsets); i++ {
			assert.Equal(t, tc.page, offsets[i]-offsets[i-1],
				"no gap and no overlap between tiles (total=%.1f)", tc.total)
		}
	}
}

func TestPageOffsetsDegenerateInput(t *testing.T) {
	assert.Equal(t, []float64{0}, PageOffsets(0, 1056))
	assert.Equal(t, []float64{0}, PageOffsets(500, 0))
	assert.Equal(t, []float64{0}, PageOffsets(-10, 1056))
}
