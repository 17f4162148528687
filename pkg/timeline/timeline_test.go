package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLayoutInvariants(t *testing.T) {
	segments := []Segment{
		{ID: "s1", Start: 0, End: 10000},
		{ID: "s2", Start: 20000, End: 29000},
		{ID: "s3", Start: 33200, End: 45000},
	}
	layout, err := BuildLayout(segments, 1000)
	require.NoError(t, err)
	require.Len(t, layout.Entries, 3)

	assert.Equal(t, int64(0), layout.Entries[0].PatchStart)
	for i, e := range layout.Entries {
		assert.Equal(t, e.OrigEnd-e.OrigStart, e.PatchEnd-e.PatchStart, "duration preserved for entry %d", i)
		if i > 0 {
			assert.Equal(t, int64(1000), e.PatchStart-layout.Entries[i-1].PatchEnd, "gap between entries %d and %d", i-1, i)
		}
	}
}

func TestBuildLayoutSortsInput(t *testing.T) {
	segments := []Segment{
		{ID: "late", Start: 20000, End: 29000},
		{ID: "early", Start: 0, End: 10000},
	}
	layout, err := BuildLayout(segments, 1000)
	require.NoError(t, err)
	assert.Equal(t, "early", layout.Entries[0].SegmentID)
	assert.Equal(t, "late", layout.Entries[1].SegmentID)
}

func TestBuildLayoutTieBreakIsStable(t *testing.T) {
	segments := []Segment{
		{ID: "first", Start: 5000, End: 5000},
		{ID: "second", Start: 5000, End: 6000},
	}
	layout, err := BuildLayout(segments, 1000)
	require.NoError(t, err)
	assert.Equal(t, "first", layout.Entries[0].SegmentID)
	assert.Equal(t, "second", layout.Entries[1].SegmentID)
}

func TestBuildLayoutRejectsOverlap(t *testing.T) {
	segments := []Segment{
		{ID: "a", Start: 0, End: 12000},
		{ID: "b", Start: 10000, End: 20000},
	}
	_, err := BuildLayout(segments, 1000)
	assert.ErrorIs(t, err, ErrSegmentsOverlap)
}

func TestBuildLayoutEmpty(t *testing.T) {
	layout, err := BuildLayout(nil, 1000)
	require.NoError(t, err)
	assert.True(t, layout.Empty())
}

func TestIntervalsConvertsToSeconds(t *testing.T) {
	layout, err := BuildLayout([]Segment{
		{ID: "s1", Start: 1500, End: 10000},
	}, 1000)
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{1.5, 10}}, layout.Intervals(Milliseconds))
}

func TestLocate(t *testing.T) {
	layout, err := BuildLayout([]Segment{
		{ID: "s1", Start: 0, End: 10000},
		{ID: "s2", Start: 20000, End: 29000},
	}, 1000)
	require.NoError(t, err)
	// patchwork spans: s1 [0,10000], gap (10000,11000), s2 [11000,20000]

	idx, inGap := layout.Locate(0)
	assert.Equal(t, 0, idx)
	assert.False(t, inGap)

	idx, inGap = layout.Locate(10000)
	assert.Equal(t, 0, idx)
	assert.False(t, inGap)

	idx, inGap = layout.Locate(10500)
	assert.Equal(t, 0, idx)
	assert.True(t, inGap)

	// exact boundary equality belongs to the later segment
	idx, inGap = layout.Locate(11000)
	assert.Equal(t, 1, idx)
	assert.False(t, inGap)

	idx, inGap = layout.Locate(25000)
	assert.Equal(t, 1, idx)
	assert.False(t, inGap)

	// past the end of the layout
	_, inGap = layout.Locate(30000)
	assert.True(t, inGap)
}

func TestAccepts(t *testing.T) {
	layout, err := BuildLayout([]Segment{
		{ID: "s1", Start: 0, End: 10000},
		{ID: "s2", Start: 20000, End: 29000},
	}, 1000)
	require.NoError(t, err)

	assert.True(t, layout.Accepts(0, 0, 1000))
	assert.True(t, layout.Accepts(0, 9000, 10000), "end on the segment edge is inside")
	assert.False(t, layout.Accepts(0, 9500, 10500), "straddles into the gap")
	assert.True(t, layout.Accepts(1, 11000, 12000))
}

func TestTimeUnitConversions(t *testing.T) {
	assert.Equal(t, int64(1500), Milliseconds.FromSeconds(1.5))
	assert.Equal(t, int64(2), Seconds.FromSeconds(1.5))
	assert.Equal(t, 1.5, Milliseconds.ToSeconds(1500))
}
