package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tenWords is the recognizer stream used throughout: words "1".."0" at
// patchwork times 0s, 2s, ..., 18s, each one second long.
func tenWords() []Token {
	words := "1234567890"
	tokens := make([]Token, 0, 10)
	for i := 0; i < 10; i++ {
		tokens = append(tokens, Token{
			Word:     string(words[i]),
			Start:    int64(i) * 2000,
			Duration: 1000,
		})
	}
	return tokens
}

func twoSegmentLayout(t *testing.T) Layout {
	t.Helper()
	layout, err := BuildLayout([]Segment{
		{ID: "s1", Start: 0, End: 10000},
		{ID: "s2", Start: 20000, End: 29000},
	}, 1000)
	require.NoError(t, err)
	return layout
}

func TestReattributeTwoSegments(t *testing.T) {
	res := Reattribute(tenWords(), twoSegmentLayout(t))

	// the word at patchwork 10s spans the segment edge into the gap
	require.Len(t, res.Tokens, 9)
	assert.Equal(t, 1, res.Dropped)

	require.Len(t, res.Units, 2)
	assert.Equal(t, "s1", res.Units[0].SegmentID)
	assert.Equal(t, "1 2 3 4 5", res.Units[0].Text)
	assert.Equal(t, "s2", res.Units[1].SegmentID)
	assert.Equal(t, "7 8 9 0", res.Units[1].Text)

	for _, tok := range res.Tokens {
		assert.NotEqual(t, "6", tok.Word)
	}
}

func TestReattributeTranslatesTimes(t *testing.T) {
	layout := twoSegmentLayout(t)
	res := Reattribute(tenWords(), layout)

	// first segment maps identically
	assert.Equal(t, int64(0), res.Tokens[0].OrigStart)
	assert.Equal(t, int64(1000), res.Tokens[0].OrigEnd)

	// second segment shifts by the skipped silence: patchwork 12s -> 21s
	seventh := res.Tokens[5]
	assert.Equal(t, "7", seventh.Word)
	assert.Equal(t, int64(21000), seventh.OrigStart)
	assert.Equal(t, int64(22000), seventh.OrigEnd)
	assert.Equal(t, "s2", seventh.SegmentID)
}

func TestReattributeRoundTrip(t *testing.T) {
	layout := twoSegmentLayout(t)
	original := tenWords()
	res := Reattribute(original, layout)

	for _, tok := range res.Tokens {
		var entry LayoutEntry
		for _, e := range layout.Entries {
			if e.SegmentID == tok.SegmentID {
				entry = e
			}
		}
		patch := tok.OrigStart - (entry.OrigStart - entry.PatchStart)
		idx, inGap := layout.Locate(patch)
		assert.False(t, inGap)
		assert.Equal(t, entry.SegmentID, layout.Entries[idx].SegmentID)
	}
}

func TestReattributeCharOffsets(t *testing.T) {
	res := Reattribute(tenWords(), twoSegmentLayout(t))

	// offsets restart at zero in each unit
	assert.Equal(t, 0, res.Tokens[0].CharStart)
	assert.Equal(t, 1, res.Tokens[0].CharEnd)
	assert.Equal(t, 2, res.Tokens[1].CharStart)

	first := res.Tokens[5] // word "7", first of the second unit
	assert.Equal(t, 0, first.CharStart)
	assert.Equal(t, 1, first.CharEnd)
	assert.Equal(t, 1, first.Unit)

	for _, tok := range res.Tokens {
		unitText := res.Units[tok.Unit].Text
		assert.Equal(t, tok.Word, unitText[tok.CharStart:tok.CharEnd])
	}
}

func TestReattributeSkipsEmptySegments(t *testing.T) {
	layout, err := BuildLayout([]Segment{
		{ID: "s1", Start: 0, End: 10000},
		{ID: "s2", Start: 20000, End: 29000},
		{ID: "s3", Start: 40000, End: 45000},
	}, 1000)
	require.NoError(t, err)
	// patchwork: s1 [0,10000], s2 [11000,20000], s3 [21000,26000]

	tokens := []Token{
		{Word: "hello", Start: 0, Duration: 500},
		{Word: "world", Start: 22000, Duration: 500},
	}
	res := Reattribute(tokens, layout)

	require.Len(t, res.Units, 2, "segment with no tokens produces no unit")
	assert.Equal(t, "s1", res.Units[0].SegmentID)
	assert.Equal(t, "s3", res.Units[1].SegmentID)
	assert.Equal(t, int64(41000), res.Tokens[1].OrigStart)
}

func TestReattributeResortsTokens(t *testing.T) {
	tokens := tenWords()
	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}
	res := Reattribute(tokens, twoSegmentLayout(t))

	require.Len(t, res.Units, 2)
	assert.Equal(t, "1 2 3 4 5", res.Units[0].Text)
	assert.Equal(t, "7 8 9 0", res.Units[1].Text)
}

func TestReattributeNoTokens(t *testing.T) {
	res := Reattribute(nil, twoSegmentLayout(t))
	assert.Empty(t, res.Units)
	assert.Empty(t, res.Tokens)
}

func TestReattributeWhole(t *testing.T) {
	res := ReattributeWhole(tenWords())

	require.Len(t, res.Units, 1)
	assert.Equal(t, "", res.Units[0].SegmentID)
	assert.Equal(t, "1 2 3 4 5 6 7 8 9 0", res.Units[0].Text)
	require.Len(t, res.Tokens, 10)
	assert.Zero(t, res.Dropped)

	for i, tok := range res.Tokens {
		assert.Equal(t, int64(i)*2000, tok.OrigStart, "times map identically")
		assert.Equal(t, tok.OrigStart+1000, tok.OrigEnd)
		assert.Equal(t, 0, tok.Unit)
	}
}
