package timeline

import (
	"sort"
	"strings"
)

// Token is one recognizer output word, timed on the patchwork timeline.
type Token struct {
	Word     string
	Start    int64
	Duration int64
}

// ReattributedToken is an accepted token translated back to the original
// timeline. Char offsets are local to the owning text unit.
type ReattributedToken struct {
	Word      string
	OrigStart int64
	OrigEnd   int64
	CharStart int
	CharEnd   int
	SegmentID string
	Unit      int
}

// TextUnit is the reconstructed text of one segment. SegmentID is empty for
// the whole-audio unit produced by the un-segmented path.
type TextUnit struct {
	SegmentID string
	Text      string
}

type Result struct {
	Tokens  []ReattributedToken
	Units   []TextUnit
	Dropped int
}

const wordBoundary = " "

// Reattribute walks the token stream once, in patchwork-time order, assigning
// each token to its segment and accumulating one text unit per segment that
// receives at least one token. Tokens landing in a silence gap or straddling
// a boundary are dropped without advancing any state. Recognizer output is
// not guaranteed ordered, so the stream is re-sorted first.
func Reattribute(tokens []Token, layout Layout) Result {
	if layout.Empty() {
		// no segments means no token has an owner; the un-segmented path
		// is the caller's job
		return Result{Dropped: len(tokens)}
	}
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var res Result
	current := -1
	var text strings.Builder
	flush := func() {
		if current < 0 {
			return
		}
		res.Units = append(res.Units, TextUnit{
			SegmentID: layout.Entries[current].SegmentID,
			Text:      text.String(),
		})
		text.Reset()
	}

	for _, tok := range sorted {
		idx, inGap := layout.Locate(tok.Start)
		if inGap || !layout.Accepts(idx, tok.Start, tok.Start+tok.Duration) {
			res.Dropped++
			continue
		}
		if idx > current {
			flush()
			current = idx
		}
		if text.Len() > 0 {
			text.WriteString(wordBoundary)
		}
		charStart := text.Len()
		text.WriteString(tok.Word)

		entry := layout.Entries[idx]
		origStart := tok.Start + (entry.OrigStart - entry.PatchStart)
		res.Tokens = append(res.Tokens, ReattributedToken{
			Word:      tok.Word,
			OrigStart: origStart,
			OrigEnd:   origStart + tok.Duration,
			CharStart: charStart,
			CharEnd:   text.Len(),
			SegmentID: entry.SegmentID,
			Unit:      len(res.Units),
		})
	}
	flush()
	return res
}

// ReattributeWhole is the un-segmented path: the whole audio is one implicit
// segment, times map identically, nothing is dropped, and all tokens land in
// a single text unit.
func ReattributeWhole(tokens []Token) Result {
	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var res Result
	var text strings.Builder
	for _, tok := range sorted {
		if text.Len() > 0 {
			text.WriteString(wordBoundary)
		}
		charStart := text.Len()
		text.WriteString(tok.Word)
		res.Tokens = append(res.Tokens, ReattributedToken{
			Word:      tok.Word,
			OrigStart: tok.Start,
			OrigEnd:   tok.Start + tok.Duration,
			CharStart: charStart,
			CharEnd:   text.Len(),
		})
	}
	res.Units = append(res.Units, TextUnit{Text: text.String()})
	return res
}
