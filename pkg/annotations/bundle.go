package annotations

import (
	"strconv"

	"patchwork-transcriber/pkg/timeline"
)

// BuildBundle turns a reattribution result into sink records. One document
// and one alignment per text unit, then one token, time frame and alignment
// per accepted word. A unit produced by the segmented path aligns to its
// segment id; the whole-audio unit of the un-segmented path aligns to
// sourceID instead.
func BuildBundle(res timeline.Result, sourceID string, unit timeline.TimeUnit) Bundle {
	var bundle Bundle
	aligns := 0

	docIDs := make([]string, len(res.Units))
	for i, u := range res.Units {
		doc := TextDocument{
			ID:        TextDocumentPrefix + strconv.Itoa(i+1),
			Text:      u.Text,
			SegmentID: u.SegmentID,
		}
		docIDs[i] = doc.ID
		source := u.SegmentID
		if source == "" {
			source = sourceID
		}
		aligns++
		bundle.Documents = append(bundle.Documents, doc)
		bundle.Alignments = append(bundle.Alignments, Alignment{
			ID:     AlignmentPrefix + strconv.Itoa(aligns),
			Source: source,
			Target: doc.ID,
		})
	}

	for i, tok := range res.Tokens {
		token := Token{
			ID:       TokenPrefix + strconv.Itoa(i+1),
			Word:     tok.Word,
			Start:    tok.CharStart,
			End:      tok.CharEnd,
			Document: docIDs[tok.Unit],
		}
		frame := TimeFrame{
			ID:        TimeFramePrefix + strconv.Itoa(i+1),
			FrameType: FrameTypeSpeech,
			Start:     tok.OrigStart,
			End:       tok.OrigEnd,
			Unit:      string(unit),
		}
		aligns++
		bundle.Tokens = append(bundle.Tokens, token)
		bundle.TimeFrames = append(bundle.TimeFrames, frame)
		bundle.Alignments = append(bundle.Alignments, Alignment{
			ID:     AlignmentPrefix + strconv.Itoa(aligns),
			Source: frame.ID,
			Target: token.ID,
		})
	}
	return bundle
}
