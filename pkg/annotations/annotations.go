// Package annotations holds the records one transcription run hands to the
// annotation sink: text documents, word tokens, time frames on the original
// timeline, and identity-only alignments between them.
package annotations

// Record id prefixes, 1-based per run.
const (
	TextDocumentPrefix = "td"
	TokenPrefix        = "t"
	TimeFramePrefix    = "tf"
	AlignmentPrefix    = "a"
)

const FrameTypeSpeech = "speech"

type TextDocument struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	SegmentID string `json:"segment_id,omitempty"`
}

// Token locates a word inside its text document by char offsets.
type Token struct {
	ID       string `json:"id"`
	Word     string `json:"word"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Document string `json:"document"`
}

// TimeFrame is a span on the original audio timeline.
type TimeFrame struct {
	ID        string `json:"id"`
	FrameType string `json:"frameType"`
	Start     int64  `json:"start"`
	End       int64  `json:"end"`
	Unit      string `json:"unit"`
}

// Alignment relates two records (or a source segment / the source audio to a
// record) by id alone.
type Alignment struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type Bundle struct {
	Documents  []TextDocument `json:"documents"`
	Tokens     []Token        `json:"tokens"`
	TimeFrames []TimeFrame    `json:"time_frames"`
	Alignments []Alignment    `json:"alignments"`
}
