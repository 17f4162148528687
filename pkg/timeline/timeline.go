// Package timeline reconciles recognizer timestamps between the original
// audio timeline and the patchwork timeline built by splicing speech
// segments together with fixed silence gaps between them.
package timeline

import (
	"errors"
	"math"
	"sort"
)

type TimeUnit string

const (
	Milliseconds TimeUnit = "milliseconds"
	Seconds      TimeUnit = "seconds"
)

// PerSecond returns how many ticks of the unit make up one second.
func (u TimeUnit) PerSecond() int64 {
	if u == Seconds {
		return 1
	}
	return 1000
}

func (u TimeUnit) FromSeconds(sec float64) int64 {
	return int64(math.Round(sec * float64(u.PerSecond())))
}

func (u TimeUnit) ToSeconds(t int64) float64 {
	return float64(t) / float64(u.PerSecond())
}

// Segment is a caller-identified speech interval on the original timeline.
// Times are in the configured unit.
type Segment struct {
	ID    string `json:"id"`
	Start int64  `json:"start"`
	End   int64  `json:"end"`
}

// LayoutEntry maps one segment between the two timelines. The patchwork span
// always has the same duration as the original span.
type LayoutEntry struct {
	SegmentID  string
	OrigStart  int64
	OrigEnd    int64
	PatchStart int64
	PatchEnd   int64
}

// Layout is the full segment mapping, ordered by patchwork start.
type Layout struct {
	Entries []LayoutEntry
}

var ErrSegmentsOverlap = errors.New("speech segments overlap")

// BuildLayout lays the segments out on the patchwork timeline: the first
// segment starts at zero and each following segment starts gap ticks after
// the previous one ends. Segments are sorted by original start first; the
// sort is stable, so segments sharing a start keep their input order.
// Segments that still overlap after sorting are rejected.
func BuildLayout(segments []Segment, gap int64) (Layout, error) {
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	layout := Layout{Entries: make([]LayoutEntry, 0, len(sorted))}
	cursor := int64(0)
	for i, seg := range sorted {
		if i > 0 {
			if seg.Start < sorted[i-1].End {
				return Layout{}, ErrSegmentsOverlap
			}
			cursor += gap
		}
		dur := seg.End - seg.Start
		layout.Entries = append(layout.Entries, LayoutEntry{
			SegmentID:  seg.ID,
			OrigStart:  seg.Start,
			OrigEnd:    seg.End,
			PatchStart: cursor,
			PatchEnd:   cursor + dur,
		})
		cursor += dur
	}
	return layout, nil
}

func (l Layout) Empty() bool {
	return len(l.Entries) == 0
}

// Intervals returns the original-timeline spans in seconds, in splice order,
// in the shape the audio trimmer consumes.
func (l Layout) Intervals(unit TimeUnit) [][2]float64 {
	out := make([][2]float64, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, [2]float64{unit.ToSeconds(e.OrigStart), unit.ToSeconds(e.OrigEnd)})
	}
	return out
}

// Locate finds the entry owning patchwork time t: the rightmost entry whose
// patchwork start is <= t. A time exactly on an entry's patchwork start
// belongs to that entry. inGap is true when t lies strictly past the entry's
// patchwork end, inside the silence that follows it.
func (l Layout) Locate(t int64) (index int, inGap bool) {
	i := sort.Search(len(l.Entries), func(i int) bool { return l.Entries[i].PatchStart > t }) - 1
	if i < 0 {
		i = 0
	}
	return i, t > l.Entries[i].PatchEnd
}

// Accepts reports whether a token spanning [start, end] on the patchwork
// timeline fits entirely inside entry i. Tokens straddling a segment or gap
// boundary are rejected whole, never truncated.
func (l Layout) Accepts(i int, start, end int64) bool {
	e := l.Entries[i]
	return start >= e.PatchStart && end <= e.PatchEnd
}
