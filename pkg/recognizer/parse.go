package recognizer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"patchwork-transcriber/pkg/timeline"
)

// transcript is the recognizer's output shape:
// {"words": [{"word": "...", "time": 1.5, "duration": "1.0"}, ...]}
// Times are seconds; the tool has been seen emitting them both as numbers
// and as quoted strings, so both are accepted.
type transcript struct {
	Words []wordEntry `json:"words"`
}

type wordEntry struct {
	Word     *string  `json:"word"`
	Time     *seconds `json:"time"`
	Duration *seconds `json:"duration"`
}

type seconds float64

func (s *seconds) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return fmt.Errorf("empty time value")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("non-numeric time value %q", raw)
	}
	*s = seconds(v)
	return nil
}

// Parse decodes recognizer output and converts it to tokens in the given
// unit. Word order from the recognizer is not trusted; tokens come back
// stably sorted by start time. Any missing or malformed field fails the
// whole transcript.
func Parse(data []byte, unit timeline.TimeUnit) ([]timeline.Token, error) {
	var tr transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("malformed recognizer output: %w", err)
	}

	tokens := make([]timeline.Token, 0, len(tr.Words))
	for i, w := range tr.Words {
		if w.Word == nil || w.Time == nil || w.Duration == nil {
			return nil, fmt.Errorf("malformed recognizer output: word %d is missing a field", i)
		}
		tokens = append(tokens, timeline.Token{
			Word:     *w.Word,
			Start:    unit.FromSeconds(float64(*w.Time)),
			Duration: unit.FromSeconds(float64(*w.Duration)),
		})
	}
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].Start < tokens[j].Start })
	return tokens, nil
}
