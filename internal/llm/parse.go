package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/latestcomment/boardroom-chat/internal/models"
)

var ErrUnreadableTranscript = errors.New("llm: reply is not a non-empty transcript array")

// fencePattern matches an opening ```json (or bare ```) fence and a closing
// ``` fence at line boundaries.
var fencePattern = regexp.MustCompile("(?m)^```(?:json)?\\s*|\\s*```$")

// StripFences removes Markdown code fences a model may wrap its JSON in.
func StripFences(raw string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// ParseTranscript extracts the board transcript from a raw model reply. When
// the cleaned reply is not a JSON array on its own, the span from the first
// '[' to the last ']' is tried.
func ParseTranscript(raw string) (models.Transcript, error) {
	text := StripFences(raw)
	if !gjson.Parse(text).IsArray() || !gjson.Valid(text) {
		first, last := strings.Index(text, "["), strings.LastIndex(text, "]")
		if first < 0 || last < first {
			return nil, ErrUnreadableTranscript
		}
		text = text[first : last+1]
	}
	if !gjson.Valid(text) || !gjson.Parse(text).IsArray() {
		return nil, ErrUnreadableTranscript
	}

	var t models.Transcript
	if err := json.Unmarshal([]byte(text), &t); err != nil {
		return nil, ErrUnreadableTranscript
	}
	if len(t) == 0 {
		return nil, ErrUnreadableTranscript
	}
	for _, e := range t {
		if strings.TrimSpace(e.SpeakerName) == "" {
			return nil, ErrUnreadableTranscript
		}
	}
	return t, nil
}
