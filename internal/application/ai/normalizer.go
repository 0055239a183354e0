package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// fencePattern matches a whole reply wrapped in one Markdown code fence with
// an optional language tag.
var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripFence removes a single code fence around text. Unfenced text is
// returned trimmed.
func StripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil && m[2] != "" {
		return strings.TrimSpace(m[2])
	}
	return trimmed
}

// ParseJSON decodes a model reply into T. It never returns an error: an
// unparseable or null reply is logged with the raw text and reported as
// (nil, false). Shape is not validated beyond what decoding enforces, but
// decoding is strict about types: one field of the wrong JSON type, such as a
// number where a string is declared, rejects the whole reply.
func ParseJSON[T any](logger *zap.Logger, raw string) (*T, bool) {
	payload := StripFence(raw)

	var value *T
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		logger.Warn("Failed to parse JSON response",
			zap.Error(err),
			zap.String("raw_response", raw),
		)
		return nil, false
	}
	if value == nil {
		logger.Warn("Model returned an empty JSON document", zap.String("raw_response", raw))
		return nil, false
	}
	return value, true
}
