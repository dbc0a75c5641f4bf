// Package extractor pulls a JSON document out of free-form model output.
//
// Models often wrap JSON in a ```json fence and surround it with prose. Extract
// prefers the first fenced block and falls back to the whole reply. Callers
// decide what a failure means: the evaluator treats it as an error, the
// suggestion pipeline degrades to an empty result.
package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when the reply does not contain a parseable JSON document.
var ErrNoJSON = errors.New("reply does not contain valid JSON")

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// Extract returns the JSON payload embedded in raw.
func Extract(raw string) (json.RawMessage, error) {
	candidate := strings.TrimSpace(raw)
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		candidate = strings.TrimSpace(m[1])
	}
	if candidate == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrNoJSON)
	}
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("%w: %s", ErrNoJSON, preview(candidate))
	}
	return json.RawMessage(candidate), nil
}

// Decode extracts the JSON payload from raw and unmarshals it into v.
func Decode(raw string, v any) error {
	payload, err := Extract(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return nil
}

func preview(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
