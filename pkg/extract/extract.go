// Package extract recovers a single JSON object embedded in free-form model output.
//
// The scan is deliberately simple: the span runs from the first '{' to the last '}'.
// Unrelated braces before or after the intended object produce a wrong span, which then
// fails to decode and is reported as domain.ErrParseFailure.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/dramaflow/pkg/domain"
)

// Span returns the text between the first '{' and the last '}' (inclusive).
func Span(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// Object decodes the span of raw as a JSON object.
// Any failure is reported as an error wrapping domain.ErrParseFailure.
func Object(raw string) (map[string]any, error) {
	span, ok := Span(raw)
	if !ok {
		return nil, domain.ErrParseFailure
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParseFailure, err)
	}
	return obj, nil
}

// HasSpan reports whether raw contains a brace pair at all.
// It lets callers tell "no structured payload" apart from "payload did not decode".
func HasSpan(raw string) bool {
	_, ok := Span(raw)
	return ok
}
