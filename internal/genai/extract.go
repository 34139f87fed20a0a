// internal/genai/extract.go
package genai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```$")
)

// StripFences removes a markdown code fence wrapping the payload, if any.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = leadingFence.ReplaceAllString(trimmed, "")
	trimmed = trailingFence.ReplaceAllString(trimmed, "")
	return strings.TrimSpace(trimmed)
}

// ExtractFirstObject scans for the first balanced {...} block, tracking
// string literals and escapes so braces inside values don't miscount.
func ExtractFirstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// ParseObject recovers a JSON object from raw model output. It first tries
// a strict parse of the fence-stripped text, then falls back to the first
// balanced object found anywhere in it.
func ParseObject(text string) (map[string]interface{}, bool) {
	candidate := StripFences(text)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
		return obj, true
	}

	fragment, found := ExtractFirstObject(candidate)
	if !found {
		return nil, false
	}
	if err := json.Unmarshal([]byte(fragment), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
