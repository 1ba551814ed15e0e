package analysis

import (
	"encoding/json"
	"strings"
)

// stripCodeFences removes Markdown code fences that models sometimes wrap
// around JSON output despite being told not to.
func stripCodeFences(input string) string {
	clean := strings.TrimSpace(input)

	// Remove opening ```json or ``` with optional newline
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")

	// Remove closing ``` unconditionally
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}

// parseOrDefault decodes a model response into T, falling back to the zero
// value on empty or malformed output. A model that returns garbage yields a
// zeroed record, never an error; analysis proceeds with defaults.
func parseOrDefault[T any](raw string) T {
	var out T

	clean := stripCodeFences(raw)
	if clean == "" {
		return out
	}

	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		var zero T
		return zero
	}

	return out
}

// orEmpty substitutes an empty slice for nil so JSON responses always carry
// arrays, matching the wire contract
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
