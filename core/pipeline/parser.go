package pipeline

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*?\}`)

// ParseResponse parses a model completion into a list of records.
// Accepts a bare JSON object, a JSON array (non-object elements are
// dropped), or free text with embedded JSON objects. Unparseable input
// yields an empty list, never an error.
func ParseResponse(raw string) []map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "[]" {
		return []map[string]any{}
	}

	var asList []map[string]any
	var anyValue any
	if err := json.Unmarshal([]byte(raw), &anyValue); err == nil {
		switch v := anyValue.(type) {
		case map[string]any:
			return []map[string]any{v}
		case []any:
			for _, item := range v {
				if obj, ok := item.(map[string]any); ok {
					asList = append(asList, obj)
				}
			}
			if asList == nil {
				asList = []map[string]any{}
			}
			return asList
		}
	}

	// Fall back to scanning for embedded objects, each parsed on its own
	var parsed []map[string]any
	for _, match := range jsonObjectPattern.FindAllString(raw, -1) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(match), &obj); err != nil {
			continue
		}
		parsed = append(parsed, obj)
	}

	if len(parsed) > 0 {
		return parsed
	}

	slog.Warn("could not parse model response", slog.String("response", raw))
	return []map[string]any{}
}
