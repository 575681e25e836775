package pipeline

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/declarant/declarant/model"
)

// NormalizeRecord coerces one raw parsed record into an
// ExtractionRecord. Every coercion is total: unusable values become the
// field's zero or nil, never an error. Running the output back through
// produces the same record.
func NormalizeRecord(raw map[string]any) *model.ExtractionRecord {
	record := &model.ExtractionRecord{
		MaterialID:             strings.TrimSpace(toString(raw["material_id"])),
		SupplierName:           toString(raw["supplier_name"]),
		DeclarationDate:        toString(raw["declaration_date"]),
		Compliant:              toBinaryBool(firstPresent(raw, "compliant", "ppwr_compliant")),
		Recyclability:          toString(firstPresent(raw, "recyclability", "packaging_recyclability")),
		RecycledContentPercent: toFloat(raw["recycled_content_percent"]),
		RestrictedSubstances:   toStringList(raw["restricted_substances"]),
		Notes:                  toString(raw["notes"]),
		Mentions:               toMentions(raw["regulatory_mentions"]),
	}

	// A declaration that lists restricted substances without an explicit
	// compliance statement is treated as non-compliant, otherwise compliant.
	if record.Compliant == nil {
		inferred := len(record.RestrictedSubstances) == 0
		record.Compliant = &inferred
	}

	return record
}

// NormalizeRecords normalizes a batch, dropping nothing.
func NormalizeRecords(raws []map[string]any) []*model.ExtractionRecord {
	records := make([]*model.ExtractionRecord, 0, len(raws))
	for _, raw := range raws {
		records = append(records, NormalizeRecord(raw))
	}
	return records
}

func firstPresent(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := raw[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// toBinaryBool maps explicit statements to true/false and everything
// else to nil so the caller can apply its own inference.
func toBinaryBool(value any) *bool {
	switch v := value.(type) {
	case bool:
		return &v
	case string:
		truthy := false
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			truthy = true
		}
		return &truthy
	case float64:
		truthy := v != 0
		return &truthy
	default:
		return nil
	}
}

// toTriStateBool only commits to an answer on a recognized token.
func toTriStateBool(value any) *bool {
	switch v := value.(type) {
	case bool:
		return &v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			result := true
			return &result
		case "false", "no", "n", "0":
			result := false
			return &result
		}
		return nil
	default:
		return nil
	}
}

func toFloat(value any) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		return &parsed
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func toStringList(value any) []string {
	switch v := value.(type) {
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			list = append(list, toString(item))
		}
		return list
	case []string:
		return v
	case string:
		var list []string
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				list = append(list, part)
			}
		}
		if list == nil {
			list = []string{}
		}
		return list
	default:
		return []string{}
	}
}

func toMentions(value any) []model.Mention {
	items, ok := value.([]any)
	if !ok {
		// The model sometimes returns the mention list as a JSON string
		if s, isString := value.(string); isString {
			var parsed []any
			if err := json.Unmarshal([]byte(s), &parsed); err == nil {
				items = parsed
			} else if trimmed := strings.TrimSpace(s); trimmed != "" {
				items = []any{trimmed}
			}
		}
	}

	mentions := []model.Mention{}
	seen := map[string]bool{}
	for _, item := range items {
		var mention model.Mention
		switch m := item.(type) {
		case map[string]any:
			mention.Keyword = strings.TrimSpace(toString(m["keyword"]))
			mention.Evidence = strings.TrimSpace(toString(firstPresent(m, "evidence", "text")))
			mention.Compliant = toTriStateBool(m["compliant"])
		case string:
			mention.Evidence = strings.TrimSpace(m)
		default:
			continue
		}

		if mention.Keyword == "" && mention.Evidence == "" {
			continue
		}

		key := strings.ToLower(mention.Keyword) + "\x00" + mention.Evidence
		if seen[key] {
			continue
		}
		seen[key] = true
		mentions = append(mentions, mention)
	}

	return mentions
}
