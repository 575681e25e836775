package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/declarant/declarant/model"
)

const assessMaxTokens = 700

// AssessMentions asks the model to assign a compliance verdict to each
// deterministically scanned snippet. The verdict stays tri-state: nil
// when the evidence is unclear. Any failure returns an empty list so the
// raw snippets still reach the caller unassessed.
func AssessMentions(ctx context.Context, generate GenerateFunc, snippets []model.Mention) []model.Mention {
	if len(snippets) == 0 || generate == nil {
		return []model.Mention{}
	}

	type promptItem struct {
		Keyword    string `json:"keyword"`
		TextWindow string `json:"text_window"`
	}
	items := make([]promptItem, 0, len(snippets))
	for _, snippet := range snippets {
		items = append(items, promptItem{Keyword: snippet.Keyword, TextWindow: snippet.Evidence})
	}

	encoded, err := json.Marshal(items)
	if err != nil {
		return []model.Mention{}
	}

	prompt := "You are checking packaging regulatory compliance. For each item, decide if the text " +
		"explicitly states compliance, no intentional addition, or below limits for the cited keyword. " +
		"compliant=true if it affirms compliance, absence or below limits; compliant=false if it states " +
		"non-compliance or exceedance; compliant=null if unclear. Always return the quoted evidence used. " +
		"Return a JSON list only.\n\nItems: " + string(encoded)

	response, err := generate(ctx, prompt, 0, assessMaxTokens)
	if err != nil {
		return []model.Mention{}
	}

	assessed := []model.Mention{}
	for _, parsed := range ParseResponse(response) {
		mention := model.Mention{
			Keyword:   strings.TrimSpace(toString(parsed["keyword"])),
			Evidence:  strings.TrimSpace(toString(firstPresent(parsed, "evidence", "text"))),
			Compliant: toTriStateBool(parsed["compliant"]),
		}
		if mention.Keyword == "" && mention.Evidence == "" {
			continue
		}
		assessed = append(assessed, mention)
	}

	return assessed
}

// ReconcileMentions merges the three mention sources for one record.
// Preference order is model-extracted, then model-assessed, then the raw
// deterministic snippets, deduped on (lowercased keyword, first 50
// characters of evidence) with the first occurrence winning. The
// deterministic snippets always trail the union, so scanner evidence is
// never lost even when the model returned nothing.
func ReconcileMentions(extracted []model.Mention, assessed []model.Mention, deterministic []model.Mention) []model.Mention {
	merged := []model.Mention{}
	seen := map[string]bool{}

	appendUnique := func(mentions []model.Mention) {
		for _, mention := range mentions {
			key := strings.ToLower(mention.Keyword) + "\x00" + evidencePrefix(mention.Evidence)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, mention)
		}
	}

	appendUnique(extracted)
	appendUnique(assessed)

	raw := make([]model.Mention, 0, len(deterministic))
	for _, mention := range deterministic {
		raw = append(raw, model.Mention{Keyword: mention.Keyword, Evidence: mention.Evidence})
	}
	appendUnique(raw)

	return merged
}

func evidencePrefix(evidence string) string {
	runes := []rune(evidence)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}
