package pipeline

import (
	"fmt"
	"strings"
)

// NoContextSentinel is inserted in place of the document content when
// retrieval returned no chunks, so the model is told explicitly that
// the knowledge base had nothing rather than being handed an empty block.
const NoContextSentinel = "No relevant documents found in the knowledge base for this query."

// BuildContext joins retrieved chunk texts into one context block.
// Blank chunks are dropped; no usable chunks yields the sentinel.
func BuildContext(texts []string) string {
	var kept []string
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t != "" {
			kept = append(kept, t)
		}
	}

	if len(kept) == 0 {
		return NoContextSentinel
	}

	return strings.Join(kept, "\n\n")
}

// BuildFieldPrompt builds a fully isolated prompt for one extraction
// field. The prompt carries only this field's retrieved context, query
// and instructions, so no field's answer can leak into another's.
func BuildFieldPrompt(contextBlock string, field string, query string, instructions string) string {
	return fmt.Sprintf(`You are a regulatory compliance extraction assistant for supplier declarations.

Answer using ONLY the document content below. Do not use outside knowledge.

Document content:
%s

Task (%s): %s

%s

Respond with valid JSON only, no explanation and no surrounding text.`,
		contextBlock, field, query, instructions)
}
