package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/declarant/declarant/model"
)

func mentionKeywords(mentions []model.Mention) []string {
	keywords := make([]string, 0, len(mentions))
	for _, mention := range mentions {
		keywords = append(keywords, mention.Keyword)
	}
	return keywords
}

func TestScanMentions(t *testing.T) {
	t.Run("Directive citation is found", func(t *testing.T) {
		text := "This declaration complies with Directive 94/62/EC on packaging waste."

		mentions := ScanMentions(text, 50)

		require.NotEmpty(t, mentions)
		assert.Contains(t, mentionKeywords(mentions), "PPWD 94/62/EC")
		assert.Contains(t, mentions[0].Evidence, "94/62/EC")
		assert.Nil(t, mentions[0].Compliant, "Scanner never judges compliance")
	})

	t.Run("All six keywords on separate lines", func(t *testing.T) {
		text := strings.Join([]string{
			"Directive 94/62/EC applies to all packaging.",
			"Annex 94/62/1 thresholds are respected.",
			"The Packaging and Packaging Waste Regulation (EU) 2025/40 supersedes it.",
			"Lead content is below 100 ppm.",
			"Cadmium (Cd) was not intentionally added.",
			"No hexavalent chromium is present.",
		}, "\n")

		mentions := ScanMentions(text, 0)

		keywords := mentionKeywords(mentions)
		assert.Contains(t, keywords, "PPWD 94/62/EC")
		assert.Contains(t, keywords, "PPWD 94/62/1")
		assert.Contains(t, keywords, "PPWR (EU) 2025/40")
		assert.Contains(t, keywords, "Lead (Pb)")
		assert.Contains(t, keywords, "Cadmium (Cd)")
		assert.Contains(t, keywords, "Hexavalent Chromium (Cr6+)")
	})

	t.Run("Lead followed by to is excluded", func(t *testing.T) {
		text := "Improper disposal may lead to environmental damage."

		mentions := ScanMentions(text, 50)

		assert.NotContains(t, mentionKeywords(mentions), "Lead (Pb)")
	})

	t.Run("Lead time is excluded", func(t *testing.T) {
		text := "The lead time for delivery is six weeks."

		mentions := ScanMentions(text, 50)

		assert.NotContains(t, mentionKeywords(mentions), "Lead (Pb)")
	})

	t.Run("Lead as metal on the same line as lead time still matches", func(t *testing.T) {
		text := "The lead time is six weeks and lead content is below 90 ppm."

		mentions := ScanMentions(text, 50)

		assert.Contains(t, mentionKeywords(mentions), "Lead (Pb)")
	})

	t.Run("Lead as metal on a later line still matches", func(t *testing.T) {
		text := "Shipping may lead to delays.\nLead and mercury are below regulatory limits."

		mentions := ScanMentions(text, 0)

		keywords := mentionKeywords(mentions)
		require.Contains(t, keywords, "Lead (Pb)")
		for _, mention := range mentions {
			if mention.Keyword == "Lead (Pb)" {
				assert.Contains(t, mention.Evidence, "below regulatory limits")
			}
		}
	})

	t.Run("Mislead does not match", func(t *testing.T) {
		text := "This statement shall not mislead the reader."

		mentions := ScanMentions(text, 50)

		assert.NotContains(t, mentionKeywords(mentions), "Lead (Pb)")
	})

	t.Run("Bare cd abbreviation needs chemical context", func(t *testing.T) {
		noContext := ScanMentions("The manual is shipped on a cd in the box.", 50)
		assert.NotContains(t, mentionKeywords(noContext), "Cadmium (Cd)")

		withContext := ScanMentions("Measured cd content is 2 ppm.", 50)
		assert.Contains(t, mentionKeywords(withContext), "Cadmium (Cd)")
	})

	t.Run("First hit per keyword only", func(t *testing.T) {
		text := "PPWR applies here.\nPPWR is also cited again later."

		mentions := ScanMentions(text, 0)

		count := 0
		for _, mention := range mentions {
			if mention.Keyword == "PPWR (EU) 2025/40" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("Evidence window spans surrounding lines", func(t *testing.T) {
		lines := make([]string, 11)
		for i := range lines {
			lines[i] = "filler line"
		}
		lines[5] = "Complies with 94/62/EC."

		mentions := ScanMentions(strings.Join(lines, "\n"), 2)

		require.NotEmpty(t, mentions)
		windowLines := strings.Split(mentions[0].Evidence, "\n")
		assert.Equal(t, 5, len(windowLines), "Window should span the match plus two lines each side")
		assert.Contains(t, mentions[0].Evidence, "94/62/EC")
	})

	t.Run("Window clamps at text boundaries", func(t *testing.T) {
		text := "Complies with 94/62/EC.\nsecond line"

		mentions := ScanMentions(text, 50)

		require.NotEmpty(t, mentions)
		assert.Equal(t, "Complies with 94/62/EC.\nsecond line", mentions[0].Evidence)
	})

	t.Run("Empty text", func(t *testing.T) {
		assert.Empty(t, ScanMentions("", 50))
		assert.Empty(t, ScanMentions("   \n  ", 50))
	})

	t.Run("Text without keywords", func(t *testing.T) {
		mentions := ScanMentions("The quick brown fox jumps over the lazy dog.", 50)

		assert.NotNil(t, mentions)
		assert.Empty(t, mentions)
	})
}
