package pipeline

import (
	"regexp"
	"strings"

	"github.com/declarant/declarant/model"
)

// KeywordRule matches one regulation keyword. Exclusion matches are
// blanked out of a line before the inclusion pattern runs, so "lead
// time" never registers as the metal while a genuine lead reference on
// the same line still does.
type KeywordRule struct {
	Keyword    string
	Pattern    *regexp.Regexp
	Exclusions []*regexp.Regexp
}

// DefaultKeywordRules returns the scanner rules for the packaging
// regulations and restricted heavy metals covered by supplier
// declarations. Order is fixed so scan output is deterministic.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{
			Keyword: "PPWD 94/62/EC",
			Pattern: regexp.MustCompile(`(?i)94/62\s*/?\s*ec|packaging and packaging waste directive|packaging directive|ppwd`),
			Exclusions: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bpackaging directive\s+for\b`),
			},
		},
		{
			Keyword: "PPWD 94/62/1",
			Pattern: regexp.MustCompile(`(?i)94/62/1`),
		},
		{
			Keyword: "PPWR (EU) 2025/40",
			Pattern: regexp.MustCompile(`(?i)2025/40|packaging and packaging waste regulation|ppwr`),
		},
		{
			Keyword: "Lead (Pb)",
			Pattern: regexp.MustCompile(`(?i)\blead\b|\bpb\b`),
			Exclusions: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\blead\s+(to|time|in|by|through)\b`),
				regexp.MustCompile(`(?i)\bpb\s*-?\s*(rom|&j|ratio)\b`),
			},
		},
		{
			Keyword: "Cadmium (Cd)",
			Pattern: regexp.MustCompile(`(?i)\bcadmium\b|\bcd\b\s*(metal|ppm|\(|concentration|content|level)`),
		},
		{
			Keyword: "Hexavalent Chromium (Cr6+)",
			Pattern: regexp.MustCompile(`(?i)hexavalent chromium|cr\s*6\+?|cr\s*\(vi\)|chrome\s*6`),
		},
	}
}

// ScanMentions runs the default rules over the full document text and
// returns one evidence window per matched keyword. The window spans the
// matching line plus window lines on each side. Scanning stops at the
// first hit per keyword; identical (keyword, snippet) pairs collapse.
func ScanMentions(text string, window int) []model.Mention {
	return ScanMentionsWithRules(text, window, DefaultKeywordRules())
}

// ScanMentionsWithRules is ScanMentions with a caller-supplied rule set.
func ScanMentionsWithRules(text string, window int, rules []KeywordRule) []model.Mention {
	if strings.TrimSpace(text) == "" {
		return []model.Mention{}
	}

	lines := strings.Split(text, "\n")
	mentions := []model.Mention{}
	seen := map[string]bool{}

lineScan:
	for _, rule := range rules {
		for idx, line := range lines {
			if !rule.Pattern.MatchString(stripExclusions(line, rule.Exclusions)) {
				continue
			}

			start := idx - window
			if start < 0 {
				start = 0
			}
			end := idx + window + 1
			if end > len(lines) {
				end = len(lines)
			}

			snippet := strings.TrimSpace(strings.Join(lines[start:end], "\n"))
			if snippet != "" {
				key := rule.Keyword + "\x00" + snippet
				if !seen[key] {
					seen[key] = true
					mentions = append(mentions, model.Mention{Keyword: rule.Keyword, Evidence: snippet})
				}
			}

			continue lineScan
		}
	}

	return mentions
}

// stripExclusions replaces every exclusion match with a space so the
// inclusion pattern only sees the occurrences that were not ruled out.
func stripExclusions(line string, exclusions []*regexp.Regexp) string {
	for _, exclusion := range exclusions {
		line = exclusion.ReplaceAllString(line, " ")
	}
	return line
}
