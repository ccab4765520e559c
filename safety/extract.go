package safety

import (
	"regexp"
	"strings"
)

// tagPatterns maps each warning tag to the textual spellings a task
// description may carry, covering the English and Chinese memo formats.
var tagPatterns = map[WarningTag][]*regexp.Regexp{
	Fried: {
		regexp.MustCompile(`\bfried\b`),
		regexp.MustCompile(`\bdeep-fried\b`),
		regexp.MustCompile(`油炸`),
	},
	HighOil: {
		regexp.MustCompile(`\bhigh[-_ ]?oil\b`),
		regexp.MustCompile(`\bhigh[-_ ]?fat\b`),
		regexp.MustCompile(`\bgreasy\b`),
		regexp.MustCompile(`高油`),
	},
	HighSugar: {
		regexp.MustCompile(`\bhigh[-_ ]?sugar\b`),
		regexp.MustCompile(`\bsugary\b`),
		regexp.MustCompile(`\bglazed\b`),
		regexp.MustCompile(`高糖`),
	},
	Processed: {
		regexp.MustCompile(`\bprocessed\b`),
		regexp.MustCompile(`加工`),
	},
}

// listPattern matches bracketed warning lists like
// `warnings: [fried, high_oil]` or `visual_warnings=["fried"]`.
var listPattern = regexp.MustCompile(`(?:warnings?|visual_warnings?|风险标签)\s*[:=：]\s*\[([^\]]+)\]`)

// ExtractTags scans free text for warning tag mentions, in both the literal
// tag spellings and the bracketed list form the memo protocol produces.
// Order follows KnownTags so the result is deterministic.
func ExtractTags(text string) []WarningTag {
	lower := strings.ToLower(text)
	found := make(map[WarningTag]struct{}, 4)
	for tag, patterns := range tagPatterns {
		for _, p := range patterns {
			if p.MatchString(lower) {
				found[tag] = struct{}{}
				break
			}
		}
	}
	if m := listPattern.FindStringSubmatch(lower); m != nil {
		for _, raw := range strings.Split(m[1], ",") {
			raw = strings.Trim(strings.TrimSpace(raw), `"'`)
			if tag, ok := ParseTag(raw); ok {
				found[tag] = struct{}{}
			}
		}
	}
	out := make([]WarningTag, 0, len(found))
	for _, tag := range KnownTags() {
		if _, ok := found[tag]; ok {
			out = append(out, tag)
		}
	}
	return out
}
