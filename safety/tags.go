// Package safety holds the static food-risk knowledge used to gate exercise
// recommendations: the warning tag vocabulary, the tag-to-blocked-keyword
// table and the matching helpers shared by the retrieval filter and the
// post-generation validation pass.
package safety

import "strings"

// WarningTag labels a visual food risk reported by the vision engine.
type WarningTag string

const (
	Fried     WarningTag = "fried"
	HighOil   WarningTag = "high_oil"
	HighSugar WarningTag = "high_sugar"
	Processed WarningTag = "processed"
)

// KnownTags returns the closed set of tags the blocking table understands,
// in stable order.
func KnownTags() []WarningTag {
	return []WarningTag{Fried, HighOil, HighSugar, Processed}
}

// ParseTag normalizes a raw tag string. Unknown tags return false so callers
// can drop them safely; every memo warning set stays a subset of the
// blocking table keys.
func ParseTag(raw string) (WarningTag, bool) {
	tag := WarningTag(strings.ToLower(strings.TrimSpace(raw)))
	switch tag {
	case Fried, HighOil, HighSugar, Processed:
		return tag, true
	}
	return "", false
}

// NormalizeTags parses a raw tag list, dropping unknowns and duplicates while
// keeping first-seen order.
func NormalizeTags(raw []string) []WarningTag {
	seen := make(map[WarningTag]struct{}, len(raw))
	out := make([]WarningTag, 0, len(raw))
	for _, r := range raw {
		tag, ok := ParseTag(r)
		if !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// TagStrings converts a tag list back to plain strings.
func TagStrings(tags []WarningTag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, string(t))
	}
	return out
}
