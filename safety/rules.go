package safety

import (
	"sort"
	"strings"
)

// BR001 identifies the safety disclaimer emitted whenever dynamic food risks
// caused a recommendation to be blocked or substituted.
const BR001 = "BR-001"

// BR001Disclaimer is the fixed-format disclaimer text carrying the BR001 tag.
const BR001Disclaimer = BR001 + ": Due to the recent consumption of fried/high-sugar food, " +
	"the plan was adjusted to lower intensity for your safety."

// highIntensityKeywords are blocked under every risk tag.
var highIntensityKeywords = []string{
	"sprint", "hiit", "high intensity", "fast run", "fast running", "running fast",
	"burpee", "jump squat", "box jump", "plyometric",
	"max effort", "all-out", "vigorous", "intense cardio",
}

// moderateIntensityKeywords are additionally blocked after sugar spikes.
var moderateIntensityKeywords = []string{
	"run", "jog", "running", "jump", "jumping", "skip", "skipping",
}

// RiskBlockRule maps one warning tag to the exercise keywords it blocks and a
// human-readable justification. The table is static configuration, built once
// at init and never mutated at runtime.
type RiskBlockRule struct {
	Tag     WarningTag
	Blocked []string
	Reason  string
}

var riskBlocks = map[WarningTag]RiskBlockRule{
	Fried: {
		Tag:     Fried,
		Blocked: highIntensityKeywords,
		Reason:  "High-fat/fried food digestion requires blood flow to the stomach",
	},
	HighOil: {
		Tag:     HighOil,
		Blocked: highIntensityKeywords,
		Reason:  "Heavy oil content may cause discomfort during vigorous exercise",
	},
	HighSugar: {
		Tag:     HighSugar,
		Blocked: append(append([]string{}, highIntensityKeywords...), moderateIntensityKeywords...),
		Reason:  "Blood sugar spike may cause an energy crash during intense exercise",
	},
	Processed: {
		Tag:     Processed,
		Blocked: highIntensityKeywords,
		Reason:  "Processed food may cause digestive issues during intense activity",
	},
}

// RuleFor returns the blocking rule for a tag.
func RuleFor(tag WarningTag) (RiskBlockRule, bool) {
	rule, ok := riskBlocks[tag]
	return rule, ok
}

// BlockedKeywords computes the union of blocked keywords over the active
// tags. The union only grows as tags are added, so blocking is monotonic.
func BlockedKeywords(tags []WarningTag) []string {
	set := make(map[string]struct{})
	for _, tag := range tags {
		rule, ok := riskBlocks[tag]
		if !ok {
			continue
		}
		for _, kw := range rule.Blocked {
			set[kw] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for kw := range set {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// Reasons returns the deduplicated justification strings for the active tags,
// in tag order.
func Reasons(tags []WarningTag) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		rule, ok := riskBlocks[tag]
		if !ok {
			continue
		}
		if _, dup := seen[rule.Reason]; dup {
			continue
		}
		seen[rule.Reason] = struct{}{}
		out = append(out, rule.Reason)
	}
	return out
}

// ReasonForKeyword returns the justification of the first active tag whose
// rule blocks the keyword.
func ReasonForKeyword(tags []WarningTag, keyword string) string {
	for _, tag := range tags {
		rule, ok := riskBlocks[tag]
		if !ok {
			continue
		}
		for _, kw := range rule.Blocked {
			if kw == keyword {
				return rule.Reason
			}
		}
	}
	return ""
}

// keywordNames maps blocked keywords to the activity name shown in avoid
// lists.
var keywordNames = map[string]string{
	"sprint":         "Sprinting",
	"hiit":           "HIIT",
	"high intensity": "High intensity training",
	"fast run":       "Fast running",
	"fast running":   "Fast running",
	"running fast":   "Fast running",
	"burpee":         "Burpees",
	"jump squat":     "Jump squats",
	"box jump":       "Box jumps",
	"plyometric":     "Plyometrics",
	"max effort":     "Max effort training",
	"all-out":        "All-out efforts",
	"vigorous":       "Vigorous exercise",
	"intense cardio": "Intense cardio",
	"run":            "Running",
	"running":        "Running",
	"jog":            "Jogging",
	"jump":           "Jumping",
	"jumping":        "Jumping",
	"skip":           "Rope skipping",
	"skipping":       "Rope skipping",
}

// KeywordName returns the display name of a blocked keyword.
func KeywordName(keyword string) string {
	if name, ok := keywordNames[keyword]; ok {
		return name
	}
	if keyword == "" {
		return ""
	}
	return strings.ToUpper(keyword[:1]) + keyword[1:]
}

// MatchBlocked reports the first blocked keyword contained in text,
// case-insensitive. An empty keyword list never matches.
func MatchBlocked(text string, blocked []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range blocked {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// MatchAllBlocked returns every blocked keyword contained in text,
// case-insensitive.
func MatchAllBlocked(text string, blocked []string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range blocked {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}
