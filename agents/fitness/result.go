package fitness

// Exercise is one recommended activity.
type Exercise struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Intensity       string `json:"intensity"`
	Description     string `json:"description,omitempty"`
}

// AvoidItem names an activity removed for safety, with the justification of
// the rule that blocked it.
type AvoidItem struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Recommendation is the outcome of one fitness request.
type Recommendation struct {
	Recommendations []Exercise  `json:"recommendations"`
	SafetyWarnings  []string    `json:"safety_warnings,omitempty"`
	Avoid           []AvoidItem `json:"avoid,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

func durationFor(intensity string) int {
	switch intensity {
	case "low":
		return 30
	case "high":
		return 15
	default:
		return 20
	}
}
