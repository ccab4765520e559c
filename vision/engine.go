// Package vision wraps the multimodal food-recognition calls. Given an
// in-memory image buffer it returns a structured identification of the dish:
// name, calorie estimate, macro breakdown, cooking-method warning tags and a
// 1-10 health score.
package vision

import (
	"context"
	"errors"

	"github.com/healthbutler/healthbutler/safety"
	"github.com/healthbutler/healthbutler/schema"
)

// ErrUnavailable is returned when the upstream vision model is unreachable or
// produced an unusable response. Callers report it as analysis-unavailable
// and do not retry.
var ErrUnavailable = errors.New("vision analysis unavailable")

// Macros is the estimated macro breakdown of the analyzed meal, in grams.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// FoodAnalysis is the joined result of the dish/macro estimate and the
// cooking-method risk scan.
type FoodAnalysis struct {
	DishName       string              `json:"dish_name"`
	Calories       float64             `json:"calories"`
	Macros         Macros              `json:"macros"`
	VisualWarnings []safety.WarningTag `json:"visual_warnings"`
	HealthScore    int                 `json:"health_score"`
}

// Engine identifies food from an image. Implementations take ownership of the
// buffer and release it on every exit path, including errors.
type Engine interface {
	Analyze(ctx context.Context, img *schema.ImageBuffer, hint string) (*FoodAnalysis, error)
}

// clampScore forces a model-reported score into the 1-10 scale.
func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
