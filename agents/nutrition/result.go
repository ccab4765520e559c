package nutrition

import (
	"github.com/healthbutler/healthbutler/profile"
	"github.com/healthbutler/healthbutler/safety"
)

// NutrientValue pairs a meal amount with its share of the personalized daily
// target and what is left of that target for the day. Percentages and budgets
// are clamped at zero.
type NutrientValue struct {
	Amount          float64 `json:"amount"`
	DailyValuePct   float64 `json:"daily_value_pct"`
	RemainingBudget float64 `json:"remaining_budget"`
}

// Result is the outcome of one meal analysis. It is immutable once produced.
type Result struct {
	DishName       string              `json:"dish_name"`
	Calories       NutrientValue       `json:"calories"`
	Protein        NutrientValue       `json:"protein"`
	Carbs          NutrientValue       `json:"carbs"`
	Fat            NutrientValue       `json:"fat"`
	VisualWarnings []safety.WarningTag `json:"visual_warnings,omitempty"`
	HealthScore    int                 `json:"health_score"`
	// TDEE is the estimated daily energy expenditure used for the targets,
	// zero when the user has no stored biometrics.
	TDEE        float64        `json:"tdee,omitempty"`
	DailyTarget profile.Macros `json:"daily_target,omitempty"`
	// Cumulative is the intake logged for the day including this meal.
	Cumulative profile.Macros `json:"cumulative,omitempty"`
}

func nutrientValue(amount, target, cumulative float64) NutrientValue {
	v := NutrientValue{Amount: amount}
	if target > 0 {
		v.DailyValuePct = clampZero(100 * amount / target)
		v.RemainingBudget = clampZero(target - cumulative)
	}
	return v
}

func clampZero(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
