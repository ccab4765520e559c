package profile

import (
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
)

// Sex offsets of the Mifflin-St Jeor equation.
const (
	maleOffset   = 5
	femaleOffset = -161
)

// defaultActivityFactors maps activity levels to TDEE multipliers.
var defaultActivityFactors = map[ActivityLevel]float64{
	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	VeryActive:       1.725,
	ExtraActive:      1.9,
}

// defaultGoalExpressions adjust the TDEE for the user's stated goal. The
// expressions are evaluated with `tdee` and `bmr` bound, so deployments can
// override them from configuration without recompiling.
var defaultGoalExpressions = map[string]string{
	"lose": "tdee - 500",
	"gain": "tdee + 300",
}

// Calculator computes BMR/TDEE and goal-adjusted daily calorie targets.
type Calculator struct {
	activityFactors map[ActivityLevel]float64
	goalExpressions map[string]*govaluate.EvaluableExpression
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithActivityFactors overrides individual activity multipliers.
func WithActivityFactors(overrides map[ActivityLevel]float64) CalculatorOption {
	return func(c *Calculator) {
		for level, factor := range overrides {
			if factor > 0 {
				c.activityFactors[ActivityLevel(strings.ToLower(string(level)))] = factor
			}
		}
	}
}

// NewCalculator builds a Calculator. goalExpressions may be nil or partial;
// missing entries fall back to the defaults.
func NewCalculator(goalExpressions map[string]string, opts ...CalculatorOption) (*Calculator, error) {
	merged := make(map[string]string, len(defaultGoalExpressions)+len(goalExpressions))
	for k, v := range defaultGoalExpressions {
		merged[k] = v
	}
	for k, v := range goalExpressions {
		merged[strings.ToLower(k)] = v
	}
	compiled := make(map[string]*govaluate.EvaluableExpression, len(merged))
	for k, v := range merged {
		exp, err := govaluate.NewEvaluableExpression(v)
		if err != nil {
			return nil, fmt.Errorf("invalid goal expression %q: %w", v, err)
		}
		compiled[k] = exp
	}
	factors := make(map[ActivityLevel]float64, len(defaultActivityFactors))
	for level, factor := range defaultActivityFactors {
		factors[level] = factor
	}
	c := &Calculator{
		activityFactors: factors,
		goalExpressions: compiled,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BMR computes the basal metabolic rate with the Mifflin-St Jeor equation:
// 10*kg + 6.25*cm - 5*age, +5 for male, -161 for female.
func (c *Calculator) BMR(p *Profile) float64 {
	bmr := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	switch p.Sex {
	case Female:
		bmr += femaleOffset
	default:
		bmr += maleOffset
	}
	return bmr
}

// TDEE scales the BMR by the profile's activity multiplier.
// Unknown activity levels fall back to sedentary.
func (c *Calculator) TDEE(p *Profile) float64 {
	factor, ok := c.activityFactors[ActivityLevel(strings.ToLower(string(p.Activity)))]
	if !ok {
		factor = c.activityFactors[Sedentary]
	}
	return c.BMR(p) * factor
}

// DailyCalorieTarget applies the goal adjustment expression to the TDEE.
// Goals are matched by substring against the expression keys ("lose weight"
// matches "lose"). Without a matching goal the TDEE is returned untouched.
func (c *Calculator) DailyCalorieTarget(p *Profile) (float64, error) {
	bmr := c.BMR(p)
	tdee := c.TDEE(p)
	goal := strings.ToLower(p.Goal)
	for key, exp := range c.goalExpressions {
		if !strings.Contains(goal, key) {
			continue
		}
		result, err := exp.Evaluate(map[string]any{"tdee": tdee, "bmr": bmr})
		if err != nil {
			return 0, fmt.Errorf("evaluate goal expression for %q: %w", key, err)
		}
		v, ok := result.(float64)
		if !ok {
			return 0, fmt.Errorf("goal expression for %q did not evaluate to a number", key)
		}
		return v, nil
	}
	return tdee, nil
}
