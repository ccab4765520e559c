// Package profile holds the user profile model and the daily energy math the
// nutrition and fitness agents share. Durable profile storage lives outside
// this core (one row per authenticated user, isolation enforced by the
// external store); the agents only ever see the read model defined here.
package profile

import (
	"github.com/go-playground/validator/v10"
)

// Sex of the user, as used by the Mifflin-St Jeor formula.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
	Other  Sex = "other"
)

// ActivityLevel keys the activity multiplier table.
type ActivityLevel string

const (
	Sedentary        ActivityLevel = "sedentary"
	LightlyActive    ActivityLevel = "lightly active"
	ModeratelyActive ActivityLevel = "moderately active"
	VeryActive       ActivityLevel = "very active"
	ExtraActive      ActivityLevel = "extra active"
)

// Macros is a calorie/macronutrient quadruple, in kcal and grams.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the element-wise sum.
func (m Macros) Add(v Macros) Macros {
	return Macros{
		Calories: m.Calories + v.Calories,
		Protein:  m.Protein + v.Protein,
		Carbs:    m.Carbs + v.Carbs,
		Fat:      m.Fat + v.Fat,
	}
}

// Profile is the per-user read model consumed by the agents.
type Profile struct {
	ID         string        `json:"id" validate:"required"`
	Name       string        `json:"name,omitempty"`
	Age        int           `json:"age" validate:"gt=0,lt=130"`
	Sex        Sex           `json:"sex" validate:"oneof=male female other"`
	HeightCM   float64       `json:"height_cm" validate:"gt=0"`
	WeightKG   float64       `json:"weight_kg" validate:"gt=0"`
	Activity   ActivityLevel `json:"activity,omitempty"`
	Goal       string        `json:"goal,omitempty"`
	Conditions []string      `json:"conditions,omitempty"`
	Diet       []string      `json:"diet,omitempty"`
	// Preferences counts how often the user picked each suggestion kind.
	Preferences map[string]int `json:"preferences,omitempty"`
}

var validate = validator.New()

// Validate checks the profile fields against their constraints.
func (p *Profile) Validate() error {
	return validate.Struct(p)
}

// DailyTargets derives per-macro daily targets from a calorie target using a
// 30/45/25 protein/carb/fat energy split (4/4/9 kcal per gram).
func DailyTargets(calorieTarget float64) Macros {
	return Macros{
		Calories: calorieTarget,
		Protein:  calorieTarget * 0.30 / 4,
		Carbs:    calorieTarget * 0.45 / 4,
		Fat:      calorieTarget * 0.25 / 9,
	}
}
