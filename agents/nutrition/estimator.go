package nutrition

import (
	"strings"

	"github.com/bububa/instructor-go/pkg/instructor"

	"github.com/healthbutler/healthbutler/agents"
	"github.com/healthbutler/healthbutler/components/systemprompt"
	"github.com/healthbutler/healthbutler/components/systemprompt/cot"
	"github.com/healthbutler/healthbutler/safety"
	"github.com/healthbutler/healthbutler/schema"
)

// MealQuery describes a meal in free text when no photo is available.
type MealQuery struct {
	schema.Base
	Description string `json:"description" jsonschema:"title=description,description=Free text description of the meal the user ate"`
}

// MealEstimate is the structured estimate for a described meal.
type MealEstimate struct {
	schema.Base
	DishName       string   `json:"dish_name" jsonschema:"title=dish_name,description=Short name of the dish"`
	Calories       float64  `json:"calories" jsonschema:"title=calories,description=Estimated calories in kcal"`
	Protein        float64  `json:"protein" jsonschema:"title=protein,description=Estimated protein in grams"`
	Carbs          float64  `json:"carbs" jsonschema:"title=carbs,description=Estimated carbohydrates in grams"`
	Fat            float64  `json:"fat" jsonschema:"title=fat,description=Estimated fat in grams"`
	VisualWarnings []string `json:"visual_warnings" jsonschema:"title=visual_warnings,description=Cooking method risk tags,enum=fried,enum=high_oil,enum=high_sugar,enum=processed"`
	HealthScore    int      `json:"health_score" jsonschema:"title=health_score,description=Overall healthiness from 1 to 10"`
}

// Estimator resolves a text-described meal into a structured estimate.
type Estimator = agents.Agent[MealQuery, MealEstimate]

// NewEstimator builds the structured-output agent used for text-only meals.
func NewEstimator(clt instructor.Instructor, model string) *Estimator {
	generator := cot.New(
		cot.WithBackground([]string{
			"- You are a nutritionist estimating the content of a described meal.",
		}),
		cot.WithSteps([]string{
			"- Identify the dish from the description.",
			"- Estimate calories and macros for a typical serving.",
			"- Flag cooking method risks only when clearly implied.",
		}),
		cot.WithOutputInstructs([]string{
			"- Use only the enumerated warning tags.",
			"- Score 1 (worst) to 10 (best).",
		}),
	)
	generator.AddContextProviders(systemprompt.StaticProvider{
		ProviderTitle: "Warning tag vocabulary",
		ProviderInfo:  "Allowed visual_warnings values: " + strings.Join(safety.TagStrings(safety.KnownTags()), ", ") + ".",
	})
	return agents.NewAgent[MealQuery, MealEstimate](
		agents.WithClient(clt),
		agents.WithModel(model),
		agents.WithSystemPromptGenerator(generator),
		agents.WithTemperature(0.2),
		agents.WithMaxTokens(1024),
		agents.WithName("nutrition-estimator"),
	)
}
