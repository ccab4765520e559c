package fitness

import (
	"github.com/bububa/instructor-go/pkg/instructor"

	"github.com/healthbutler/healthbutler/agents"
	"github.com/healthbutler/healthbutler/components/systemprompt"
	"github.com/healthbutler/healthbutler/components/systemprompt/cot"
	"github.com/healthbutler/healthbutler/schema"
)

// PlanQuery is the input for the plan composition call.
type PlanQuery struct {
	schema.Base
	Task       string   `json:"task" jsonschema:"title=task,description=The user's fitness request"`
	Candidates []string `json:"candidates" jsonschema:"title=candidates,description=Pre-screened safe exercises with descriptions"`
	Avoid      []string `json:"avoid" jsonschema:"title=avoid,description=Activities the plan must not include"`
	Conditions []string `json:"conditions,omitempty" jsonschema:"title=conditions,description=Health conditions to respect"`
}

// PlanExercise is one exercise of a composed plan.
type PlanExercise struct {
	Name            string `json:"name" jsonschema:"title=name,description=Exercise name taken from the candidate list"`
	DurationMinutes int    `json:"duration_minutes" jsonschema:"title=duration_minutes,description=Suggested duration in minutes"`
	Intensity       string `json:"intensity" jsonschema:"title=intensity,description=low moderate or high"`
}

// PlanOutput is the structured composed plan.
type PlanOutput struct {
	schema.Base
	Recommendations []PlanExercise `json:"recommendations" jsonschema:"title=recommendations,description=Up to three exercises from the candidates"`
	Notes           string         `json:"notes" jsonschema:"title=notes,description=One short paragraph of coaching advice"`
}

// Planner composes the final plan from pre-screened candidates.
type Planner = agents.Agent[PlanQuery, PlanOutput]

// NewPlanner builds the structured-output agent for plan composition.
func NewPlanner(clt instructor.Instructor, model string) *Planner {
	generator := cot.New(
		cot.WithBackground([]string{
			"- You are a cautious fitness coach.",
			"- You only recommend exercises from the provided candidate list.",
		}),
		cot.WithSteps([]string{
			"- Read the user's request and their health conditions.",
			"- Pick up to three exercises from the candidates that fit the request.",
			"- Assign a realistic duration and intensity to each pick.",
		}),
		cot.WithOutputInstructs([]string{
			"- Never include an activity from the avoid list.",
			"- Keep the notes to a single short paragraph.",
		}),
	)
	generator.AddContextProviders(systemprompt.StaticProvider{
		ProviderTitle: "Safety protocol",
		ProviderInfo: "When the request mentions recently consumed fried, oily, sugary or processed food, " +
			"prefer low intensity activity and say why in the notes.",
	})
	return agents.NewAgent[PlanQuery, PlanOutput](
		agents.WithClient(clt),
		agents.WithModel(model),
		agents.WithSystemPromptGenerator(generator),
		agents.WithTemperature(0.4),
		agents.WithMaxTokens(1024),
		agents.WithName("fitness-planner"),
	)
}
