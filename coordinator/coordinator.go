// Package coordinator classifies incoming requests, routes them through the
// nutrition and fitness agents in order, and carries the health memo from one
// agent to the next.
package coordinator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/healthbutler/healthbutler/agents/fitness"
	"github.com/healthbutler/healthbutler/agents/nutrition"
	"github.com/healthbutler/healthbutler/profile"
	"github.com/healthbutler/healthbutler/schema"
)

const defaultTimeout = 30 * time.Second

// ProfileStep names the coordinator-handled profile lookup step.
const ProfileStep = "profile"

// NutritionAgent is the meal analysis collaborator.
type NutritionAgent interface {
	Analyze(ctx context.Context, input *nutrition.Input) (*nutrition.Result, error)
}

// FitnessAgent is the exercise recommendation collaborator.
type FitnessAgent interface {
	Recommend(ctx context.Context, task string, opts *fitness.Options) (*fitness.Recommendation, error)
}

// Request is one user interaction.
type Request struct {
	UserID string
	Text   string
	// Image is a meal photo, released downstream by the vision call.
	Image *schema.ImageBuffer
}

// Step is one routed agent invocation.
type Step struct {
	Agent string
	Task  string
}

// StepResult reports one executed step. Err is set per step; a failed step
// never aborts its siblings.
type StepResult struct {
	Agent     string
	Task      string
	Nutrition *nutrition.Result
	Fitness   *fitness.Recommendation
	Profile   *profile.Profile
	Err       error
}

// Outcome is the coordinated response for a request.
type Outcome struct {
	Language Language
	Intent   Intent
	Steps    []StepResult
	Memo     *HealthMemo
}

// Coordinator routes requests and executes the routed plan.
type Coordinator struct {
	nutrition NutritionAgent
	fitness   FitnessAgent
	profiles  profile.Store
	timeout   time.Duration
	logger    *zap.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

func WithProfiles(s profile.Store) Option {
	return func(c *Coordinator) {
		c.profiles = s
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func New(nutritionAgent NutritionAgent, fitnessAgent FitnessAgent, opts ...Option) *Coordinator {
	c := &Coordinator{
		nutrition: nutritionAgent,
		fitness:   fitnessAgent,
		timeout:   defaultTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func chainTask(lang Language) string {
	if lang == Chinese {
		return "根据刚才的营养分析，推荐合适的运动。"
	}
	return "Based on the previous nutrition analysis, suggest appropriate exercises."
}

// Route builds the ordered step plan for a request. A combined meal-then-
// exercise request always runs nutrition before fitness.
func (c *Coordinator) Route(req *Request) []Step {
	intent := ClassifyIntent(req.Text, req.Image != nil)
	lang := DetectLanguage(req.Text)
	switch intent {
	case IntentProfile:
		return []Step{{Agent: ProfileStep, Task: req.Text}}
	case IntentFitness:
		return []Step{{Agent: fitness.AgentName, Task: req.Text}}
	case IntentCombined:
		return []Step{
			{Agent: nutrition.AgentName, Task: req.Text},
			{Agent: fitness.AgentName, Task: fitnessTaskFor(req.Text, lang)},
		}
	default:
		return []Step{{Agent: nutrition.AgentName, Task: req.Text}}
	}
}

// fitnessTaskFor keeps the user's literal request as the fitness task when it
// contains one, falling back to a generic follow-up otherwise.
func fitnessTaskFor(text string, lang Language) string {
	if containsAny(strings.ToLower(text), fitnessKeywords) {
		return text
	}
	return chainTask(lang)
}

// Execute routes the request and runs the plan under the request timeout.
// Individual step failures are reported in their StepResult; a timeout fails
// the whole request with no partial outcome.
func (c *Coordinator) Execute(ctx context.Context, req *Request) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	lang := DetectLanguage(req.Text)
	steps := c.Route(req)
	out := &Outcome{
		Language: lang,
		Intent:   ClassifyIntent(req.Text, req.Image != nil),
	}
	var memo *HealthMemo
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("coordinator: request timed out: %w", err)
		}
		res := StepResult{Agent: step.Agent, Task: step.Task}
		switch step.Agent {
		case nutrition.AgentName:
			analysis, err := c.nutrition.Analyze(ctx, &nutrition.Input{
				UserID: req.UserID,
				Image:  req.Image,
				Text:   step.Task,
			})
			if err != nil {
				res.Err = err
				c.logger.Warn("nutrition step failed", zap.String("user_id", req.UserID), zap.Error(err))
			} else {
				res.Nutrition = analysis
				memo = MemoFromResult(analysis)
			}
		case fitness.AgentName:
			task := memo.Inject(step.Task, lang)
			res.Task = task
			opts := &fitness.Options{UserID: req.UserID}
			if memo != nil {
				opts.Risks = memo.Warnings
			}
			rec, err := c.fitness.Recommend(ctx, task, opts)
			if err != nil {
				res.Err = err
				c.logger.Warn("fitness step failed", zap.String("user_id", req.UserID), zap.Error(err))
			} else {
				res.Fitness = rec
			}
		case ProfileStep:
			res.Profile, res.Err = c.lookupProfile(ctx, req.UserID)
		}
		out.Steps = append(out.Steps, res)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("coordinator: request timed out: %w", err)
	}
	out.Memo = memo
	return out, nil
}

func (c *Coordinator) lookupProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	if c.profiles == nil {
		return nil, profile.ErrNotFound
	}
	return c.profiles.Profile(ctx, userID)
}
