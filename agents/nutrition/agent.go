// Package nutrition implements the meal analysis agent: vision or text based
// food identification joined with personalized daily-value math and intake
// accounting.
package nutrition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/healthbutler/healthbutler/components"
	"github.com/healthbutler/healthbutler/profile"
	"github.com/healthbutler/healthbutler/safety"
	"github.com/healthbutler/healthbutler/schema"
	"github.com/healthbutler/healthbutler/vision"
)

// AgentName identifies the nutrition agent in routed plans.
const AgentName = "nutrition"

// ErrEmptyInput is returned when a request carries neither an image nor text.
var ErrEmptyInput = errors.New("nutrition: neither image nor meal description provided")

// Input is one meal analysis request. Image takes precedence over Text when
// both are present; Text then serves as a hint for the vision call.
type Input struct {
	UserID string
	// Image is released by the analysis on every path. Nil for text meals.
	Image *schema.ImageBuffer
	Text  string
}

// EstimateRunner abstracts the structured-output estimator call.
type EstimateRunner interface {
	Run(ctx context.Context, input *MealQuery, output *MealEstimate, apiResp *components.ApiResponse) error
}

// Agent analyzes meals and maintains the day's intake totals.
type Agent struct {
	engine    vision.Engine
	estimator EstimateRunner
	store     profile.Store
	calc      *profile.Calculator
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures an Agent.
type Option func(*Agent)

// WithEstimator enables text-only meal analysis.
func WithEstimator(e EstimateRunner) Option {
	return func(a *Agent) {
		a.estimator = e
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithClock overrides the day used for intake accounting.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		a.now = now
	}
}

func New(engine vision.Engine, store profile.Store, calc *profile.Calculator, opts ...Option) *Agent {
	a := &Agent{
		engine: engine,
		store:  store,
		calc:   calc,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Name() string {
	return AgentName
}

// Analyze identifies the meal, logs it into the day's intake and computes the
// personalized daily-value shares. Missing biometrics degrade to raw amounts
// without percentages, never to an error.
func (a *Agent) Analyze(ctx context.Context, input *Input) (*Result, error) {
	analysis, err := a.identify(ctx, input)
	if err != nil {
		return nil, err
	}
	meal := profile.Macros{
		Calories: analysis.Calories,
		Protein:  analysis.Macros.Protein,
		Carbs:    analysis.Macros.Carbs,
		Fat:      analysis.Macros.Fat,
	}
	res := &Result{
		DishName:       analysis.DishName,
		VisualWarnings: analysis.VisualWarnings,
		HealthScore:    analysis.HealthScore,
	}
	prof, err := a.store.Profile(ctx, input.UserID)
	if errors.Is(err, profile.ErrNotFound) {
		a.logger.Info("no profile, skipping daily value math", zap.String("user_id", input.UserID))
		res.Calories = NutrientValue{Amount: meal.Calories}
		res.Protein = NutrientValue{Amount: meal.Protein}
		res.Carbs = NutrientValue{Amount: meal.Carbs}
		res.Fat = NutrientValue{Amount: meal.Fat}
		return res, nil
	} else if err != nil {
		return nil, fmt.Errorf("nutrition: load profile: %w", err)
	}
	calorieTarget, err := a.calc.DailyCalorieTarget(prof)
	if err != nil {
		return nil, fmt.Errorf("nutrition: daily calorie target: %w", err)
	}
	targets := profile.DailyTargets(calorieTarget)
	cumulative, err := a.store.AddIntake(ctx, input.UserID, a.now(), meal)
	if err != nil {
		return nil, fmt.Errorf("nutrition: log intake: %w", err)
	}
	res.TDEE = a.calc.TDEE(prof)
	res.DailyTarget = targets
	res.Cumulative = cumulative
	res.Calories = nutrientValue(meal.Calories, targets.Calories, cumulative.Calories)
	res.Protein = nutrientValue(meal.Protein, targets.Protein, cumulative.Protein)
	res.Carbs = nutrientValue(meal.Carbs, targets.Carbs, cumulative.Carbs)
	res.Fat = nutrientValue(meal.Fat, targets.Fat, cumulative.Fat)
	a.logger.Info("meal analyzed",
		zap.String("user_id", input.UserID),
		zap.String("dish", res.DishName),
		zap.Float64("calories", meal.Calories),
		zap.Int("health_score", res.HealthScore),
		zap.Strings("warnings", safety.TagStrings(res.VisualWarnings)))
	return res, nil
}

func (a *Agent) identify(ctx context.Context, input *Input) (*vision.FoodAnalysis, error) {
	if input.Image != nil {
		analysis, err := a.engine.Analyze(ctx, input.Image, input.Text)
		if err != nil {
			return nil, fmt.Errorf("nutrition: %w", err)
		}
		return analysis, nil
	}
	text := strings.TrimSpace(input.Text)
	if text == "" || a.estimator == nil {
		return nil, ErrEmptyInput
	}
	estimate := new(MealEstimate)
	if err := a.estimator.Run(ctx, &MealQuery{Description: text}, estimate, nil); err != nil {
		return nil, fmt.Errorf("nutrition: estimate meal: %w", err)
	}
	score := estimate.HealthScore
	if score < 1 {
		score = 1
	} else if score > 10 {
		score = 10
	}
	return &vision.FoodAnalysis{
		DishName: estimate.DishName,
		Calories: estimate.Calories,
		Macros: vision.Macros{
			Protein: estimate.Protein,
			Carbs:   estimate.Carbs,
			Fat:     estimate.Fat,
		},
		VisualWarnings: safety.NormalizeTags(estimate.VisualWarnings),
		HealthScore:    score,
	}, nil
}
