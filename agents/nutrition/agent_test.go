package nutrition

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbutler/healthbutler/components"
	"github.com/healthbutler/healthbutler/profile"
	"github.com/healthbutler/healthbutler/safety"
	"github.com/healthbutler/healthbutler/schema"
	"github.com/healthbutler/healthbutler/vision"
)

type stubEngine struct {
	analysis *vision.FoodAnalysis
	err      error
}

func (e *stubEngine) Analyze(_ context.Context, img *schema.ImageBuffer, _ string) (*vision.FoodAnalysis, error) {
	if img != nil {
		img.Close()
	}
	return e.analysis, e.err
}

type stubEstimator struct {
	estimate MealEstimate
	err      error
}

func (e *stubEstimator) Run(_ context.Context, _ *MealQuery, output *MealEstimate, _ *components.ApiResponse) error {
	if e.err != nil {
		return e.err
	}
	*output = e.estimate
	return nil
}

func donutAnalysis() *vision.FoodAnalysis {
	return &vision.FoodAnalysis{
		DishName: "Donut",
		Calories: 450,
		Macros:   vision.Macros{Protein: 5, Carbs: 55, Fat: 24},
		VisualWarnings: []safety.WarningTag{
			safety.Fried, safety.HighOil, safety.HighSugar, safety.Processed,
		},
		HealthScore: 2,
	}
}

func testProfile(t *testing.T, store profile.Store) *profile.Profile {
	t.Helper()
	p := &profile.Profile{
		ID:       "u1",
		Age:      30,
		Sex:      profile.Male,
		HeightCM: 178,
		WeightKG: 80,
		Activity: profile.ModeratelyActive,
		Goal:     "lose weight",
	}
	require.NoError(t, store.SaveProfile(context.Background(), p))
	return p
}

func newAgent(t *testing.T, engine vision.Engine, store profile.Store, opts ...Option) *Agent {
	t.Helper()
	calc, err := profile.NewCalculator(nil)
	require.NoError(t, err)
	return New(engine, store, calc, opts...)
}

func TestAnalyzeImageMeal(t *testing.T) {
	store := profile.NewMemoryStore()
	testProfile(t, store)
	agent := newAgent(t, &stubEngine{analysis: donutAnalysis()}, store)

	res, err := agent.Analyze(context.Background(), &Input{
		UserID: "u1",
		Image:  schema.NewImageBuffer([]byte{0xff, 0xd8, 0xff}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Donut", res.DishName)
	assert.Equal(t, 2, res.HealthScore)
	assert.Len(t, res.VisualWarnings, 4)

	// BMR 1767.5 * 1.55 - 500 = 2239.625
	target := res.DailyTarget.Calories
	assert.InDelta(t, 2239.625, target, 0.01)
	assert.InDelta(t, 100*450/target, res.Calories.DailyValuePct, 0.01)
	assert.InDelta(t, target-450, res.Calories.RemainingBudget, 0.01)
	assert.InDelta(t, 1767.5*1.55, res.TDEE, 0.01)
}

func TestAnalyzeAccumulatesIntake(t *testing.T) {
	store := profile.NewMemoryStore()
	testProfile(t, store)
	agent := newAgent(t, &stubEngine{analysis: donutAnalysis()}, store)

	first, err := agent.Analyze(context.Background(), &Input{UserID: "u1"})
	require.Error(t, err) // no image, no estimator
	require.Nil(t, first)

	res1, err := agent.Analyze(context.Background(), &Input{UserID: "u1", Image: schema.NewImageBuffer([]byte{1})})
	require.NoError(t, err)
	res2, err := agent.Analyze(context.Background(), &Input{UserID: "u1", Image: schema.NewImageBuffer([]byte{1})})
	require.NoError(t, err)
	assert.InDelta(t, res1.Calories.RemainingBudget-450, res2.Calories.RemainingBudget, 0.01)
	assert.InDelta(t, 900, res2.Cumulative.Calories, 0.01)
}

func TestAnalyzeBudgetNeverNegative(t *testing.T) {
	store := profile.NewMemoryStore()
	testProfile(t, store)
	huge := donutAnalysis()
	huge.Calories = 50000
	agent := newAgent(t, &stubEngine{analysis: huge}, store)

	res, err := agent.Analyze(context.Background(), &Input{UserID: "u1", Image: schema.NewImageBuffer([]byte{1})})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Calories.RemainingBudget)
	assert.GreaterOrEqual(t, res.Calories.DailyValuePct, 0.0)

	negative := donutAnalysis()
	negative.Calories = -100
	negative.Macros = vision.Macros{Protein: -1, Carbs: -1, Fat: -1}
	agent = newAgent(t, &stubEngine{analysis: negative}, store)
	res, err = agent.Analyze(context.Background(), &Input{UserID: "u1", Image: schema.NewImageBuffer([]byte{1})})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Calories.DailyValuePct)
	assert.Equal(t, 0.0, res.Protein.DailyValuePct)
	assert.GreaterOrEqual(t, res.Fat.RemainingBudget, 0.0)
}

func TestAnalyzeWithoutProfile(t *testing.T) {
	store := profile.NewMemoryStore()
	agent := newAgent(t, &stubEngine{analysis: donutAnalysis()}, store)

	res, err := agent.Analyze(context.Background(), &Input{UserID: "ghost", Image: schema.NewImageBuffer([]byte{1})})
	require.NoError(t, err)
	assert.Equal(t, 450.0, res.Calories.Amount)
	assert.Equal(t, 0.0, res.Calories.DailyValuePct)
	assert.Equal(t, 0.0, res.TDEE)
}

func TestAnalyzeTextMeal(t *testing.T) {
	store := profile.NewMemoryStore()
	testProfile(t, store)
	estimator := &stubEstimator{estimate: MealEstimate{
		DishName:       "Fried Chicken",
		Calories:       800,
		Protein:        40,
		Carbs:          30,
		Fat:            50,
		VisualWarnings: []string{"fried", "mystery_tag"},
		HealthScore:    3,
	}}
	agent := newAgent(t, &stubEngine{}, store, WithEstimator(estimator))

	res, err := agent.Analyze(context.Background(), &Input{UserID: "u1", Text: "I ate fried chicken"})
	require.NoError(t, err)
	assert.Equal(t, "Fried Chicken", res.DishName)
	// unknown tags from the model are dropped
	assert.Equal(t, []safety.WarningTag{safety.Fried}, res.VisualWarnings)
	assert.InDelta(t, 800, res.Calories.Amount, 0.01)
}

func TestAnalyzeTimeIsolatedPerDay(t *testing.T) {
	store := profile.NewMemoryStore()
	testProfile(t, store)
	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	agent := newAgent(t, &stubEngine{analysis: donutAnalysis()}, store, WithClock(func() time.Time { return day }))
	_, err := agent.Analyze(context.Background(), &Input{UserID: "u1", Image: schema.NewImageBuffer([]byte{1})})
	require.NoError(t, err)

	day = day.AddDate(0, 0, 1)
	res, err := agent.Analyze(context.Background(), &Input{UserID: "u1", Image: schema.NewImageBuffer([]byte{1})})
	require.NoError(t, err)
	assert.InDelta(t, 450, res.Cumulative.Calories, 0.01)
}
