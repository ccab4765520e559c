package coordinator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbutler/healthbutler/agents/fitness"
	"github.com/healthbutler/healthbutler/agents/nutrition"
	"github.com/healthbutler/healthbutler/safety"
)

type stubNutrition struct {
	result *nutrition.Result
	err    error
	block  bool
	calls  int
}

func (s *stubNutrition) Analyze(ctx context.Context, _ *nutrition.Input) (*nutrition.Result, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.result, s.err
}

type stubFitness struct {
	rec      *fitness.Recommendation
	err      error
	lastTask string
	lastOpts *fitness.Options
	calls    int
}

func (s *stubFitness) Recommend(_ context.Context, task string, opts *fitness.Options) (*fitness.Recommendation, error) {
	s.calls++
	s.lastTask = task
	s.lastOpts = opts
	return s.rec, s.err
}

func donutResult() *nutrition.Result {
	return &nutrition.Result{
		DishName: "Donut",
		Calories: nutrition.NutrientValue{Amount: 450},
		VisualWarnings: []safety.WarningTag{
			safety.Fried, safety.HighOil, safety.HighSugar, safety.Processed,
		},
		HealthScore: 2,
	}
}

func TestMemoRoundTrip(t *testing.T) {
	memo := MemoFromResult(donutResult())
	require.NotNil(t, memo)

	for _, lang := range []Language{English, Chinese} {
		task := memo.Inject("can I go for a 5km fast run?", lang)
		parsed := ExtractMemo(task)
		require.NotNil(t, parsed, "language %s", lang)
		assert.Equal(t, memo.Warnings, parsed.Warnings)
		assert.Equal(t, memo.HealthScore, parsed.HealthScore)
		assert.Equal(t, "Donut", parsed.DishName)
		assert.InDelta(t, 450, parsed.CalorieIntake, 0.01)
		assert.True(t, strings.HasSuffix(task, "can I go for a 5km fast run?"))
	}
}

func TestMemoSkippedForCleanMeal(t *testing.T) {
	clean := &nutrition.Result{DishName: "Salad", HealthScore: 9}
	assert.Nil(t, MemoFromResult(clean))
	assert.Nil(t, ExtractMemo("just a plain question about running"))
}

func TestMemoInjectNilPassthrough(t *testing.T) {
	var memo *HealthMemo
	assert.Equal(t, "original task", memo.Inject("original task", English))
}

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		text     string
		hasImage bool
		want     Intent
	}{
		{"I just ate a donut, can I go for a run?", false, IntentCombined},
		{"what workout should I do today?", false, IntentFitness},
		{"how many calories are in a banana?", false, IntentNutrition},
		{"what's my daily calorie target", false, IntentProfile},
		{"我刚吃了炸鸡，可以去跑步吗", false, IntentCombined},
		{"推荐一些锻炼", false, IntentFitness},
		{"这碗面条热量多少", false, IntentNutrition},
		{"", true, IntentNutrition},
		{"hello there", false, IntentNutrition},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyIntent(tc.text, tc.hasImage), "text %q", tc.text)
	}
}

func TestExecuteCombinedOrderAndMemoHandoff(t *testing.T) {
	nutritionStub := &stubNutrition{result: donutResult()}
	fitnessStub := &stubFitness{rec: &fitness.Recommendation{}}
	coord := New(nutritionStub, fitnessStub)

	out, err := coord.Execute(context.Background(), &Request{
		UserID: "u1",
		Text:   "I just ate a donut, can I go for a 5km fast run?",
	})
	require.NoError(t, err)
	require.Len(t, out.Steps, 2)
	assert.Equal(t, nutrition.AgentName, out.Steps[0].Agent)
	assert.Equal(t, fitness.AgentName, out.Steps[1].Agent)
	require.NotNil(t, out.Memo)
	assert.Contains(t, fitnessStub.lastTask, "[Health Memo]")
	assert.Contains(t, fitnessStub.lastTask, "can I go for a 5km fast run?")
	require.NotNil(t, fitnessStub.lastOpts)
	assert.Equal(t, out.Memo.Warnings, fitnessStub.lastOpts.Risks)
}

func TestExecuteChineseMemoHeader(t *testing.T) {
	nutritionStub := &stubNutrition{result: donutResult()}
	fitnessStub := &stubFitness{rec: &fitness.Recommendation{}}
	coord := New(nutritionStub, fitnessStub)

	_, err := coord.Execute(context.Background(), &Request{UserID: "u1", Text: "我刚吃了甜甜圈，可以去跑步吗"})
	require.NoError(t, err)
	assert.Contains(t, fitnessStub.lastTask, "健康备忘录")
}

func TestExecuteStepIsolation(t *testing.T) {
	nutritionStub := &stubNutrition{err: errors.New("vision offline")}
	fitnessStub := &stubFitness{rec: &fitness.Recommendation{}}
	coord := New(nutritionStub, fitnessStub)

	out, err := coord.Execute(context.Background(), &Request{
		UserID: "u1",
		Text:   "I just ate a burger, suggest a workout",
	})
	require.NoError(t, err)
	require.Len(t, out.Steps, 2)
	assert.Error(t, out.Steps[0].Err)
	assert.NotNil(t, out.Steps[1].Fitness)
	// memo extraction missed, so the fitness task passes through unmodified
	assert.NotContains(t, fitnessStub.lastTask, "[Health Memo]")
	assert.Nil(t, out.Memo)
}

func TestExecuteTimeoutReturnsNoPartial(t *testing.T) {
	nutritionStub := &stubNutrition{block: true}
	fitnessStub := &stubFitness{rec: &fitness.Recommendation{}}
	coord := New(nutritionStub, fitnessStub, WithTimeout(20*time.Millisecond))

	out, err := coord.Execute(context.Background(), &Request{
		UserID: "u1",
		Text:   "I just ate a burger, suggest a workout",
	})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, 0, fitnessStub.calls)
}

func TestRouteFitnessOnly(t *testing.T) {
	coord := New(&stubNutrition{}, &stubFitness{})
	steps := coord.Route(&Request{Text: "recommend a workout"})
	require.Len(t, steps, 1)
	assert.Equal(t, fitness.AgentName, steps[0].Agent)
}
