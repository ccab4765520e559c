package fitness

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbutler/healthbutler/components"
	"github.com/healthbutler/healthbutler/guidelines"
	"github.com/healthbutler/healthbutler/safety"
)

type stubStore struct {
	docs []guidelines.ExerciseDoc
	err  error
	last *guidelines.QueryInput
}

func (s *stubStore) Query(_ context.Context, input *guidelines.QueryInput) ([]guidelines.ExerciseDoc, error) {
	s.last = input
	return s.docs, s.err
}

type stubPlanner struct {
	plan PlanOutput
	err  error
}

func (p *stubPlanner) Run(_ context.Context, _ *PlanQuery, output *PlanOutput, _ *components.ApiResponse) error {
	if p.err != nil {
		return p.err
	}
	*output = p.plan
	return nil
}

func candidateDocs() []guidelines.ExerciseDoc {
	return []guidelines.ExerciseDoc{
		{Name: "Brisk Walking", Description: "Steady paced walk.", Intensity: "low"},
		{Name: "Sprint Intervals", Description: "Repeated sprints.", Intensity: "high"},
		{Name: "Beginner Yoga", Description: "Gentle mobility work.", Intensity: "low"},
	}
}

const donutMemoTask = "[Health Memo] consumed: Donut, calories: 450, " +
	"warnings: [fried, high_oil, high_sugar, processed], score: 2/10\n" +
	"can I go for a 5km fast run?"

func TestRecommendDonutScenario(t *testing.T) {
	agent := New(&stubStore{docs: candidateDocs()})

	out, err := agent.Recommend(context.Background(), donutMemoTask, nil)
	require.NoError(t, err)

	for _, rec := range out.Recommendations {
		lower := strings.ToLower(rec.Name)
		assert.NotContains(t, lower, "fast run")
		assert.NotContains(t, lower, "sprint")
	}
	foundBR := false
	for _, warning := range out.SafetyWarnings {
		if strings.Contains(warning, safety.BR001) {
			foundBR = true
		}
	}
	assert.True(t, foundBR, "expected a BR-001 tagged safety warning")
	names := make([]string, 0, len(out.Avoid))
	for _, item := range out.Avoid {
		names = append(names, item.Name)
		assert.NotEmpty(t, item.Reason)
	}
	assert.Contains(t, names, "Fast running")
	assert.NotEmpty(t, out.Recommendations)
}

func TestRecommendCleanMeal(t *testing.T) {
	agent := New(&stubStore{docs: candidateDocs()})

	out, err := agent.Recommend(context.Background(), "what workout should I do today?", nil)
	require.NoError(t, err)

	for _, warning := range out.SafetyWarnings {
		assert.NotContains(t, warning, safety.BR001)
	}
	assert.Empty(t, out.Avoid)
	names := make([]string, 0, len(out.Recommendations))
	for _, rec := range out.Recommendations {
		names = append(names, rec.Name)
	}
	// high intensity stays eligible without risk tags
	assert.Contains(t, names, "Sprint Intervals")
}

func TestRecommendEmptyStoreFallsBack(t *testing.T) {
	agent := New(&stubStore{})

	out, err := agent.Recommend(context.Background(), "any exercise ideas?", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Recommendations)
}

func TestRecommendStoreErrorFallsBack(t *testing.T) {
	agent := New(&stubStore{err: errors.New("index offline")})

	out, err := agent.Recommend(context.Background(), "any exercise ideas?", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Recommendations)
}

func TestRecommendMergesDirectRisks(t *testing.T) {
	store := &stubStore{docs: candidateDocs()}
	agent := New(store)

	_, err := agent.Recommend(context.Background(), "light workout please",
		&Options{Risks: []safety.WarningTag{safety.Fried}})
	require.NoError(t, err)
	require.NotNil(t, store.last)
	assert.Equal(t, []safety.WarningTag{safety.Fried}, store.last.DynamicRisks)
}

func TestRecommendSecondPassCatchesPlanner(t *testing.T) {
	// the planner ignores the avoid list and recommends sprints anyway
	planner := &stubPlanner{plan: PlanOutput{
		Recommendations: []PlanExercise{
			{Name: "Sprint session", DurationMinutes: 20, Intensity: "high"},
			{Name: "Beginner Yoga", DurationMinutes: 30, Intensity: "low"},
		},
		Notes: "Push hard!",
	}}
	agent := New(&stubStore{docs: candidateDocs()}, WithPlanner(planner))

	out, err := agent.Recommend(context.Background(), donutMemoTask, nil)
	require.NoError(t, err)
	for _, rec := range out.Recommendations {
		assert.NotContains(t, strings.ToLower(rec.Name), "sprint")
	}
	assert.NotEmpty(t, out.Recommendations)
}

func TestRecommendPlannerFailureDegrades(t *testing.T) {
	agent := New(&stubStore{docs: candidateDocs()}, WithPlanner(&stubPlanner{err: errors.New("model down")}))

	out, err := agent.Recommend(context.Background(), "suggest something", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Recommendations)
}

func TestBlockingIsMonotonic(t *testing.T) {
	tags := []safety.WarningTag{}
	var prev []string
	for _, tag := range safety.KnownTags() {
		tags = append(tags, tag)
		blocked := safety.BlockedKeywords(tags)
		for _, kw := range prev {
			assert.Contains(t, blocked, kw, "adding %s un-blocked %s", tag, kw)
		}
		prev = blocked
	}
}
