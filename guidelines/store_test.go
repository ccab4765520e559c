package guidelines

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/healthbutler/healthbutler/safety"
)

// wordEmbedder maps text onto a fixed vocabulary so similarity is
// deterministic in tests.
type wordEmbedder struct {
	vocab []string
}

func newWordEmbedder() *wordEmbedder {
	return &wordEmbedder{vocab: []string{
		"walk", "walking", "run", "running", "sprint", "yoga", "stretch",
		"swim", "knee", "cardio", "intensity", "low", "high",
	}}
}

func (e *wordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	lower := strings.ToLower(text)
	vector := make([]float64, len(e.vocab))
	for idx, word := range e.vocab {
		if strings.Contains(lower, word) {
			vector[idx] = 1
		}
	}
	return vector, nil
}

func (e *wordEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))
	for _, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

func testCorpus() []Document {
	return []Document{
		{
			Name:        "Brisk Walking",
			Intensity:   "low",
			Description: "Walking at a steady low intensity pace.",
			Source:      "acsm",
		},
		{
			Name:        "Sprint Intervals",
			Intensity:   "high",
			Description: "Repeated sprint efforts at high intensity, a demanding cardio session.",
			Source:      "acsm",
		},
		{
			Name:              "Trail Running",
			Intensity:         "moderate",
			Description:       "Running on uneven terrain, sustained cardio.",
			Contraindications: []string{"knee injury"},
			Source:            "acsm",
		},
		{
			Name:        "Beginner Yoga",
			Intensity:   "low",
			Description: "Yoga and stretch work at low intensity.",
			Source:      "nhs",
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(NewMemoryEngine(), newWordEmbedder(), zap.NewNop())
	n, err := store.Ingest(context.Background(), testCorpus()...)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	return store
}

func TestStoreQueryRanksBySimilarity(t *testing.T) {
	store := newTestStore(t)
	docs, err := store.Query(context.Background(), &QueryInput{
		Task: "I want to go walking",
		TopK: 2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.Equal(t, "Brisk Walking", docs[0].Name)
	assert.LessOrEqual(t, len(docs), 2)
}

func TestStoreQueryDropsRiskBlockedCandidates(t *testing.T) {
	store := newTestStore(t)
	docs, err := store.Query(context.Background(), &QueryInput{
		Task:         "cardio to burn off my meal",
		DynamicRisks: []safety.WarningTag{safety.Fried, safety.HighSugar},
		TopK:         4,
	})
	require.NoError(t, err)
	blocked := safety.BlockedKeywords([]safety.WarningTag{safety.Fried, safety.HighSugar})
	for _, doc := range docs {
		_, hit := safety.MatchBlocked(doc.Name+" "+doc.Description, blocked)
		assert.False(t, hit, "blocked exercise %q survived filtering", doc.Name)
	}
	for _, doc := range docs {
		assert.NotEqual(t, "Sprint Intervals", doc.Name)
		assert.NotEqual(t, "Trail Running", doc.Name)
	}
}

func TestStoreQueryDropsContraindicatedCandidates(t *testing.T) {
	store := newTestStore(t)
	docs, err := store.Query(context.Background(), &QueryInput{
		Task:           "running outside",
		UserConditions: []string{"recovering from a knee injury"},
		TopK:           4,
	})
	require.NoError(t, err)
	for _, doc := range docs {
		assert.NotEqual(t, "Trail Running", doc.Name)
	}
}

func TestStoreQueryEmptyStore(t *testing.T) {
	store := NewStore(NewMemoryEngine(), newWordEmbedder(), zap.NewNop())
	docs, err := store.Query(context.Background(), &QueryInput{Task: "anything"})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFallbackExercisesAreLowIntensity(t *testing.T) {
	blocked := safety.BlockedKeywords(safety.KnownTags())
	for _, doc := range FallbackExercises() {
		assert.Equal(t, "low", doc.Intensity)
		_, hit := safety.MatchBlocked(doc.Name+" "+doc.Description, blocked)
		assert.False(t, hit)
	}
}

func TestReadCorpusValidation(t *testing.T) {
	_, err := ReadCorpus(strings.NewReader("exercises:\n  - name: \"\"\n    description: x\n"))
	require.Error(t, err)

	docs, err := ReadCorpus(strings.NewReader(`
exercises:
  - name: Swimming
    intensity: moderate
    description: Laps at an easy pace.
    contraindications: [ear infection]
    source: nhs
`))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Swimming", docs[0].Name)
	assert.Equal(t, []string{"ear infection"}, docs[0].Contraindications)
}
