package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Profile(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	p := testProfile()
	p.Conditions = []string{"knee pain"}
	require.NoError(t, store.SaveProfile(ctx, p))

	got, err := store.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Conditions, got.Conditions)

	// mutating the returned copy must not leak into the store
	got.Conditions[0] = "changed"
	got.WeightKG = 999
	again, err := store.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, again.WeightKG)
}

func TestMemoryStoreValidation(t *testing.T) {
	store := NewMemoryStore()
	bad := &Profile{ID: "u", Age: -3, Sex: Male, HeightCM: 170, WeightKG: 70}
	assert.Error(t, store.SaveProfile(context.Background(), bad))
}

func TestMemoryStoreIntakeAccumulation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	day := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	total, err := store.AddIntake(ctx, "u1", day, Macros{Calories: 450, Protein: 5, Carbs: 50, Fat: 25})
	require.NoError(t, err)
	assert.InDelta(t, 450.0, total.Calories, 0.001)

	total, err = store.AddIntake(ctx, "u1", day, Macros{Calories: 550, Protein: 30, Carbs: 40, Fat: 20})
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, total.Calories, 0.001)
	assert.InDelta(t, 35.0, total.Protein, 0.001)

	// other users and other days stay isolated
	other, err := store.DailyIntake(ctx, "u2", day)
	require.NoError(t, err)
	assert.Zero(t, other.Calories)
	nextDay, err := store.DailyIntake(ctx, "u1", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, nextDay.Calories)
}

func TestMemoryStoreConcurrentIntake(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	day := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.AddIntake(ctx, "u1", day, Macros{Calories: 10})
		}()
	}
	wg.Wait()

	total, err := store.DailyIntake(ctx, "u1", day)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, total.Calories, 0.001)
}

func TestMemoryStorePreferences(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.SaveProfile(ctx, testProfile()))

	require.NoError(t, store.IncrPreference(ctx, "user-1", "low_intensity"))
	require.NoError(t, store.IncrPreference(ctx, "user-1", "low_intensity"))

	p, err := store.Profile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Preferences["low_intensity"])

	assert.ErrorIs(t, store.IncrPreference(ctx, "ghost", "x"), ErrNotFound)
}
