package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbutler/healthbutler/agents/fitness"
	"github.com/healthbutler/healthbutler/agents/nutrition"
	"github.com/healthbutler/healthbutler/coordinator"
	"github.com/healthbutler/healthbutler/profile"
	"github.com/healthbutler/healthbutler/safety"
)

type stubNutrition struct {
	result *nutrition.Result
	err    error
}

func (s *stubNutrition) Analyze(_ context.Context, input *nutrition.Input) (*nutrition.Result, error) {
	if input.Image != nil {
		input.Image.Close()
	}
	if input.Image == nil && strings.TrimSpace(input.Text) == "" {
		return nil, nutrition.ErrEmptyInput
	}
	return s.result, s.err
}

type stubFitness struct {
	rec *fitness.Recommendation
}

func (s *stubFitness) Recommend(_ context.Context, _ string, _ *fitness.Options) (*fitness.Recommendation, error) {
	return s.rec, nil
}

func newTestServer(t *testing.T) (*Server, profile.Store) {
	t.Helper()
	store := profile.NewMemoryStore()
	calc, err := profile.NewCalculator(nil)
	require.NoError(t, err)
	nutritionStub := &stubNutrition{result: &nutrition.Result{
		DishName:       "Donut",
		Calories:       nutrition.NutrientValue{Amount: 450},
		VisualWarnings: []safety.WarningTag{safety.Fried},
		HealthScore:    2,
	}}
	fitnessStub := &stubFitness{rec: &fitness.Recommendation{
		Recommendations: []fitness.Exercise{{Name: "Brisk Walking", DurationMinutes: 30, Intensity: "low"}},
	}}
	coord := coordinator.New(nutritionStub, fitnessStub, coordinator.WithProfiles(store))
	return New(coord, nutritionStub, fitnessStub, store, calc), store
}

func TestHandleChat(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	body, _ := json.Marshal(map[string]string{
		"user_id": "u1",
		"text":    "I just ate a donut, can I go for a run?",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Intent string `json:"intent"`
		Steps  []struct {
			Agent string `json:"agent"`
		} `json:"steps"`
		Memo *coordinator.HealthMemo `json:"memo"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "combined", resp.Intent)
	require.Len(t, resp.Steps, 2)
	assert.Equal(t, "nutrition", resp.Steps[0].Agent)
	assert.Equal(t, "fitness", resp.Steps[1].Agent)
	require.NotNil(t, resp.Memo)
	assert.Equal(t, "Donut", resp.Memo.DishName)
}

func TestHandleChatValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"user_id":"u1"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMealMultipart(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("user_id", "u1"))
	fw, err := mw.CreateFormFile("image", "meal.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0xff, 0xd8, 0xff, 0x00})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/meals", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var res nutrition.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Donut", res.DishName)
}

func TestHandleMealEmptyInput(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("user_id", "u1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/meals", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWorkout(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	body, _ := json.Marshal(map[string]any{
		"user_id": "u1",
		"task":    "suggest a workout",
		"risks":   []string{"fried"},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/workouts", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var res fitness.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Recommendations)
	assert.Equal(t, "Brisk Walking", res.Recommendations[0].Name)
}

func TestProfileRoundTripAndBudget(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles/u1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body, _ := json.Marshal(map[string]any{
		"age":       30,
		"sex":       "male",
		"height_cm": 178,
		"weight_kg": 80,
		"activity":  "moderately active",
		"goal":      "lose weight",
	})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/profiles/u1", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles/u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/profiles/u1/preferences/low_intensity", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles/u1/budget", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var budget budgetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &budget))
	assert.InDelta(t, 2239.625, budget.Target.Calories, 0.01)
	assert.Equal(t, budget.Target, budget.Remaining)
}

func TestPutProfileValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	body, _ := json.Marshal(map[string]any{"age": -3, "sex": "male", "height_cm": 178, "weight_kg": 80})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/profiles/u1", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
