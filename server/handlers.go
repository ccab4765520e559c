package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/healthbutler/healthbutler/agents/fitness"
	"github.com/healthbutler/healthbutler/agents/nutrition"
	"github.com/healthbutler/healthbutler/coordinator"
	"github.com/healthbutler/healthbutler/profile"
	"github.com/healthbutler/healthbutler/safety"
	"github.com/healthbutler/healthbutler/schema"
	"github.com/healthbutler/healthbutler/vision"
)

const maxImageBytes = 8 << 20

type chatRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type stepResponse struct {
	Agent     string                  `json:"agent"`
	Task      string                  `json:"task"`
	Nutrition *nutrition.Result       `json:"nutrition,omitempty"`
	Fitness   *fitness.Recommendation `json:"fitness,omitempty"`
	Profile   *profile.Profile        `json:"profile,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

type chatResponse struct {
	Language coordinator.Language    `json:"language"`
	Intent   coordinator.Intent      `json:"intent"`
	Steps    []stepResponse          `json:"steps"`
	Memo     *coordinator.HealthMemo `json:"memo,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "user_id and text are required")
		return
	}
	out, err := s.coordinator.Execute(r.Context(), &coordinator.Request{
		UserID: req.UserID,
		Text:   req.Text,
	})
	if err != nil {
		s.logger.Warn("chat failed", zap.String("user_id", req.UserID), zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, "request timed out")
		return
	}
	resp := chatResponse{
		Language: out.Language,
		Intent:   out.Intent,
		Memo:     out.Memo,
	}
	for _, step := range out.Steps {
		dto := stepResponse{
			Agent:     step.Agent,
			Task:      step.Task,
			Nutrition: step.Nutrition,
			Fitness:   step.Fitness,
			Profile:   step.Profile,
		}
		if step.Err != nil {
			dto.Error = step.Err.Error()
		}
		resp.Steps = append(resp.Steps, dto)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMeal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	userID := r.FormValue("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	input := &nutrition.Input{
		UserID: userID,
		Text:   r.FormValue("text"),
	}
	if file, _, err := r.FormFile("image"); err == nil {
		data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable image")
			return
		}
		input.Image = schema.NewImageBuffer(data)
	}
	res, err := s.nutrition.Analyze(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, nutrition.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, "attach a meal photo or describe the meal")
		case errors.Is(err, vision.ErrUnavailable):
			writeError(w, http.StatusBadGateway, "meal analysis unavailable")
		default:
			s.logger.Error("meal analysis failed", zap.String("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "meal analysis failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type workoutRequest struct {
	UserID string   `json:"user_id"`
	Task   string   `json:"task"`
	Risks  []string `json:"risks,omitempty"`
}

func (s *Server) handleWorkout(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Task == "" {
		writeError(w, http.StatusBadRequest, "task is required")
		return
	}
	rec, err := s.fitness.Recommend(r.Context(), req.Task, &fitness.Options{
		UserID: req.UserID,
		Risks:  parseRisks(req.Risks),
	})
	if err != nil {
		s.logger.Error("workout recommendation failed", zap.String("user_id", req.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := s.profiles.Profile(r.Context(), id)
	if errors.Is(err, profile.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "profile lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var p profile.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = id
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.profiles.SaveProfile(r.Context(), &p); err != nil {
		writeError(w, http.StatusInternalServerError, "profile save failed")
		return
	}
	writeJSON(w, http.StatusOK, &p)
}

type budgetResponse struct {
	Target    profile.Macros `json:"target"`
	Consumed  profile.Macros `json:"consumed"`
	Remaining profile.Macros `json:"remaining"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := s.profiles.Profile(r.Context(), id)
	if errors.Is(err, profile.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "profile lookup failed")
		return
	}
	target, err := s.calc.DailyCalorieTarget(p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "target computation failed")
		return
	}
	targets := profile.DailyTargets(target)
	consumed, err := s.profiles.DailyIntake(r.Context(), id, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "intake lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{
		Target:    targets,
		Consumed:  consumed,
		Remaining: remaining(targets, consumed),
	})
}

func (s *Server) handlePreference(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := s.profiles.IncrPreference(r.Context(), vars["id"], vars["kind"])
	if errors.Is(err, profile.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	} else if err != nil {
		writeError(w, http.StatusInternalServerError, "preference update failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// remaining clamps every macro budget at zero.
func remaining(target, consumed profile.Macros) profile.Macros {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}
	return profile.Macros{
		Calories: clamp(target.Calories - consumed.Calories),
		Protein:  clamp(target.Protein - consumed.Protein),
		Carbs:    clamp(target.Carbs - consumed.Carbs),
		Fat:      clamp(target.Fat - consumed.Fat),
	}
}

func parseRisks(raw []string) []safety.WarningTag {
	return safety.NormalizeTags(raw)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
