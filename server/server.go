// Package server exposes the butler over HTTP for the interaction layer.
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/healthbutler/healthbutler/coordinator"
	"github.com/healthbutler/healthbutler/profile"
)

// Server wires the HTTP surface to the coordinator and the agents.
type Server struct {
	coordinator *coordinator.Coordinator
	nutrition   coordinator.NutritionAgent
	fitness     coordinator.FitnessAgent
	profiles    profile.Store
	calc        *profile.Calculator
	logger      *zap.Logger
	origins     []string
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAllowedOrigins restricts CORS to the given origins. Empty means any.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

func New(
	coord *coordinator.Coordinator,
	nutritionAgent coordinator.NutritionAgent,
	fitnessAgent coordinator.FitnessAgent,
	profiles profile.Store,
	calc *profile.Calculator,
	opts ...Option,
) *Server {
	s := &Server{
		coordinator: coord,
		nutrition:   nutritionAgent,
		fitness:     fitnessAgent,
		profiles:    profiles,
		calc:        calc,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routed handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/meals", s.handleMeal).Methods(http.MethodPost)
	api.HandleFunc("/workouts", s.handleWorkout).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{id}", s.handleGetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}", s.handlePutProfile).Methods(http.MethodPut)
	api.HandleFunc("/profiles/{id}/budget", s.handleBudget).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}/preferences/{kind}", s.handlePreference).Methods(http.MethodPost)
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.Use(s.logging)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(router)
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
