package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthbutler/healthbutler/agents/fitness"
	"github.com/healthbutler/healthbutler/agents/nutrition"
	"github.com/healthbutler/healthbutler/config"
	"github.com/healthbutler/healthbutler/coordinator"
	"github.com/healthbutler/healthbutler/guidelines"
	"github.com/healthbutler/healthbutler/profile"
	"github.com/healthbutler/healthbutler/server"
	"github.com/healthbutler/healthbutler/vision"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the health butler HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	geminiClient, err := cfg.NewGeminiClient(ctx)
	if err != nil {
		return err
	}
	defer geminiClient.Close()

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	embedder := guidelines.NewGeminiEmbedder(geminiClient, cfg.Gemini.EmbeddingModel)
	store := guidelines.NewStore(engine, embedder, logger)
	if cfg.Retrieval.CorpusPath != "" {
		docs, err := guidelines.LoadCorpus(cfg.Retrieval.CorpusPath)
		if err != nil {
			return err
		}
		n, err := store.Ingest(ctx, docs...)
		if err != nil {
			return err
		}
		logger.Info("guideline corpus ingested",
			zap.String("path", cfg.Retrieval.CorpusPath),
			zap.Int("chunks", n))
	}

	profiles := profile.NewMemoryStore()
	calc, err := newCalculator(cfg)
	if err != nil {
		return err
	}

	clt := cfg.NewInstructor()
	visionEngine := vision.NewGemini(geminiClient, cfg.Gemini.VisionModel, logger)
	nutritionAgent := nutrition.New(visionEngine, profiles, calc,
		nutrition.WithEstimator(nutrition.NewEstimator(clt, cfg.LLM.Model)),
		nutrition.WithLogger(logger))
	fitnessAgent := fitness.New(store,
		fitness.WithPlanner(fitness.NewPlanner(clt, cfg.LLM.Model)),
		fitness.WithProfiles(profiles),
		fitness.WithTopK(cfg.Retrieval.TopK),
		fitness.WithLogger(logger))
	coord := coordinator.New(nutritionAgent, fitnessAgent,
		coordinator.WithProfiles(profiles),
		coordinator.WithTimeout(cfg.RequestTimeout.Std()),
		coordinator.WithLogger(logger))

	srv := server.New(coord, nutritionAgent, fitnessAgent, profiles, calc,
		server.WithLogger(logger),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins))

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newEngine(cfg *config.Config) (guidelines.Engine, error) {
	if cfg.Retrieval.PersistPath == "" {
		return guidelines.NewChromemEngine(chromem.NewDB()), nil
	}
	db, err := chromem.NewPersistentDB(cfg.Retrieval.PersistPath, false)
	if err != nil {
		return nil, err
	}
	return guidelines.NewChromemEngine(db), nil
}

func newCalculator(cfg *config.Config) (*profile.Calculator, error) {
	factors := make(map[profile.ActivityLevel]float64, len(cfg.Profiles.ActivityFactors))
	for level, factor := range cfg.Profiles.ActivityFactors {
		factors[profile.ActivityLevel(level)] = factor
	}
	return profile.NewCalculator(cfg.Profiles.GoalExpressions,
		profile.WithActivityFactors(factors))
}
