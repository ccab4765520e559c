package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/healthbutler/healthbutler/guidelines"
)

func newIngestCmd() *cobra.Command {
	var corpusPath string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed an exercise guideline corpus into the persistent store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if corpusPath != "" {
				cfg.Retrieval.CorpusPath = corpusPath
			}
			if cfg.Retrieval.CorpusPath == "" {
				return fmt.Errorf("no corpus path given (flag --corpus or retrieval.corpus_path)")
			}
			if cfg.Retrieval.PersistPath == "" {
				return fmt.Errorf("ingest needs retrieval.persist_path, otherwise embeddings are lost on exit")
			}

			logger, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			geminiClient, err := cfg.NewGeminiClient(ctx)
			if err != nil {
				return err
			}
			defer geminiClient.Close()

			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			store := guidelines.NewStore(engine,
				guidelines.NewGeminiEmbedder(geminiClient, cfg.Gemini.EmbeddingModel), logger)

			docs, err := guidelines.LoadCorpus(cfg.Retrieval.CorpusPath)
			if err != nil {
				return err
			}
			n, err := store.Ingest(ctx, docs...)
			if err != nil {
				return err
			}
			logger.Info("corpus ingested",
				zap.String("path", cfg.Retrieval.CorpusPath),
				zap.Int("documents", len(docs)),
				zap.Int("chunks", n))
			return nil
		},
	}
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "Path to the guideline corpus (YAML)")
	return cmd
}
