package guidelines

import (
	"context"

	gemini "github.com/google/generative-ai-go/genai"
)

// Embedder turns text into vectors for the knowledge store.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	BatchEmbed(ctx context.Context, texts []string) ([][]float64, error)
}

// GeminiEmbedder embeds text with a Gemini embedding model.
type GeminiEmbedder struct {
	model *gemini.EmbeddingModel
}

func NewGeminiEmbedder(client *gemini.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{model: client.EmbeddingModel(model)}
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	res, err := e.model.EmbedContent(ctx, gemini.Text(text))
	if err != nil {
		return nil, err
	}
	return float64s(res.Embedding.Values), nil
}

func (e *GeminiEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float64, error) {
	batch := e.model.NewBatch()
	for _, text := range texts {
		batch = batch.AddContent(gemini.Text(text))
	}
	res, err := e.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	vectors := make([][]float64, 0, len(res.Embeddings))
	for _, embedding := range res.Embeddings {
		vectors = append(vectors, float64s(embedding.Values))
	}
	return vectors, nil
}

func float64s(vectors []float32) []float64 {
	ret := make([]float64, len(vectors))
	for idx, v := range vectors {
		ret[idx] = float64(v)
	}
	return ret
}
