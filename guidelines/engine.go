// Package guidelines implements the safety knowledge store: a retrieval
// index over curated exercise/health guideline documents, queried with the
// user's static conditions plus the dynamic food-risk tags of the current
// conversation.
package guidelines

import (
	"context"
	"math"
)

// Record is one stored guideline chunk with its embedding metadata.
type Record struct {
	// ID identifies the record
	ID string
	// Score is the similarity score of a search hit
	Score float64
	// Content is the embedded text
	Content string
	// Vector is the embedding of Content
	Vector []float64
	// Meta carries the exercise fields (name, intensity, source, ...)
	Meta map[string]string
}

// SearchOptions configure one similarity search.
type SearchOptions struct {
	TopK int
	Meta map[string]string
}

// SearchOption follows the functional options pattern.
type SearchOption func(*SearchOptions)

func SearchWithTopK(topK int) SearchOption {
	return func(o *SearchOptions) {
		o.TopK = topK
	}
}

func SearchWithMeta(meta map[string]string) SearchOption {
	return func(o *SearchOptions) {
		o.Meta = meta
	}
}

// Engine is a pluggable vector index.
type Engine interface {
	Insert(ctx context.Context, collection string, records ...Record) error
	Search(ctx context.Context, collection string, vector []float64, opts ...SearchOption) ([]Record, error)
}

// Float32s converts a float64 vector for engines with float32 storage.
func Float32s(vectors []float64) []float32 {
	ret := make([]float32, len(vectors))
	for idx, v := range vectors {
		ret[idx] = float32(v)
	}
	return ret
}

// cosineSimilarity is used by the in-memory engine.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
