package guidelines

import (
	"context"

	"github.com/philippgille/chromem-go"
)

// ChromemEngine stores guideline chunks in a chromem-go database.
type ChromemEngine struct {
	db *chromem.DB
}

// NewChromemEngine wraps an initialized chromem database.
func NewChromemEngine(db *chromem.DB) *ChromemEngine {
	return &ChromemEngine{db: db}
}

func (e *ChromemEngine) Insert(ctx context.Context, collection string, records ...Record) error {
	col, err := e.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return err
	}
	for _, record := range records {
		doc := chromem.Document{
			ID:        record.ID,
			Content:   record.Content,
			Embedding: Float32s(record.Vector),
		}
		if len(record.Meta) > 0 {
			meta := make(map[string]string, len(record.Meta))
			for k, v := range record.Meta {
				meta[k] = v
			}
			doc.Metadata = meta
		}
		if err := col.AddDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (e *ChromemEngine) Search(ctx context.Context, collection string, vector []float64, opts ...SearchOption) ([]Record, error) {
	options := &SearchOptions{TopK: 1}
	for _, opt := range opts {
		opt(options)
	}
	col, err := e.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return nil, err
	}
	topK := options.TopK
	if count := col.Count(); topK > count {
		topK = count
	}
	if topK < 1 {
		return nil, nil
	}
	results, err := col.QueryEmbedding(ctx, Float32s(vector), topK, options.Meta, nil)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(results))
	for _, result := range results {
		records = append(records, Record{
			ID:      result.ID,
			Score:   float64(result.Similarity),
			Content: result.Content,
			Meta:    result.Metadata,
		})
	}
	return records, nil
}
