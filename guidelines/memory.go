package guidelines

import (
	"context"
	"sort"
	"sync"
)

// MemoryEngine keeps all records in process memory. It backs tests and the
// default single-node deployment where a persistent vector store is not
// configured.
type MemoryEngine struct {
	mtx         sync.RWMutex
	collections map[string][]Record
}

func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{collections: make(map[string][]Record)}
}

func (e *MemoryEngine) Insert(_ context.Context, collection string, records ...Record) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	stored := e.collections[collection]
	for _, record := range records {
		replaced := false
		for idx := range stored {
			if stored[idx].ID == record.ID {
				stored[idx] = record
				replaced = true
				break
			}
		}
		if !replaced {
			stored = append(stored, record)
		}
	}
	e.collections[collection] = stored
	return nil
}

func (e *MemoryEngine) Search(_ context.Context, collection string, vector []float64, opts ...SearchOption) ([]Record, error) {
	options := &SearchOptions{TopK: 1}
	for _, opt := range opts {
		opt(options)
	}
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	var hits []Record
	for _, record := range e.collections[collection] {
		if !metaMatches(record.Meta, options.Meta) {
			continue
		}
		hit := record
		hit.Score = cosineSimilarity(vector, record.Vector)
		hits = append(hits, hit)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if options.TopK > 0 && len(hits) > options.TopK {
		hits = hits[:options.TopK]
	}
	return hits, nil
}

// Count returns the number of records stored in a collection.
func (e *MemoryEngine) Count(collection string) int {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return len(e.collections[collection])
}

func metaMatches(meta, filter map[string]string) bool {
	for k, v := range filter {
		if meta[k] != v {
			return false
		}
	}
	return true
}
