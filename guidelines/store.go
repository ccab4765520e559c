package guidelines

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthbutler/healthbutler/safety"
)

// Collection is the vector collection holding exercise guideline chunks.
const Collection = "exercise-guidelines"

const metaContraindicationSep = ";"

// ExerciseDoc is a retrieved guideline candidate.
type ExerciseDoc struct {
	Name              string
	Description       string
	Intensity         string
	Contraindications []string
	Source            string
	Score             float64
}

// QueryInput parameterizes one knowledge store lookup.
type QueryInput struct {
	// Task is the user's stated goal, free text
	Task string
	// UserConditions are the static health conditions from the profile
	UserConditions []string
	// DynamicRisks are the food-risk tags of the current conversation
	DynamicRisks []safety.WarningTag
	// TopK bounds the number of returned candidates
	TopK int
}

// Store indexes guideline documents and answers safety-filtered queries.
type Store struct {
	engine   Engine
	embedder Embedder
	chunker  *Chunker
	logger   *zap.Logger
}

func NewStore(engine Engine, embedder Embedder, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		engine:   engine,
		embedder: embedder,
		chunker:  NewChunker(defaultChunkTokens),
		logger:   logger,
	}
}

// Ingest chunks, embeds and indexes guideline documents. It returns the
// number of chunks written.
func (s *Store) Ingest(ctx context.Context, docs ...Document) (int, error) {
	var (
		texts   []string
		records []Record
	)
	for _, doc := range docs {
		chunks := s.chunker.Chunk(doc.text())
		for idx, chunk := range chunks {
			texts = append(texts, chunk)
			records = append(records, Record{
				ID:      chunkID(doc.Name, idx, chunk),
				Content: chunk,
				Meta: map[string]string{
					"exercise":          doc.Name,
					"intensity":         doc.Intensity,
					"source":            doc.Source,
					"contraindications": strings.Join(doc.Contraindications, metaContraindicationSep),
				},
			})
		}
	}
	if len(records) == 0 {
		return 0, nil
	}
	vectors, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("guidelines: embed corpus: %w", err)
	}
	if len(vectors) != len(records) {
		return 0, fmt.Errorf("guidelines: embedder returned %d vectors for %d chunks", len(vectors), len(records))
	}
	for idx := range records {
		records[idx].Vector = vectors[idx]
	}
	if err := s.engine.Insert(ctx, Collection, records...); err != nil {
		return 0, fmt.Errorf("guidelines: index corpus: %w", err)
	}
	s.logger.Info("guideline corpus indexed",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(records)))
	return len(records), nil
}

// Query retrieves exercise candidates ranked by similarity, dropping any
// candidate contraindicated for the user's conditions or matching a blocked
// keyword for the current risk tags. An empty result is a valid answer; the
// caller decides whether to fall back.
func (s *Store) Query(ctx context.Context, input *QueryInput) ([]ExerciseDoc, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = 3
	}
	vector, err := s.embedder.Embed(ctx, s.queryText(input))
	if err != nil {
		return nil, fmt.Errorf("guidelines: embed query: %w", err)
	}
	// over-fetch so post-filtering still leaves topK candidates
	hits, err := s.engine.Search(ctx, Collection, vector, SearchWithTopK(topK*3))
	if err != nil {
		return nil, fmt.Errorf("guidelines: search: %w", err)
	}
	blocked := safety.BlockedKeywords(input.DynamicRisks)
	seen := make(map[string]bool, len(hits))
	docs := make([]ExerciseDoc, 0, topK)
	for _, hit := range hits {
		doc := docFromRecord(hit)
		if seen[doc.Name] {
			continue
		}
		if cond := contraindicated(doc, input.UserConditions); cond != "" {
			s.logger.Debug("candidate dropped for condition",
				zap.String("exercise", doc.Name),
				zap.String("condition", cond))
			continue
		}
		if kw, ok := safety.MatchBlocked(doc.Name+" "+doc.Description, blocked); ok {
			s.logger.Debug("candidate dropped for risk keyword",
				zap.String("exercise", doc.Name),
				zap.String("keyword", kw))
			continue
		}
		seen[doc.Name] = true
		docs = append(docs, doc)
		if len(docs) >= topK {
			break
		}
	}
	return docs, nil
}

func (s *Store) queryText(input *QueryInput) string {
	var builder strings.Builder
	if task := strings.TrimSpace(input.Task); task != "" {
		builder.WriteString(task)
	} else {
		builder.WriteString("safe everyday exercise recommendation")
	}
	if len(input.UserConditions) > 0 {
		builder.WriteString(" for a person with ")
		builder.WriteString(strings.Join(input.UserConditions, ", "))
	}
	if len(input.DynamicRisks) > 0 {
		builder.WriteString(", low to moderate intensity only")
	}
	return builder.String()
}

func docFromRecord(record Record) ExerciseDoc {
	doc := ExerciseDoc{
		Name:        record.Meta["exercise"],
		Description: record.Content,
		Intensity:   record.Meta["intensity"],
		Source:      record.Meta["source"],
		Score:       record.Score,
	}
	if raw := record.Meta["contraindications"]; raw != "" {
		doc.Contraindications = strings.Split(raw, metaContraindicationSep)
	}
	if doc.Name == "" {
		doc.Name = record.ID
	}
	return doc
}

func contraindicated(doc ExerciseDoc, conditions []string) string {
	for _, contra := range doc.Contraindications {
		for _, cond := range conditions {
			if contra == "" || cond == "" {
				continue
			}
			if strings.Contains(strings.ToLower(cond), strings.ToLower(strings.TrimSpace(contra))) ||
				strings.Contains(strings.ToLower(strings.TrimSpace(contra)), strings.ToLower(cond)) {
				return cond
			}
		}
	}
	return ""
}

// chunkID derives a stable ID from the chunk content so re-ingesting the
// same corpus overwrites rather than duplicates.
func chunkID(name string, idx int, chunk string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d/%s", name, idx, chunk))).String()
}

// FallbackExercises is the minimal-risk set returned when retrieval yields
// no usable candidate.
func FallbackExercises() []ExerciseDoc {
	return []ExerciseDoc{
		{
			Name:        "Brisk Walking",
			Description: "Walk at a comfortable but purposeful pace for 20 to 30 minutes.",
			Intensity:   "low",
			Source:      "builtin",
		},
		{
			Name:        "Light Stretching",
			Description: "Gentle full-body stretching, holding each stretch for 20 to 30 seconds.",
			Intensity:   "low",
			Source:      "builtin",
		},
		{
			Name:        "Beginner Yoga",
			Description: "A short restorative yoga sequence focused on breathing and mobility.",
			Intensity:   "low",
			Source:      "builtin",
		},
	}
}
