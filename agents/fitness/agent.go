// Package fitness implements the exercise recommendation agent. Candidates
// come from the safety knowledge store, get filtered against the active
// food-risk tags, are composed into a plan and then re-validated once more
// before anything reaches the user.
package fitness

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/healthbutler/healthbutler/components"
	"github.com/healthbutler/healthbutler/guidelines"
	"github.com/healthbutler/healthbutler/profile"
	"github.com/healthbutler/healthbutler/safety"
)

// AgentName identifies the fitness agent in routed plans.
const AgentName = "fitness"

const defaultTopK = 3

// KnowledgeStore is the retrieval interface consumed by the agent.
type KnowledgeStore interface {
	Query(ctx context.Context, input *guidelines.QueryInput) ([]guidelines.ExerciseDoc, error)
}

// PlanRunner abstracts the structured-output plan composition call.
type PlanRunner interface {
	Run(ctx context.Context, input *PlanQuery, output *PlanOutput, apiResp *components.ApiResponse) error
}

// Options carries the per-request context of a recommendation.
type Options struct {
	UserID string
	// Risks are warning tags handed over directly by the caller, merged
	// with any tags extracted from the task text.
	Risks []safety.WarningTag
}

// Agent produces safety-filtered exercise recommendations.
type Agent struct {
	store    KnowledgeStore
	profiles profile.Store
	planner  PlanRunner
	topK     int
	logger   *zap.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithPlanner enables LLM plan composition. Without it the agent emits the
// filtered candidates directly.
func WithPlanner(p PlanRunner) Option {
	return func(a *Agent) {
		a.planner = p
	}
}

func WithProfiles(s profile.Store) Option {
	return func(a *Agent) {
		a.profiles = s
	}
}

func WithTopK(topK int) Option {
	return func(a *Agent) {
		if topK > 0 {
			a.topK = topK
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

func New(store KnowledgeStore, opts ...Option) *Agent {
	a := &Agent{
		store:  store,
		topK:   defaultTopK,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Name() string {
	return AgentName
}

// Recommend answers a fitness request. The task text may embed a health memo
// preamble; its tags are extracted and merged with the tags passed in opts.
// The result always contains at least one recommendation.
func (a *Agent) Recommend(ctx context.Context, task string, opts *Options) (*Recommendation, error) {
	if opts == nil {
		opts = &Options{}
	}
	risks := mergeRisks(opts.Risks, safety.ExtractTags(task))
	blocked := safety.BlockedKeywords(risks)
	conditions := a.conditions(ctx, opts.UserID)

	out := &Recommendation{}
	// the requested activity itself may already be off-limits
	for _, kw := range safety.MatchAllBlocked(task, blocked) {
		appendAvoid(out, safety.KeywordName(kw), safety.ReasonForKeyword(risks, kw))
	}

	docs, err := a.store.Query(ctx, &guidelines.QueryInput{
		Task:           task,
		UserConditions: conditions,
		DynamicRisks:   risks,
		TopK:           a.topK,
	})
	if err != nil {
		a.logger.Warn("knowledge store query failed, using fallback set", zap.Error(err))
		docs = nil
	}
	candidates := docs[:0:0]
	for _, doc := range docs {
		if kw, hit := safety.MatchBlocked(doc.Name+" "+doc.Description, blocked); hit {
			appendAvoid(out, doc.Name, safety.ReasonForKeyword(risks, kw))
			continue
		}
		candidates = append(candidates, doc)
	}
	if len(candidates) == 0 {
		candidates = guidelines.FallbackExercises()
	}

	a.compose(ctx, task, candidates, conditions, out)
	substituted := a.validate(out, blocked, risks)

	if (len(out.Avoid) > 0 || substituted) && len(risks) > 0 {
		out.SafetyWarnings = append(out.SafetyWarnings,
			fmt.Sprintf("%s (risk: %s)", safety.BR001Disclaimer, strings.Join(safety.TagStrings(risks), ", ")))
		out.SafetyWarnings = append(out.SafetyWarnings, safety.Reasons(risks)...)
	}
	return out, nil
}

func (a *Agent) conditions(ctx context.Context, userID string) []string {
	if a.profiles == nil || userID == "" {
		return nil
	}
	prof, err := a.profiles.Profile(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		return nil
	} else if err != nil {
		a.logger.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return prof.Conditions
}

// compose fills out.Recommendations, via the planner when configured and
// deterministically from the candidates otherwise.
func (a *Agent) compose(ctx context.Context, task string, candidates []guidelines.ExerciseDoc, conditions []string, out *Recommendation) {
	if a.planner != nil {
		query := &PlanQuery{
			Task:       task,
			Conditions: conditions,
		}
		for _, doc := range candidates {
			query.Candidates = append(query.Candidates, fmt.Sprintf("%s (%s): %s", doc.Name, doc.Intensity, doc.Description))
		}
		for _, item := range out.Avoid {
			query.Avoid = append(query.Avoid, item.Name)
		}
		plan := new(PlanOutput)
		if err := a.planner.Run(ctx, query, plan, nil); err != nil {
			a.logger.Warn("plan composition failed, emitting candidates directly", zap.Error(err))
		} else {
			for _, rec := range plan.Recommendations {
				out.Recommendations = append(out.Recommendations, Exercise{
					Name:            rec.Name,
					DurationMinutes: rec.DurationMinutes,
					Intensity:       rec.Intensity,
				})
			}
			out.Notes = plan.Notes
		}
	}
	if len(out.Recommendations) > 0 {
		return
	}
	for idx, doc := range candidates {
		if idx >= a.topK {
			break
		}
		intensity := doc.Intensity
		if intensity == "" {
			intensity = "moderate"
		}
		out.Recommendations = append(out.Recommendations, Exercise{
			Name:            doc.Name,
			DurationMinutes: durationFor(intensity),
			Intensity:       intensity,
			Description:     doc.Description,
		})
	}
}

// validate is the second pass: it re-scans the composed plan against the
// blocked keywords and swaps any hit for a low-intensity substitute. It
// reports whether any substitution happened.
func (a *Agent) validate(out *Recommendation, blocked []string, risks []safety.WarningTag) bool {
	substitutes := guidelines.FallbackExercises()
	nextSub := 0
	substituted := false
	have := make(map[string]bool, len(out.Recommendations))
	for _, rec := range out.Recommendations {
		have[strings.ToLower(rec.Name)] = true
	}
	kept := out.Recommendations[:0]
	for _, rec := range out.Recommendations {
		kw, hit := safety.MatchBlocked(rec.Name+" "+rec.Description, blocked)
		if !hit {
			kept = append(kept, rec)
			continue
		}
		substituted = true
		appendAvoid(out, rec.Name, safety.ReasonForKeyword(risks, kw))
		for nextSub < len(substitutes) {
			sub := substitutes[nextSub]
			nextSub++
			if have[strings.ToLower(sub.Name)] {
				continue
			}
			have[strings.ToLower(sub.Name)] = true
			kept = append(kept, Exercise{
				Name:            sub.Name,
				DurationMinutes: durationFor(sub.Intensity),
				Intensity:       sub.Intensity,
				Description:     sub.Description,
			})
			break
		}
	}
	out.Recommendations = kept
	if _, hit := safety.MatchBlocked(out.Notes, blocked); hit {
		out.Notes = "Keep today's session gentle and listen to your body."
		substituted = true
	}
	if len(out.Recommendations) == 0 {
		sub := substitutes[0]
		out.Recommendations = append(out.Recommendations, Exercise{
			Name:            sub.Name,
			DurationMinutes: durationFor(sub.Intensity),
			Intensity:       sub.Intensity,
			Description:     sub.Description,
		})
	}
	return substituted
}

func mergeRisks(direct, extracted []safety.WarningTag) []safety.WarningTag {
	merged := make([]string, 0, len(direct)+len(extracted))
	for _, tag := range direct {
		merged = append(merged, string(tag))
	}
	for _, tag := range extracted {
		merged = append(merged, string(tag))
	}
	return safety.NormalizeTags(merged)
}

func appendAvoid(out *Recommendation, name, reason string) {
	if name == "" {
		return
	}
	for _, item := range out.Avoid {
		if strings.EqualFold(item.Name, name) {
			return
		}
	}
	out.Avoid = append(out.Avoid, AvoidItem{Name: name, Reason: reason})
}
