package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	gemini "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/healthbutler/healthbutler/safety"
	"github.com/healthbutler/healthbutler/schema"
)

const macroPrompt = `Identify the single main dish in the image and estimate its nutrition.
Respond with a JSON object: {"dish_name": string, "calories": number, "macros": {"protein": number, "carbs": number, "fat": number}} (grams).`

const riskPrompt = `Inspect how the food in the image was prepared.
Respond with a JSON object: {"visual_warnings": [string], "health_score": number}.
visual_warnings may only contain: "fried", "high_oil", "high_sugar", "processed".
health_score rates overall healthiness from 1 (worst) to 10 (best).`

type macroPayload struct {
	DishName string  `json:"dish_name"`
	Calories float64 `json:"calories"`
	Macros   Macros  `json:"macros"`
}

type riskPayload struct {
	VisualWarnings []string `json:"visual_warnings"`
	HealthScore    int      `json:"health_score"`
}

// GeminiEngine implements Engine on top of the Gemini multimodal API. The
// dish/macro estimate and the cooking-method risk scan run as two concurrent
// model calls joined before the result is assembled.
type GeminiEngine struct {
	model  *gemini.GenerativeModel
	logger *zap.Logger
}

var _ Engine = (*GeminiEngine)(nil)

// NewGemini builds a GeminiEngine from a shared client and model name.
func NewGemini(client *gemini.Client, model string, logger *zap.Logger) *GeminiEngine {
	m := client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiEngine{
		model:  m,
		logger: logger,
	}
}

// Analyze runs both vision calls concurrently and joins their results.
// The image buffer is released before returning, on every path.
func (e *GeminiEngine) Analyze(ctx context.Context, img *schema.ImageBuffer, hint string) (*FoodAnalysis, error) {
	defer func() {
		if err := img.Close(); err != nil {
			// cleanup failure cannot affect the computed response
			e.logger.Warn("closing image buffer", zap.Error(err))
		}
	}()

	data, err := img.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	format := imageFormat(data)

	var (
		macros macroPayload
		risks  riskPayload
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.generate(gctx, data, format, withHint(macroPrompt, hint), &macros)
	})
	g.Go(func() error {
		return e.generate(gctx, data, format, riskPrompt, &risks)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &FoodAnalysis{
		DishName:       macros.DishName,
		Calories:       macros.Calories,
		Macros:         macros.Macros,
		VisualWarnings: safety.NormalizeTags(risks.VisualWarnings),
		HealthScore:    clampScore(risks.HealthScore),
	}, nil
}

// generate performs one vision call and decodes the JSON reply into out.
func (e *GeminiEngine) generate(ctx context.Context, data []byte, format, prompt string, out any) error {
	resp, err := e.model.GenerateContent(ctx, gemini.ImageData(format, data), gemini.Text(prompt))
	if err != nil {
		return err
	}
	raw, err := firstText(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode vision response: %w", err)
	}
	return nil
}

func withHint(prompt, hint string) string {
	if hint == "" {
		return prompt
	}
	return prompt + "\nUser context: " + hint
}

// imageFormat sniffs the buffer and returns the bare format Gemini expects
// ("jpeg", "png", ...).
func imageFormat(data []byte) string {
	mime := mimetype.Detect(data).String()
	return strings.TrimPrefix(mime, "image/")
}

// firstText extracts the first text part of a Gemini response.
func firstText(resp *gemini.GenerateContentResponse) (string, error) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(gemini.Text); ok {
				return string(txt), nil
			}
		}
	}
	return "", fmt.Errorf("empty vision response")
}
