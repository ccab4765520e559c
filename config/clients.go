package config

import (
	"context"
	"fmt"

	"github.com/bububa/instructor-go/pkg/instructor"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	cohereOption "github.com/cohere-ai/cohere-go/v2/option"
	gemini "github.com/google/generative-ai-go/genai"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// NewInstructor builds the structured-output client for the configured
// provider.
func (c *Config) NewInstructor() instructor.Instructor {
	switch c.LLM.Provider {
	case "anthropic":
		opts := make([]anthropic.ClientOption, 0, 1)
		if c.LLM.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(c.LLM.BaseURL))
		}
		clt := anthropic.NewClient(c.LLM.APIKey, opts...)
		return instructor.FromAnthropic(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
	case "cohere":
		opts := make([]cohereOption.RequestOption, 0, 2)
		opts = append(opts, cohereOption.WithToken(c.LLM.APIKey))
		if c.LLM.BaseURL != "" {
			opts = append(opts, cohereOption.WithBaseURL(c.LLM.BaseURL))
		}
		clt := cohereClient.NewClient(opts...)
		return instructor.FromCohere(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
	default:
		cfg := openai.DefaultConfig(c.LLM.APIKey)
		if c.LLM.BaseURL != "" {
			cfg.BaseURL = c.LLM.BaseURL
		}
		clt := openai.NewClientWithConfig(cfg)
		return instructor.FromOpenAI(clt, instructor.WithMode(instructor.ModeJSON), instructor.WithMaxRetries(3), instructor.WithValidation())
	}
}

// NewGeminiClient builds the client shared by the vision engine and the
// embedder.
func (c *Config) NewGeminiClient(ctx context.Context) (*gemini.Client, error) {
	if c.Gemini.APIKey == "" {
		return nil, fmt.Errorf("config: gemini api key not configured")
	}
	return gemini.NewClient(ctx, option.WithAPIKey(c.Gemini.APIKey))
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = level
	return zapCfg.Build()
}
