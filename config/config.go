// Package config loads the service configuration from YAML plus environment
// overrides and builds the provider clients from it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration parses YAML durations given either as Go duration strings ("30s")
// or as plain seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds int64
	if err := value.Decode(&seconds); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(time.Duration(seconds) * time.Second)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LLM configures the structured-output chat provider.
type LLM struct {
	Provider    string  `yaml:"provider" validate:"omitempty,oneof=openai anthropic cohere"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
}

// Gemini configures the vision and embedding models.
type Gemini struct {
	APIKey         string `yaml:"api_key"`
	VisionModel    string `yaml:"vision_model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// Retrieval configures the safety knowledge store.
type Retrieval struct {
	TopK        int    `yaml:"top_k" validate:"gte=0,lte=20"`
	CorpusPath  string `yaml:"corpus_path"`
	PersistPath string `yaml:"persist_path"`
}

// Profiles configures the TDEE math.
type Profiles struct {
	ActivityFactors map[string]float64 `yaml:"activity_factors"`
	GoalExpressions map[string]string  `yaml:"goal_expressions"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Config is the root configuration.
type Config struct {
	LLM            LLM       `yaml:"llm"`
	Gemini         Gemini    `yaml:"gemini"`
	Retrieval      Retrieval `yaml:"retrieval"`
	Profiles       Profiles  `yaml:"profiles"`
	Server         Server    `yaml:"server"`
	RequestTimeout Duration  `yaml:"request_timeout" validate:"gte=0"`
	LogLevel       string    `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LLM: LLM{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.4,
			MaxTokens:   1024,
		},
		Gemini: Gemini{
			VisionModel:    "gemini-1.5-flash",
			EmbeddingModel: "text-embedding-004",
		},
		Retrieval: Retrieval{
			TopK: 3,
		},
		Server: Server{
			Addr: ":8080",
		},
		RequestTimeout: Duration(30 * time.Second),
		LogLevel:       "info",
	}
}

// Load reads the configuration file, applies .env and environment overrides
// and validates the result. An empty path loads defaults plus environment.
func Load(path string) (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "anthropic":
			c.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "cohere":
			c.LLM.APIKey = os.Getenv("COHERE_API_KEY")
		default:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = os.Getenv("LLM_API_BASE_URL")
	}
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
}
