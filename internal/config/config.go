// Package config loads and validates server configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the datahound server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Profile  ProfileConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// AIConfig configures the optional model enrichment layer. An empty
// Provider disables enrichment: every profile comes from the deterministic
// engine alone.
type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Temperature      float64
	MaxTokens        int
	Thinking         bool
	SampleRows       int
	ReplyCacheTTL    time.Duration
	Ollama           OllamaConfig
	OpenAI           OpenAIConfig
	VLLM             VLLMConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	Model   string
}

// ProfileConfig holds engine-level defaults.
type ProfileConfig struct {
	DefaultMethod string
	Locale        string
	MaxParallel   int
	ResultTTL     time.Duration
}

var validProviders = map[string]bool{
	"":       true, // enrichment disabled
	"ollama": true,
	"vllm":   true,
	"openai": true,
}

var validMethods = map[string]bool{
	"iqr":    true,
	"stddev": true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("DATAHOUND_PORT", 8080),
			Env:  envString("DATAHOUND_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		AI: AIConfig{
			Provider:         os.Getenv("AI_PROVIDER"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			Temperature:      envFloat("AI_TEMPERATURE", 0.2),
			MaxTokens:        envInt("AI_MAX_TOKENS", 2048),
			Thinking:         envBool("AI_THINKING", false),
			SampleRows:       envInt("AI_SAMPLE_ROWS", 20),
			ReplyCacheTTL:    envDuration("AI_REPLY_CACHE_TTL", 1*time.Hour),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			OpenAI: OpenAIConfig{
				BaseURL: envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000"),
				Model:   envString("VLLM_MODEL", ""),
			},
		},
		Profile: ProfileConfig{
			DefaultMethod: envString("PROFILE_DEFAULT_METHOD", "iqr"),
			Locale:        envString("PROFILE_LOCALE", "en"),
			MaxParallel:   envInt("PROFILE_MAX_PARALLEL", 0),
			ResultTTL:     envDuration("PROFILE_RESULT_TTL", 30*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of ollama, vllm, openai, or empty to disable enrichment; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "ollama" {
		base := c.AI.Ollama.BaseURL
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("OLLAMA_BASE_URL must start with http:// or https://, got %q", base)
		}
	}

	if !validMethods[c.Profile.DefaultMethod] {
		return fmt.Errorf("PROFILE_DEFAULT_METHOD must be iqr or stddev; got %q", c.Profile.DefaultMethod)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
