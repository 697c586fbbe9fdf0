package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port             string        `env:"PORT" envDefault:"8000"`
	Env              string        `env:"ENV" envDefault:"development"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"200s"`

	// Online responder (Groq, OpenAI-compatible)
	GroqAPIKey  string        `env:"GROQ_API_KEY"`
	GroqBaseURL string        `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqModel   string        `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	GroqTimeout time.Duration `env:"GROQ_TIMEOUT" envDefault:"60s"`

	// Offline responder (Ollama)
	OllamaURL     string        `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel   string        `env:"OLLAMA_MODEL" envDefault:"phi3:mini"`
	OllamaTimeout time.Duration `env:"OLLAMA_TIMEOUT" envDefault:"120s"`

	// Emotion detection. Gemini is used only when a key is present.
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	EmotionTimeout time.Duration `env:"EMOTION_TIMEOUT" envDefault:"10s"`

	// Conversation memory, in messages (two per exchange)
	MemoryLimit int `env:"MEMORY_LIMIT" envDefault:"10"`

	// Logging
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogNoColor bool   `env:"LOG_NO_COLOR" envDefault:"false"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MemoryLimit < 2 || c.MemoryLimit%2 != 0 {
		return fmt.Errorf("MEMORY_LIMIT must be a positive even number, got %d", c.MemoryLimit)
	}

	timeouts := map[string]time.Duration{
		"HTTP_WRITE_TIMEOUT": c.HTTPWriteTimeout,
		"GROQ_TIMEOUT":       c.GroqTimeout,
		"OLLAMA_TIMEOUT":     c.OllamaTimeout,
		"EMOTION_TIMEOUT":    c.EmotionTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// OnlineEnabled reports whether the hosted responder has credentials.
func (c *Config) OnlineEnabled() bool {
	return c.GroqAPIKey != ""
}
