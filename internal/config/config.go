// Package config loads the service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Model providers.
const (
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

// Config is the application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Model    ModelConfig    `mapstructure:"model"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	LocalLLM LocalLLMConfig `mapstructure:"local_llm"`
	Database DatabaseConfig `mapstructure:"database"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Image    ImageConfig    `mapstructure:"image"`
}

// AppConfig holds application-wide settings.
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// Debug reports whether the service runs outside production.
func (a AppConfig) Debug() bool {
	return a.Env != "production"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ModelConfig selects the model back-end and bounds each call.
type ModelConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// GeminiConfig configures the Gemini back-end.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// LocalLLMConfig configures the OpenAI-compatible back-end.
type LocalLLMConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// DatabaseConfig configures the optional analysis log. An empty URL disables it.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// CORSConfig lists the origins allowed to call the API.
type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// ImageConfig bounds uploaded images.
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	ResizeWidth  uint  `mapstructure:"resize_width"`
}

var envBindings = map[string]string{
	"app.env":              "APP_ENV",
	"app.log_level":        "LOG_LEVEL",
	"server.port":          "PORT",
	"model.provider":       "MODEL_PROVIDER",
	"model.timeout":        "MODEL_TIMEOUT",
	"gemini.api_key":       "GEMINI_API_KEY",
	"gemini.model":         "GEMINI_MODEL",
	"local_llm.base_url":   "LLM_BASE_URL",
	"local_llm.api_key":    "LLM_API_KEY",
	"local_llm.model":      "LLM_MODEL",
	"database.url":         "DATABASE_URL",
	"cors.origins":         "CORS_ORIGINS",
	"image.max_size_bytes": "IMAGE_MAX_SIZE_BYTES",
}

// Load reads .env when present, then the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Model.Provider = strings.ToLower(strings.TrimSpace(cfg.Model.Provider))
	cfg.CORS.Origins = trimAll(cfg.CORS.Origins)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fridgechef")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("model.provider", ProviderGemini)
	v.SetDefault("model.timeout", "45s")

	v.SetDefault("gemini.model", "gemini-1.5-flash")

	v.SetDefault("local_llm.base_url", "http://localhost:1234/v1")
	v.SetDefault("local_llm.model", "gemma-3-12b-it")
	v.SetDefault("local_llm.max_tokens", 1024)

	v.SetDefault("cors.origins", []string{"http://localhost:3000"})

	v.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB
	v.SetDefault("image.resize_width", 800)
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}

	switch cfg.Model.Provider {
	case ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderLocal:
		if cfg.LocalLLM.BaseURL == "" {
			return fmt.Errorf("LLM_BASE_URL is required for the local provider")
		}
	default:
		return fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}

	if cfg.Model.Timeout <= 0 {
		return fmt.Errorf("invalid model timeout")
	}
	if cfg.Image.MaxSizeBytes <= 0 {
		return fmt.Errorf("invalid image max size")
	}
	if cfg.Image.ResizeWidth == 0 {
		return fmt.Errorf("invalid image resize width")
	}
	return nil
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
