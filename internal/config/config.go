package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/thywilljoshua/pdf-outline/internal/ai"
	"github.com/thywilljoshua/pdf-outline/internal/outline"
)

type Config struct {
	Pipeline outline.Config `yaml:"pipeline"`
	Refine   RefineConfig   `yaml:"refine"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

type RefineConfig struct {
	// Provider is "off", "openai" or "gemini".
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	Endpoint    string        `yaml:"endpoint"`
	BatchSize   int           `yaml:"batch_size"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`

	// Keys come from the environment only.
	OpenAIKey string `yaml:"-"`
	GoogleKey string `yaml:"-"`
}

type ServerConfig struct {
	Addr         string `yaml:"addr"`
	APIKey       string `yaml:"-"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	return Config{
		Pipeline: outline.DefaultConfig(),
		Refine: RefineConfig{
			Provider:    "off",
			BatchSize:   ai.DefaultBatchSize,
			Concurrency: ai.DefaultConcurrency,
			Timeout:     ai.DefaultTimeout,
		},
		Server: ServerConfig{
			Addr:         ":8090",
			MaxBodyBytes: 32 << 20, // 32MB
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (if non-empty) over Default and then applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Refine.Provider = envOr("PDFOUTLINE_REFINE_PROVIDER", c.Refine.Provider)
	c.Refine.Model = envOr("PDFOUTLINE_REFINE_MODEL", c.Refine.Model)
	c.Refine.Endpoint = envOr("PDFOUTLINE_REFINE_ENDPOINT", c.Refine.Endpoint)
	c.Refine.BatchSize = envInt("PDFOUTLINE_REFINE_BATCH_SIZE", c.Refine.BatchSize)
	c.Refine.Concurrency = envInt("PDFOUTLINE_REFINE_CONCURRENCY", c.Refine.Concurrency)
	c.Refine.Timeout = envDuration("PDFOUTLINE_REFINE_TIMEOUT", c.Refine.Timeout)
	c.Refine.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.Refine.GoogleKey = envOr("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY"))

	c.Server.Addr = envOr("PDFOUTLINE_ADDR", c.Server.Addr)
	c.Server.APIKey = os.Getenv("PDFOUTLINE_API_KEY")
	c.Server.MaxBodyBytes = envInt64("PDFOUTLINE_MAX_BODY_BYTES", c.Server.MaxBodyBytes)

	c.Log.Level = envOr("PDFOUTLINE_LOG_LEVEL", c.Log.Level)
	c.Log.Development = envBool("PDFOUTLINE_LOG_DEV", c.Log.Development)
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Pipeline.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Refine.Provider) {
	case "", "off":
	case "openai":
		if c.Refine.OpenAIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
		}
	case "gemini":
		if c.Refine.GoogleKey == "" {
			errs = append(errs, errors.New("GOOGLE_API_KEY is required for the gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown refine provider %q", c.Refine.Provider))
	}
	if c.Refine.BatchSize <= 0 || c.Refine.Concurrency <= 0 || c.Refine.Timeout <= 0 {
		errs = append(errs, errors.New("refine batch_size, concurrency and timeout must be positive"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
