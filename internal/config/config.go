package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	WorkerCount   int           `yaml:"worker_count"`
	Identity      IdentityConfig `yaml:"identity"`
	Scoring       ScoringConfig  `yaml:"scoring"`
}

// IdentityConfig points at the remote profile service. RetryDelay is the
// fixed wait before the single retry covering the profile-not-yet-created
// race on first social sign-in.
type IdentityConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// ScoringConfig configures the Ollama-backed match scorer. An empty BaseURL
// disables scoring entirely; pipeline commands never depend on it.
type ScoringConfig struct {
	BaseURL                 string        `yaml:"base_url"`
	Model                   string        `yaml:"model"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("TF_ADDR", ":8080"),
		JWTSecret:     getEnv("TF_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("TF_DATABASE_PATH", "talentflow.db"),
		TokenDuration: 1 * time.Hour,
		WorkerCount:   2,
		Identity: IdentityConfig{
			BaseURL:    getEnv("TF_IDENTITY_URL", ""),
			Timeout:    10 * time.Second,
			RetryDelay: 2 * time.Second,
		},
		Scoring: ScoringConfig{
			BaseURL: getEnv("TF_SCORING_URL", ""),
			Model:   getEnv("TF_SCORING_MODEL", "llama3.2"),
			Timeout: 20 * time.Second,
			Retries: 2,
			Backoff: 500 * time.Millisecond,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate applies defaults and rejects configurations that must not reach
// production, such as the development JWT secret outside development.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must be set")
	}
	if c.JWTSecret == "supersecretkey" && os.Getenv("TF_ENV") != "development" {
		return fmt.Errorf("insecure jwt_secret outside development")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 1 * time.Hour
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
	if c.Identity.Timeout <= 0 {
		c.Identity.Timeout = 10 * time.Second
	}
	if c.Identity.RetryDelay <= 0 {
		c.Identity.RetryDelay = 2 * time.Second
	}
	if c.Scoring.BaseURL != "" {
		if c.Scoring.Model == "" {
			return fmt.Errorf("scoring.model must be set when scoring is enabled")
		}
		if c.Scoring.Timeout <= 0 {
			c.Scoring.Timeout = 20 * time.Second
		}
		if c.Scoring.CircuitFailureThreshold <= 0 {
			c.Scoring.CircuitFailureThreshold = 5
		}
		if c.Scoring.CircuitReset <= 0 {
			c.Scoring.CircuitReset = 30 * time.Second
		}
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
