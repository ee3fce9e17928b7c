// Package config defines the zirak configuration and how it is loaded.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/llm"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the full process configuration.
type Config struct {
	Log        LogConfig        `koanf:"log"`
	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Redis      RedisConfig      `koanf:"redis"`
	LLM        llm.Config       `koanf:"llm"`
	Assessment AssessmentConfig `koanf:"assessment"`
	Auth       AuthConfig       `koanf:"auth"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "text" for the console writer or "json".
	Format string `koanf:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`

	// SweepInterval is how often overdue assessments are expired.
	// Zero disables the sweeper.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// StoreConfig selects the database.
type StoreConfig struct {
	Driver string `koanf:"driver"`

	// DSN is a SQLite path or a Postgres URL. An empty SQLite DSN
	// resolves to the default data path.
	DSN string `koanf:"dsn"`

	MaxConns int32 `koanf:"max_conns"`
}

// RedisConfig enables the Redis analytics mirror when Addr is set.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// Enabled reports whether Redis is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// AssessmentConfig tunes the assessment engine.
type AssessmentConfig struct {
	// QuestionCount is fixed at 10; other values are rejected.
	QuestionCount  int           `koanf:"question_count"`
	RetakeCooldown time.Duration `koanf:"retake_cooldown"`
	SubmitGrace    time.Duration `koanf:"submit_grace"`

	// BankFile is an optional YAML question bank.
	BankFile string `koanf:"bank_file"`

	// CatalogFile replaces the embedded skill catalog.
	CatalogFile string `koanf:"catalog_file"`

	// AIQuestions lets the LLM provider write question sets.
	AIQuestions bool `koanf:"ai_questions"`

	// AIGrading lets the LLM provider grade coding challenges.
	AIGrading bool `koanf:"ai_grading"`
}

// Service returns the assessment.Config for the engine.
func (a AssessmentConfig) Service() assessment.Config {
	return assessment.Config{
		RetakeCooldown: a.RetakeCooldown,
		SubmitGrace:    a.SubmitGrace,
	}
}

// AuthConfig maps API keys to user ids.
type AuthConfig struct {
	// APIKeys holds "key:user-id" pairs.
	APIKeys []string `koanf:"api_keys"`
}

// Principals returns the key to user-id map.
func (a AuthConfig) Principals() (map[string]string, error) {
	out := make(map[string]string, len(a.APIKeys))
	for i, pair := range a.APIKeys {
		key, user, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || key == "" || user == "" {
			return nil, fmt.Errorf("%w: auth.api_keys[%d] must be key:user-id", ErrInvalidConfig, i)
		}
		out[key] = user
	}
	return out, nil
}

// New returns the defaults.
func New() *Config {
	defaults := assessment.DefaultConfig()
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:            ":8080",
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
			SweepInterval:   time.Minute,
		},
		Store: StoreConfig{Driver: DriverSQLite},
		LLM:   llm.DefaultConfig(),
		Assessment: AssessmentConfig{
			QuestionCount:  10,
			RetakeCooldown: defaults.RetakeCooldown,
			SubmitGrace:    defaults.SubmitGrace,
		},
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Assessment.QuestionCount != 10 {
		errs = append(errs, fmt.Errorf("assessment.question_count must be 10, got %d", c.Assessment.QuestionCount))
	}
	if c.Assessment.RetakeCooldown < 0 {
		errs = append(errs, errors.New("assessment.retake_cooldown must not be negative"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if _, err := c.Auth.Principals(); err != nil {
		errs = append(errs, err)
	}
	if c.LLM.Provider != "auto" {
		if err := c.LLM.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
