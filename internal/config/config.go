package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver          string        `env:"DB_DRIVER" envDefault:"memory"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	SQLitePath        string        `env:"SQLITE_PATH" envDefault:"vibe.db"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

	GameRetention   time.Duration `env:"GAME_RETENTION" envDefault:"2h"`
	ReaperInterval  time.Duration `env:"REAPER_INTERVAL" envDefault:"5m"`
	FinishedGameTTL time.Duration `env:"FINISHED_GAME_TTL" envDefault:"0s"`
	RevealDuration  time.Duration `env:"REVEAL_DURATION" envDefault:"0s"`
	CommitAttempts  int           `env:"COMMIT_ATTEMPTS" envDefault:"3"`

	CodeLength           int `env:"CODE_LENGTH" envDefault:"4"`
	CodeAttempts         int `env:"CODE_ATTEMPTS" envDefault:"10"`
	MaxParticipants      int `env:"MAX_PARTICIPANTS" envDefault:"20"`
	DefaultMaxPrompts    int `env:"DEFAULT_MAX_PROMPTS" envDefault:"3"`
	DefaultMaxCharacters int `env:"DEFAULT_MAX_CHARACTERS" envDefault:"1000"`

	PromptCooldown         time.Duration `env:"PROMPT_COOLDOWN" envDefault:"3s"`
	GlobalPromptsPerMinute int           `env:"GLOBAL_PROMPTS_PER_MINUTE" envDefault:"120"`

	GeneratorBaseURL      string        `env:"GENERATOR_BASE_URL"`
	GeneratorAPIKey       string        `env:"GENERATOR_API_KEY"`
	GeneratorModel        string        `env:"GENERATOR_MODEL" envDefault:"gpt-4o-mini"`
	GeneratorMaxTokens    int           `env:"GENERATOR_MAX_TOKENS" envDefault:"4096"`
	GeneratorTimeout      time.Duration `env:"GENERATOR_TIMEOUT" envDefault:"60s"`
	GeneratorClientID     string        `env:"GENERATOR_CLIENT_ID"`
	GeneratorClientSecret string        `env:"GENERATOR_CLIENT_SECRET"`
	GeneratorTokenURL     string        `env:"GENERATOR_TOKEN_URL"`
}

// Default returns the built-in defaults, ignoring the environment.
func Default() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load overlays the environment on the defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be memory, postgres or sqlite, got %q", c.DBDriver)
	}
	if c.CommitAttempts < 1 {
		return fmt.Errorf("COMMIT_ATTEMPTS must be at least 1")
	}
	if c.CodeLength < 4 || c.CodeLength > 6 {
		return fmt.Errorf("CODE_LENGTH must be between 4 and 6")
	}
	if c.MaxParticipants < 1 || c.MaxParticipants > 20 {
		return fmt.Errorf("MAX_PARTICIPANTS must be between 1 and 20")
	}
	if c.ReaperInterval <= 0 {
		return fmt.Errorf("REAPER_INTERVAL must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// GeneratorConfigured reports whether any generator credentials are set.
func (c Config) GeneratorConfigured() bool {
	return c.GeneratorAPIKey != "" || (c.GeneratorClientID != "" && c.GeneratorClientSecret != "")
}
