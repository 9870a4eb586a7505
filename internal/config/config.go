package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

// Config holds every setting of the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Session  SessionConfig  `yaml:"session"`
	Draw     DrawConfig     `yaml:"draw"`
	Grouping GroupingConfig `yaml:"grouping"`
	Naming   NamingConfig   `yaml:"naming"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HTTPConfig describes the HTTP server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	GinMode         string        `yaml:"gin_mode" env:"GIN_MODE"`
}

// SessionConfig controls how long idle sessions are kept.
type SessionConfig struct {
	IdleTTL         time.Duration `yaml:"idle_ttl" env:"SESSION_IDLE_TTL"`
	JanitorInterval time.Duration `yaml:"janitor_interval" env:"SESSION_JANITOR_INTERVAL"`
}

// DrawConfig is the spin pacing.
type DrawConfig struct {
	Interval      time.Duration `yaml:"interval" env:"DRAW_INTERVAL"`
	SlowdownAfter float64       `yaml:"slowdown_after" env:"DRAW_SLOWDOWN_AFTER"`
	SlowdownStep  time.Duration `yaml:"slowdown_step" env:"DRAW_SLOWDOWN_STEP"`
	MinSteps      int           `yaml:"min_steps" env:"DRAW_MIN_STEPS"`
	MaxSteps      int           `yaml:"max_steps" env:"DRAW_MAX_STEPS"`
}

// GroupingConfig holds auto grouping defaults.
type GroupingConfig struct {
	DefaultSize  int           `yaml:"default_size" env:"GROUP_DEFAULT_SIZE"`
	DefaultTheme string        `yaml:"default_theme" env:"GROUP_DEFAULT_THEME"`
	Timeout      time.Duration `yaml:"timeout" env:"GROUP_TIMEOUT"`
}

// NamingConfig configures the Gemini name generator. Without an API key
// placeholder names are used.
type NamingConfig struct {
	APIKey  string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model   string        `yaml:"model" env:"GEMINI_MODEL"`
	Timeout time.Duration `yaml:"timeout" env:"GEMINI_TIMEOUT"`
}

// LoggingConfig sets the logger verbosity.
type LoggingConfig struct {
	Verbosity int  `yaml:"verbosity" env:"LOG_VERBOSITY"`
	System    bool `yaml:"system" env:"LOG_SYSTEM"`
}

// MustLoad is Load that panics on error.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the YAML file at path (or CONFIG_PATH) and applies environment
// overrides. The default config file is optional; an explicitly named one is not.
func Load(path string) (Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
		explicit = false
	}

	cfg := Config{}
	if err := readYAML(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env vars: %w", err)
	}
	if cfg.Naming.APIKey == "" {
		cfg.Naming.APIKey = os.Getenv("API_KEY")
	}
	cfg.normalize()
	return cfg, nil
}

// LoadDotEnv loads variables from .env files that exist. Variables already
// set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config yaml: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout <= 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.IdleTimeout <= 0 {
		c.HTTP.IdleTimeout = 5 * time.Minute
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 5 * time.Second
	}
	if c.HTTP.GinMode == "" {
		c.HTTP.GinMode = "release"
	}

	if c.Session.IdleTTL <= 0 {
		c.Session.IdleTTL = time.Hour
	}
	if c.Session.JanitorInterval <= 0 {
		c.Session.JanitorInterval = 10 * time.Minute
	}

	if c.Draw.Interval <= 0 {
		c.Draw.Interval = 50 * time.Millisecond
	}
	if c.Draw.SlowdownAfter <= 0 || c.Draw.SlowdownAfter > 1 {
		c.Draw.SlowdownAfter = 0.7
	}
	if c.Draw.SlowdownStep < 0 {
		c.Draw.SlowdownStep = 0
	} else if c.Draw.SlowdownStep == 0 {
		c.Draw.SlowdownStep = 20 * time.Millisecond
	}
	if c.Draw.MinSteps <= 0 {
		c.Draw.MinSteps = 30
	}
	if c.Draw.MaxSteps <= c.Draw.MinSteps {
		c.Draw.MaxSteps = c.Draw.MinSteps + 20
	}

	if c.Grouping.DefaultSize <= 0 {
		c.Grouping.DefaultSize = 3
	}
	if c.Grouping.DefaultTheme == "" {
		c.Grouping.DefaultTheme = "superheroes"
	}
	if c.Grouping.Timeout <= 0 {
		c.Grouping.Timeout = 30 * time.Second
	}

	if c.Naming.Model == "" {
		c.Naming.Model = "gemini-3-flash-preview"
	}
	if c.Naming.Timeout <= 0 {
		c.Naming.Timeout = 20 * time.Second
	}
}
