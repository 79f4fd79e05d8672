// Package config loads solver configuration from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brensch/vacuum/game"
	"github.com/brensch/vacuum/logging"
	"github.com/brensch/vacuum/search"
)

// Config holds all configuration
type Config struct {
	Search SearchConfig `yaml:"search"`
	Server ServerConfig `yaml:"server"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// SearchConfig holds search engine settings
type SearchConfig struct {
	Heuristic     string        `yaml:"heuristic"`
	ValidateOnPop bool          `yaml:"validate_on_pop"`
	MaxExpansions int           `yaml:"max_expansions"` // 0 = unbounded
	Timeout       time.Duration `yaml:"timeout"`        // 0 = none
	Jobs          int           `yaml:"jobs"`           // puzzles solved in parallel by the CLI
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	MaxCells      int           `yaml:"max_cells"`
	SolveTimeout  time.Duration `yaml:"solve_timeout"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// OutputConfig holds archive settings
type OutputConfig struct {
	ParquetDir string `yaml:"parquet_dir"` // empty disables archiving
	FlushEvery int    `yaml:"flush_every"` // puzzles per batch file when serving
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json or pretty
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Search.Heuristic == "" {
		c.Search.Heuristic = game.DefaultHeuristic.String()
	}
	if c.Search.Jobs == 0 {
		c.Search.Jobs = 4
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxCells == 0 {
		c.Server.MaxCells = 400
	}
	if c.Server.SolveTimeout == 0 {
		c.Server.SolveTimeout = 10 * time.Second
	}
	if c.Server.ShutdownGrace == 0 {
		c.Server.ShutdownGrace = 5 * time.Second
	}
	if c.Output.FlushEvery == 0 {
		c.Output.FlushEvery = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = logging.FormatText
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if _, err := game.ParseHeuristic(c.Search.Heuristic); err != nil {
		return fmt.Errorf("search.heuristic: %w", err)
	}
	if c.Search.MaxExpansions < 0 {
		return fmt.Errorf("search.max_expansions must not be negative")
	}
	if c.Search.Jobs < 1 {
		return fmt.Errorf("search.jobs must be at least 1")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf("log.format %q must be text, json or pretty", c.Log.Format)
	}
	return nil
}

// Addr is the listen address of the server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ToSearch converts the search section into an engine configuration.
func (s SearchConfig) ToSearch(logger *slog.Logger) (search.Config, error) {
	h, err := game.ParseHeuristic(s.Heuristic)
	if err != nil {
		return search.Config{}, err
	}
	return search.Config{
		Heuristic:     h,
		ValidateOnPop: s.ValidateOnPop,
		MaxExpansions: s.MaxExpansions,
		Logger:        logger,
	}, nil
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return 0, err
	}
	return l, nil
}
