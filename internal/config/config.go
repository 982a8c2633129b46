package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/saadjs/macrolog/internal/app"
	"gopkg.in/yaml.v2"
)

const (
	DefaultOpenFoodFactsURL = "https://world.openfoodfacts.org"
	DefaultAddr             = "127.0.0.1:8080"
	DefaultSearchCap        = 10
	DefaultDebounce         = 300 * time.Millisecond
	DefaultRemoteTimeout    = 8 * time.Second
	DefaultHTTPTimeout      = 12 * time.Second
)

// Environment variables that override file settings.
const (
	EnvDB         = "MACROLOG_DB"
	EnvEnv        = "MACROLOG_ENV"
	EnvLogLevel   = "MACROLOG_LOG_LEVEL"
	EnvOFFBaseURL = "MACROLOG_OFF_BASE_URL"
	EnvAddr       = "MACROLOG_ADDR"
	EnvUser       = "MACROLOG_USER"
)

type Config struct {
	DBPath        string              `yaml:"db_path"`
	Env           string              `yaml:"env"`
	LogLevel      string              `yaml:"log_level"`
	User          string              `yaml:"user"`
	OpenFoodFacts OpenFoodFactsConfig `yaml:"openfoodfacts"`
	Search        SearchConfig        `yaml:"search"`
	Server        ServerConfig        `yaml:"server"`
}

type OpenFoodFactsConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SearchConfig struct {
	Cap           int           `yaml:"cap"`
	Debounce      time.Duration `yaml:"debounce"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Default() Config {
	return Config{
		Env:      "development",
		LogLevel: "info",
		OpenFoodFacts: OpenFoodFactsConfig{
			BaseURL: DefaultOpenFoodFactsURL,
			Timeout: DefaultHTTPTimeout,
		},
		Search: SearchConfig{
			Cap:           DefaultSearchCap,
			Debounce:      DefaultDebounce,
			RemoteTimeout: DefaultRemoteTimeout,
		},
		Server: ServerConfig{
			Addr:           DefaultAddr,
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load layers defaults, the YAML file at path, a .env file in the working
// directory and environment variables, in that order. An empty path means
// the default location; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		p, err := app.DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	if err := readFile(path, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return Config{}, err
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)

	if cfg.DBPath == "" {
		p, err := app.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DBPath = p
	}
	cfg.fillZeroes()
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadDotEnv never overrides variables already set in the process.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.DBPath, EnvDB)
	set(&cfg.Env, EnvEnv)
	set(&cfg.LogLevel, EnvLogLevel)
	set(&cfg.OpenFoodFacts.BaseURL, EnvOFFBaseURL)
	set(&cfg.Server.Addr, EnvAddr)
	set(&cfg.User, EnvUser)
}

// fillZeroes restores defaults for values a file set to zero.
func (c *Config) fillZeroes() {
	d := Default()
	if c.OpenFoodFacts.BaseURL == "" {
		c.OpenFoodFacts.BaseURL = d.OpenFoodFacts.BaseURL
	}
	if c.OpenFoodFacts.Timeout <= 0 {
		c.OpenFoodFacts.Timeout = d.OpenFoodFacts.Timeout
	}
	if c.Search.Cap <= 0 {
		c.Search.Cap = d.Search.Cap
	}
	if c.Search.Debounce <= 0 {
		c.Search.Debounce = d.Search.Debounce
	}
	if c.Search.RemoteTimeout <= 0 {
		c.Search.RemoteTimeout = d.Search.RemoteTimeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
}
