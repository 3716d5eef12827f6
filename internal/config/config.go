package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the persistent application configuration
type Config struct {
	// Backend connection
	API APIConfig `json:"api"`

	// Suggestion and poll timing
	Fetch FetchConfig `json:"fetch"`

	// UI Preferences
	UI UIConfig `json:"ui"`

	// Local result history
	History HistoryConfig `json:"history"`
}

// APIConfig describes the GraphQL backend
type APIConfig struct {
	URL               string  `json:"url" validate:"required,url"`
	RequestsPerSecond float64 `json:"requests_per_second" validate:"gte=0"` // 0 = unlimited
	Burst             int     `json:"burst" validate:"gte=0"`
	TimeoutMs         int     `json:"timeout_ms" validate:"gte=0"`
}

// FetchConfig holds request defaults
type FetchConfig struct {
	DefaultLimit   int `json:"default_limit" validate:"min=1,max=5"`
	SuggestDelayMs int `json:"suggest_delay_ms" validate:"gte=0"`
	PollIntervalMs int `json:"poll_interval_ms" validate:"gte=0"`
	PollCeilingMs  int `json:"poll_ceiling_ms" validate:"gte=0"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Currency      string `json:"currency"`
	NoticeSeconds int    `json:"notice_seconds" validate:"gte=0"`
	ShowDebug     bool   `json:"show_debug"`
}

// HistoryConfig controls the sqlite result history
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"db_path,omitempty"` // defaults to ~/.bestcombo/history.db
	Keep    int    `json:"keep" validate:"gte=0"`
}

var validate = validator.New()

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:       "http://localhost:8001/",
			Burst:     1,
			TimeoutMs: 10000,
		},
		Fetch: FetchConfig{
			DefaultLimit:   3,
			SuggestDelayMs: 100,
			PollIntervalMs: 50,
			PollCeilingMs:  500,
		},
		UI: UIConfig{
			Currency:      "€",
			NoticeSeconds: 10,
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    200,
		},
	}
}

// Dir returns the per-user state directory
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".bestcombo")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from ConfigPath, or returns defaults
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path. A missing file yields defaults. Env
// overrides are applied last and the result is validated.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from BESTCOMBO_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("BESTCOMBO_API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("BESTCOMBO_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BESTCOMBO_LIMIT: %w", err)
		}
		c.Fetch.DefaultLimit = n
	}
	if v := os.Getenv("BESTCOMBO_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BESTCOMBO_RPS: %w", err)
		}
		c.API.RequestsPerSecond = f
	}
	if v := os.Getenv("BESTCOMBO_HISTORY_DB"); v != "" {
		c.History.DBPath = v
	}
	return nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// HistoryPath returns the sqlite path for result history
func (c *Config) HistoryPath() string {
	if c.History.DBPath != "" {
		return c.History.DBPath
	}
	return filepath.Join(Dir(), "history.db")
}

// Durations

func (c *Config) RequestTimeout() time.Duration { return ms(c.API.TimeoutMs) }
func (c *Config) SuggestDelay() time.Duration   { return ms(c.Fetch.SuggestDelayMs) }
func (c *Config) PollInterval() time.Duration   { return ms(c.Fetch.PollIntervalMs) }
func (c *Config) PollCeiling() time.Duration    { return ms(c.Fetch.PollCeilingMs) }
func (c *Config) NoticeTTL() time.Duration      { return time.Duration(c.UI.NoticeSeconds) * time.Second }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
