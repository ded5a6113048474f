package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

// Config holds all application configuration
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Extract ExtractConfig `yaml:"extract"`
	Lookup  LookupConfig  `yaml:"lookup"`
	Cache   CacheConfig   `yaml:"cache"`
	Collate CollateConfig `yaml:"collate"`
	Stores  StoresConfig  `yaml:"stores"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// PathsConfig holds input/output locations
type PathsConfig struct {
	ReceiptsDir string `yaml:"receipts_dir"`
	OutputDir   string `yaml:"output_dir"`
	SkipHidden  bool   `yaml:"skip_hidden"`
}

// ExtractConfig holds PDF text extraction configuration
type ExtractConfig struct {
	Pdftotext       string        `yaml:"pdftotext"`
	Fallback        bool          `yaml:"fallback"`
	Validate        bool          `yaml:"validate"`
	Workers         int           `yaml:"workers"`
	DocumentTimeout time.Duration `yaml:"document_timeout"`
}

// LookupConfig holds external price lookup configuration
type LookupConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	Delay     time.Duration `yaml:"delay"`
	HintsFile string        `yaml:"hints_file"`
	UserAgent string        `yaml:"user_agent"`
}

// CacheConfig holds the lookup hint cache configuration
type CacheConfig struct {
	DSN string        `yaml:"dsn"`
	TTL time.Duration `yaml:"ttl"`
}

// CollateConfig holds quantity estimation tuning
type CollateConfig struct {
	MedianThreshold float64 `yaml:"median_threshold"`
	WriteXLSX       bool    `yaml:"write_xlsx"`
	Currency        string  `yaml:"currency"`
}

// StoresConfig holds per-retailer filename prefixes and extra header tokens
type StoresConfig struct {
	CostcoPrefix        string   `yaml:"costco_prefix"`
	SamsClubPrefix      string   `yaml:"sams_club_prefix"`
	CostcoHeaderExtra   []string `yaml:"costco_header_extra"`
	SamsClubHeaderExtra []string `yaml:"sams_club_header_extra"`
}

// MetricsConfig holds the Prometheus textfile target
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			ReceiptsDir: "./receipts",
			OutputDir:   "./out",
			SkipHidden:  true,
		},
		Extract: ExtractConfig{
			Pdftotext:       "pdftotext",
			Fallback:        true,
			Validate:        true,
			Workers:         4,
			DocumentTimeout: time.Minute,
		},
		Lookup: LookupConfig{
			Enabled: false,
			BaseURL: "https://www.costco.com",
			Timeout: 15 * time.Second,
			Delay:   time.Second,
		},
		Cache: CacheConfig{
			DSN: "file:./out/hints.db?_pragma=busy_timeout(5000)",
			TTL: 30 * 24 * time.Hour,
		},
		Collate: CollateConfig{
			MedianThreshold: 1.5,
			Currency:        "USD",
		},
		Stores: StoresConfig{
			CostcoPrefix:   constants.Costco.DefaultPrefix(),
			SamsClubPrefix: constants.SamsClub.DefaultPrefix(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig builds configuration from defaults, an optional YAML file, a .env
// file in the working directory, and environment variables, in that order of
// increasing precedence.
func LoadConfig(file string) (*Config, error) {
	cfg := DefaultConfig()

	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", "read config file", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "parse config file", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, NewAppError("CONFIG_ERROR", "load .env", err)
	}

	cfg.Paths.ReceiptsDir = getEnv("RECEIPTS_DIR", cfg.Paths.ReceiptsDir)
	cfg.Paths.OutputDir = getEnv("OUTPUT_DIR", cfg.Paths.OutputDir)
	cfg.Paths.SkipHidden = getEnvAsBool("SKIP_HIDDEN", cfg.Paths.SkipHidden)

	cfg.Extract.Pdftotext = getEnv("PDFTOTEXT_BIN", cfg.Extract.Pdftotext)
	cfg.Extract.Fallback = getEnvAsBool("PDF_FALLBACK", cfg.Extract.Fallback)
	cfg.Extract.Validate = getEnvAsBool("PDF_VALIDATE", cfg.Extract.Validate)
	cfg.Extract.Workers = getEnvAsInt("EXTRACT_WORKERS", cfg.Extract.Workers)
	cfg.Extract.DocumentTimeout = getEnvAsDuration("EXTRACT_DOCUMENT_TIMEOUT", cfg.Extract.DocumentTimeout)

	cfg.Lookup.Enabled = getEnvAsBool("LOOKUP_ENABLED", cfg.Lookup.Enabled)
	cfg.Lookup.BaseURL = getEnv("LOOKUP_BASE_URL", cfg.Lookup.BaseURL)
	cfg.Lookup.Timeout = getEnvAsDuration("LOOKUP_TIMEOUT", cfg.Lookup.Timeout)
	cfg.Lookup.Delay = getEnvAsDuration("LOOKUP_DELAY", cfg.Lookup.Delay)
	cfg.Lookup.HintsFile = getEnv("LOOKUP_HINTS_FILE", cfg.Lookup.HintsFile)
	cfg.Lookup.UserAgent = getEnv("LOOKUP_USER_AGENT", cfg.Lookup.UserAgent)

	cfg.Cache.DSN = getEnv("HINT_CACHE_DSN", cfg.Cache.DSN)
	cfg.Cache.TTL = getEnvAsDuration("HINT_CACHE_TTL", cfg.Cache.TTL)

	cfg.Collate.MedianThreshold = getEnvAsFloat64("COLLATE_MEDIAN_THRESHOLD", cfg.Collate.MedianThreshold)
	cfg.Collate.WriteXLSX = getEnvAsBool("COLLATE_WRITE_XLSX", cfg.Collate.WriteXLSX)
	cfg.Collate.Currency = getEnv("COLLATE_CURRENCY", cfg.Collate.Currency)

	cfg.Stores.CostcoPrefix = getEnv("COSTCO_PREFIX", cfg.Stores.CostcoPrefix)
	cfg.Stores.SamsClubPrefix = getEnv("SAMS_CLUB_PREFIX", cfg.Stores.SamsClubPrefix)
	cfg.Stores.CostcoHeaderExtra = getEnvAsList("COSTCO_HEADER_EXTRA", cfg.Stores.CostcoHeaderExtra)
	cfg.Stores.SamsClubHeaderExtra = getEnvAsList("SAMS_CLUB_HEADER_EXTRA", cfg.Stores.SamsClubHeaderExtra)

	cfg.Metrics.TextfilePath = getEnv("METRICS_TEXTFILE", cfg.Metrics.TextfilePath)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

// Prefixes maps each store to its filename prefix.
func (c *Config) Prefixes() map[constants.Store]string {
	return map[constants.Store]string{
		constants.Costco:   c.Stores.CostcoPrefix,
		constants.SamsClub: c.Stores.SamsClubPrefix,
	}
}

// HeaderExtra returns configured header tokens for a store beyond the built-in set.
func (c *Config) HeaderExtra(s constants.Store) []string {
	switch s {
	case constants.Costco:
		return c.Stores.CostcoHeaderExtra
	case constants.SamsClub:
		return c.Stores.SamsClubHeaderExtra
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// comma-separated; empty entries dropped
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Paths.OutputDir == "" {
		return NewAppError("CONFIG_ERROR", "OUTPUT_DIR is required", ErrInvalidInput)
	}
	if c.Extract.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_WORKERS must be positive", ErrInvalidInput)
	}
	if c.Collate.MedianThreshold <= 0 {
		return NewAppError("CONFIG_ERROR", "COLLATE_MEDIAN_THRESHOLD must be positive", ErrInvalidInput)
	}
	if c.Lookup.Enabled && c.Lookup.BaseURL == "" && c.Lookup.HintsFile == "" {
		return NewAppError("CONFIG_ERROR", "LOOKUP_BASE_URL or LOOKUP_HINTS_FILE is required when lookup is enabled", ErrInvalidInput)
	}
	if c.Lookup.Delay < 0 {
		return NewAppError("CONFIG_ERROR", "LOOKUP_DELAY must not be negative", ErrInvalidInput)
	}
	if err := NewValidator().Field("COLLATE_CURRENCY", c.Collate.Currency, CurrencyCode).Err(); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid currency", err)
	}
	if c.Stores.CostcoPrefix == "" || c.Stores.SamsClubPrefix == "" {
		return NewAppError("CONFIG_ERROR", "store prefixes must not be empty", ErrInvalidInput)
	}
	if strings.EqualFold(c.Stores.CostcoPrefix, c.Stores.SamsClubPrefix) {
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("store prefixes collide: %q", c.Stores.CostcoPrefix), ErrInvalidInput)
	}
	return nil
}
