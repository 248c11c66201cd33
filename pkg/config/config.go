package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the market scanner
type Config struct {
	// YouTube API keys, in rotation order
	YouTube YouTubeConfig `yaml:"youtube" json:"youtube"`

	// Default scan parameters
	Scan ScanConfig `yaml:"scan" json:"scan"`

	// Client-side request pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`
}

// YouTubeConfig holds API access configuration
type YouTubeConfig struct {
	// APIKeys is an ordered list; position is rotation order
	APIKeys []string      `yaml:"api_keys" json:"api_keys"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ScanConfig holds default scan parameters
type ScanConfig struct {
	Regions        []string `yaml:"regions" json:"regions"`
	TimeWindow     string   `yaml:"time_window" json:"time_window"`
	ResultKind     string   `yaml:"result_kind" json:"result_kind"`
	Duration       string   `yaml:"duration" json:"duration"`
	Order          string   `yaml:"order" json:"order"`
	PerRegionLimit int      `yaml:"per_region_limit" json:"per_region_limit"`
}

// RateLimitConfig holds request pacing and transport retry configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" json:"backoff_multiplier"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// OutputConfig holds report output settings
type OutputConfig struct {
	ExportPath   string `yaml:"export_path" json:"export_path"`
	ExportFormat string `yaml:"export_format" json:"export_format"`
	NoColor      bool   `yaml:"no_color" json:"no_color"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		YouTube: YouTubeConfig{
			Timeout: 30 * time.Second,
		},
		Scan: ScanConfig{
			Regions:        []string{"US"},
			TimeWindow:     "week",
			ResultKind:     "video",
			Duration:       "any",
			Order:          "relevance",
			PerRegionLimit: 100,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			MaxRetries:        3,
			RetryDelay:        2 * time.Second,
			BackoffMultiplier: 2.0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			ExportFormat: "json",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if keys := os.Getenv("YTMARKET_API_KEYS"); keys != "" {
		c.YouTube.APIKeys = splitKeys(keys)
	}
	if key := os.Getenv("YTMARKET_API_KEY"); key != "" && len(c.YouTube.APIKeys) == 0 {
		c.YouTube.APIKeys = []string{key}
	}
	if regions := os.Getenv("YTMARKET_REGIONS"); regions != "" {
		c.Scan.Regions = splitKeys(regions)
	}
	if rpm := os.Getenv("YTMARKET_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if limit := os.Getenv("YTMARKET_PER_REGION_LIMIT"); limit != "" {
		var val int
		fmt.Sscanf(limit, "%d", &val)
		if val > 0 {
			c.Scan.PerRegionLimit = val
		}
	}
	if logLevel := os.Getenv("YTMARKET_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// splitKeys splits a comma- or newline-separated list, dropping blank entries
func splitKeys(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	var out []string
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".ytmarket.yaml",
		".ytmarket.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "ytmarket", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "ytmarket", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".ytmarket.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.YouTube.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.Scan.PerRegionLimit < 50 || c.Scan.PerRegionLimit > 1000 {
		errs = append(errs, errors.New("per-region limit must be between 50 and 1000"))
	}

	validWindows := map[string]bool{
		"hour": true, "today": true, "week": true, "month": true, "year": true, "any": true,
	}
	if !validWindows[c.Scan.TimeWindow] {
		errs = append(errs, fmt.Errorf("invalid time window: %s", c.Scan.TimeWindow))
	}

	validKinds := map[string]bool{"video": true, "channel": true, "playlist": true}
	if !validKinds[c.Scan.ResultKind] {
		errs = append(errs, fmt.Errorf("invalid result kind: %s", c.Scan.ResultKind))
	}

	validDurations := map[string]bool{"short": true, "medium": true, "long": true, "any": true}
	if !validDurations[c.Scan.Duration] {
		errs = append(errs, fmt.Errorf("invalid duration filter: %s", c.Scan.Duration))
	}

	validOrders := map[string]bool{"viewCount": true, "relevance": true, "date": true, "rating": true}
	if !validOrders[c.Scan.Order] {
		errs = append(errs, fmt.Errorf("invalid sort order: %s", c.Scan.Order))
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validFormats := map[string]bool{"json": true, "csv": true}
	if c.Output.ExportFormat != "" && !validFormats[c.Output.ExportFormat] {
		errs = append(errs, fmt.Errorf("invalid export format: %s", c.Output.ExportFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if keys, ok := flags["api-keys"].([]string); ok && len(keys) > 0 {
		c.YouTube.APIKeys = keys
	}
	if regions, ok := flags["regions"].([]string); ok && len(regions) > 0 {
		c.Scan.Regions = regions
	}
	if window, ok := flags["time-window"].(string); ok && window != "" {
		c.Scan.TimeWindow = window
	}
	if kind, ok := flags["kind"].(string); ok && kind != "" {
		c.Scan.ResultKind = kind
	}
	if duration, ok := flags["duration"].(string); ok && duration != "" {
		c.Scan.Duration = duration
	}
	if order, ok := flags["order"].(string); ok && order != "" {
		c.Scan.Order = order
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Scan.PerRegionLimit = limit
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if export, ok := flags["export"].(string); ok && export != "" {
		c.Output.ExportPath = export
	}
	if format, ok := flags["export-format"].(string); ok && format != "" {
		c.Output.ExportFormat = format
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".ytmarket.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
