package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ytmarket/pkg/config"
	"ytmarket/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage market scanner configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (YTMARKET_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.ytmarket.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

API keys are masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Region codes and enum values`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".ytmarket.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# ytmarket configuration file
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with YTMARKET_
# For example: YTMARKET_API_KEYS, YTMARKET_REGIONS

# YouTube Data API access
youtube:
  # API keys, in rotation order. When the first key's daily quota runs
  # out mid-scan, the next one takes over.
  # Prefer 'ytmarket auth login' for secure storage; keys listed here
  # are read as-is.
  api_keys: []

  # Per-request timeout
  timeout: 30s

# Default scan parameters (overridable per scan with flags)
scan:
  # Region codes to scan, in order
  regions: ["US"]

  # Publication window: hour, today, week, month, year, any
  time_window: "week"

  # What the search enumerates: video, channel, playlist
  result_kind: "video"

  # Video length filter: short, medium, long, any
  duration: "any"

  # Result ordering: relevance, viewCount, date, rating
  order: "relevance"

  # Per-region result cap
  # Range: 50-1000
  per_region_limit: 100

# Client-side request pacing and transport retries
rate_limit:
  # Requests per minute
  requests_per_minute: 60

  # Transport retry attempts for network and server errors.
  # Quota errors are never retried; they rotate keys instead.
  max_retries: 3

  # Initial retry delay
  retry_delay: 2s

  # Backoff multiplier
  backoff_multiplier: 2.0

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""

# Report output
output:
  # Write every report to this file (optional)
  export_path: ""

  # Export format: json, csv
  export_format: "json"

  # Disable colored terminal output
  no_color: false
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Store an API key with 'ytmarket auth login'")
	fmt.Println("2. Run 'ytmarket config validate' to check the configuration")
	fmt.Println("3. Start scanning with 'ytmarket scan \"your keyword\"'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	displayCfg.YouTube.APIKeys = make([]string, len(cfg.YouTube.APIKeys))
	for i, key := range cfg.YouTube.APIKeys {
		if len(key) > 8 {
			displayCfg.YouTube.APIKeys[i] = key[:4] + "..." + key[len(key)-4:]
		} else {
			displayCfg.YouTube.APIKeys[i] = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (YTMARKET_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			".ytmarket.yaml",
			".ytmarket.yml",
			"ytmarket.yaml",
			filepath.Join(os.Getenv("HOME"), ".ytmarket.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "ytmarket", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	var warnings []string

	if len(cfg.YouTube.APIKeys) == 0 {
		warnings = append(warnings, "no API keys in config; scans will rely on stored or environment keys")
	}
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			ui.PrintError("Cannot create log directory", err.Error())
			os.Exit(1)
		}
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Regions: %v\n", cfg.Scan.Regions)
	fmt.Printf("  Time window: %s\n", cfg.Scan.TimeWindow)
	fmt.Printf("  Per-region limit: %d\n", cfg.Scan.PerRegionLimit)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Max retries: %d\n", cfg.RateLimit.MaxRetries)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
