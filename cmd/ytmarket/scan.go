package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ytmarket/pkg/auth"
	"ytmarket/pkg/config"
	"ytmarket/pkg/logger"
	"ytmarket/pkg/market"
	"ytmarket/pkg/ratelimit"
	"ytmarket/pkg/retry"
	"ytmarket/pkg/rotator"
	"ytmarket/pkg/scan"
	"ytmarket/pkg/ui"
	"ytmarket/pkg/youtube"
)

var (
	// Scan command flags
	scanRegions   string
	scanWindow    string
	scanKind      string
	scanDuration  string
	scanOrder     string
	scanLimit     int
	scanKeys      string
	scanRateLimit int
	exportPath    string
	exportFormat  string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <keyword>",
	Short: "Scan YouTube for a keyword and score the market",
	Long: `Scan YouTube search results for a keyword across the configured regions
and produce a market report: the pooled result set, per-video statistics
with competitor classification, and a saturation verdict.

API keys are taken from (in order): the --keys flag, the YTMARKET_API_KEYS
environment variable, the configuration file, and keys stored with
'ytmarket auth login'. When a key's daily quota runs out mid-scan the next
key takes over automatically.`,
	Example: `  # Scan the default region with default settings
  ytmarket scan "sourdough baking"

  # Scan several regions, ordered by view count
  ytmarket scan "lofi mixes" --regions US,GB,DE --order viewCount

  # Restrict to videos published this month, shorts only
  ytmarket scan "keyboard review" --time-window month --duration short

  # Export the report
  ytmarket scan "woodworking" --export report.json

  # Enumerate channels instead of videos
  ytmarket scan "chess openings" --kind channel`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runScan(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanRegions, "regions", "r", "", "comma-separated region codes (e.g. US,GB,DE)")
	scanCmd.Flags().StringVarP(&scanWindow, "time-window", "t", "", "publication window: hour, today, week, month, year, any")
	scanCmd.Flags().StringVar(&scanKind, "kind", "", "result kind: video, channel, playlist")
	scanCmd.Flags().StringVar(&scanDuration, "duration", "", "video length filter: short, medium, long, any")
	scanCmd.Flags().StringVarP(&scanOrder, "order", "o", "", "result ordering: relevance, viewCount, date, rating")
	scanCmd.Flags().IntVarP(&scanLimit, "limit", "l", 0, "per-region result cap (50-1000)")
	scanCmd.Flags().StringVarP(&scanKeys, "keys", "k", "", "comma-separated API keys, overriding stored ones")
	scanCmd.Flags().IntVar(&scanRateLimit, "rate-limit", 0, "requests per minute")
	scanCmd.Flags().StringVarP(&exportPath, "export", "e", "", "write the report to this file")
	scanCmd.Flags().StringVar(&exportFormat, "export-format", "", "export format: json, csv")
}

func runScan(cmd *cobra.Command, args []string) {
	keyword := strings.TrimSpace(args[0])

	flags := make(map[string]interface{})
	if scanKeys != "" {
		flags["api-keys"] = splitCSV(scanKeys)
	}
	if scanRegions != "" {
		flags["regions"] = splitCSV(scanRegions)
	}
	if scanWindow != "" {
		flags["time-window"] = scanWindow
	}
	if scanKind != "" {
		flags["kind"] = scanKind
	}
	if scanDuration != "" {
		flags["duration"] = scanDuration
	}
	if scanOrder != "" {
		flags["order"] = scanOrder
	}
	if scanLimit != 0 {
		flags["limit"] = scanLimit
	}
	if scanRateLimit != 0 {
		flags["requests-per-minute"] = scanRateLimit
	}
	if exportPath != "" {
		flags["export"] = exportPath
	}
	if exportFormat != "" {
		flags["export-format"] = exportFormat
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if cfg.Output.NoColor {
		ui.SetNoColor(true)
	}

	logger.Initialize(&cfg.Logging)
	log := logger.GetLogger()
	log.WithField("version", version).Info("market scanner starting")

	keys := resolveKeys(cfg)
	if len(keys) == 0 {
		log.Error("no API keys available")
		ui.PrintError("No YouTube API keys found")
		fmt.Println("\nTo store a key securely, run:")
		fmt.Println("  ytmarket auth login")
		fmt.Println("\nOr set an environment variable:")
		fmt.Println("  export YTMARKET_API_KEYS=key1,key2")
		os.Exit(1)
	}

	regions := make([]string, 0, len(cfg.Scan.Regions))
	for _, region := range cfg.Scan.Regions {
		regions = append(regions, strings.ToUpper(strings.TrimSpace(region)))
	}

	params := market.ScanParams{
		Keyword:        keyword,
		Window:         market.TimeWindow(cfg.Scan.TimeWindow),
		Kind:           market.ResultKind(cfg.Scan.ResultKind),
		Duration:       market.DurationFilter(cfg.Scan.Duration),
		Order:          market.SortOrder(cfg.Scan.Order),
		PerRegionLimit: cfg.Scan.PerRegionLimit,
		Regions:        regions,
	}
	if err := params.Validate(); err != nil {
		ui.PrintError("Invalid scan parameters", err.Error())
		os.Exit(1)
	}

	if !quiet {
		ui.PrintInfo("Keyword", keyword)
		ui.PrintInfo("Regions", strings.Join(params.Regions, ", "))
		ui.PrintInfo("Keys in pool", fmt.Sprintf("%d", len(keys)))
	}

	factory := func(key string) (*youtube.Client, error) {
		client, err := youtube.NewClient(key, cfg.YouTube.Timeout, log)
		if err != nil {
			return nil, err
		}
		client.SetRetrier(retry.NewRetrier(
			cfg.RateLimit.MaxRetries,
			cfg.RateLimit.RetryDelay,
			cfg.RateLimit.BackoffMultiplier,
			log,
		))
		return client, nil
	}

	rot := rotator.New(keys, factory, log)
	rot.OnRotate = func(from, to int) {
		ui.PrintWarning(fmt.Sprintf("API key #%d exhausted, switching to key #%d", from+1, to+1))
	}

	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	analyzer := scan.NewAnalyzer(rot, limiter, nil, log)

	tracker := ui.NewScanTracker(len(params.Regions), quiet)
	analyzer.Scanner().Progress = tracker.Update

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		ui.PrintHighlight("[SCANNING MARKET]")
	}

	report, err := analyzer.Run(ctx, params)
	tracker.Finish()
	if err != nil {
		log.WithError(err).Error("scan failed")
		ui.PrintError("SCAN FAILED", err.Error())
		os.Exit(1)
	}

	ui.RenderReport(os.Stdout, report)

	if cfg.Output.ExportPath != "" {
		if err := market.Export(cfg.Output.ExportPath, cfg.Output.ExportFormat, report); err != nil {
			ui.PrintError("Failed to export report", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Report written to " + cfg.Output.ExportPath)
	}

	log.InfoWithFields("scan finished", map[string]interface{}{
		"run_id": report.RunID,
		"found":  report.TotalFound,
	})
}

// splitCSV splits a comma-separated flag value, dropping blanks
func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// resolveKeys builds the rotation pool: explicit config/flag/env keys first,
// then keys stored with 'auth login'. Duplicates keep their first position.
func resolveKeys(cfg *config.Config) []string {
	var keys []string
	seen := make(map[string]bool)

	add := func(key string) {
		key = strings.TrimSpace(key)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		keys = append(keys, key)
	}

	for _, key := range cfg.YouTube.APIKeys {
		add(key)
	}

	if manager, err := auth.NewManager(); err == nil {
		if stored, err := manager.Keys(); err == nil {
			for _, key := range stored {
				add(key)
			}
		}
	}

	return keys
}
