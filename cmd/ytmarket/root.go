package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"ytmarket/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytmarket",
	Short: "YouTube keyword market research from the command line",
	Long: `ytmarket scans YouTube search results for a keyword across one or more
regions, pools the deduplicated results, joins in video and channel
statistics, and scores how crowded the niche is.

Features:
  - Multi-region scanning with a global dedup pool
  - Automatic API key rotation when a key's daily quota runs out
  - Competitor classification by channel subscriber count
  - Supply/saturation scoring with a 0-100 composite verdict
  - Secure API key storage using the system keychain
  - JSON and CSV report export`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetNoColor(true)
		}
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" && !quiet {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .ytmarket.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress logo and progress output")

	rootCmd.SetVersionTemplate(`ytmarket {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
