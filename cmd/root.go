package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/crimescope-cli/internal/config"
)

var (
	// Global flags
	cfgFile    string
	logLevel   string
	logFormat  string
	noProgress bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "crimescope",
	Short: "crimescope: summarise UK street-level crime extracts",
	Long: `crimescope scans a directory of police street-level crime extracts, cleans them into one
dataset and produces frequency, per-capita rate, seasonal, outcome, priority and hotspot
summaries as terminal tables, exported files and PNG charts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.crimescope/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "hide the file loading progress bar")
}

func loadConfig(cmd *cobra.Command) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		c.Logging.Level = logLevel
	}
	if f.Changed("log-format") {
		c.Logging.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	setupLogging(cmd, c.Logging)
	return nil
}

func setupLogging(cmd *cobra.Command, l cfgpkg.Logging) {
	var level slog.Level
	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(l.Format) == "json" {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	} else {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	}
	slog.SetDefault(slog.New(handler))
}
