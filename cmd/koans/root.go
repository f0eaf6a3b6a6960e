package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/use-agent/koans/config"
)

var isDebug bool

var rootCmd = &cobra.Command{
	Use:   "koans",
	Short: "Greed, triangle and screenplay koans",
	Long: `koans scores Greed dice, classifies triangles and extracts scenes and
speaking roles from screenplay pages, as a CLI or an HTTP API.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig reads the environment (after .env) and sets up logging.
func loadConfig() *config.Config {
	cfg := config.Load()
	initLogger(cfg.Log, isDebug)
	return cfg
}

// initLogger configures slog based on the LogConfig. Text output goes
// through tint; everything is written to stderr so command output on
// stdout stays clean.
func initLogger(cfg config.LogConfig, debug bool) {
	level := parseLevel(cfg.Level)
	if debug {
		level = slog.LevelDebug
	}

	if cfg.Format == "text" {
		stylelog.InitDefault(&tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
		return
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
