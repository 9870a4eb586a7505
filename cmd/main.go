package main

import (
	"context"
	"embed"
	"fmt"
	"io"
	"os"

	"github.com/google/logger"
	"github.com/spf13/cobra"

	"funhub/internal/config"
	"funhub/internal/draw"
	"funhub/internal/grouping"
	"funhub/internal/naming"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:assets
var assetsFS embed.FS

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "funhub",
	Short: "Lucky draw and team grouping for events",
	Long: `funhub runs the lucky draw and auto grouping tools for a room full of people.

Run "funhub serve" to start the web UI, or use the draw and group commands
to work on a names file from the terminal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file (default config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(serveCmd, drawCmd, groupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env and the config file, then starts the logger.
// The returned closer flushes the logger.
func loadConfig(logOut io.Writer) (config.Config, func(), error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	l := logger.Init("funhub", false, cfg.Logging.System, logOut)
	level := cfg.Logging.Verbosity
	if verbose && level < 1 {
		level = 1
	}
	logger.SetLevel(logger.Level(level))
	return cfg, l.Close, nil
}

// pacingFrom turns the draw settings into spin pacing.
func pacingFrom(cfg config.DrawConfig) draw.Pacing {
	return draw.Pacing{
		Interval:      cfg.Interval,
		SlowdownAfter: cfg.SlowdownAfter,
		SlowdownStep:  cfg.SlowdownStep,
		MinSteps:      cfg.MinSteps,
		MaxSteps:      cfg.MaxSteps,
	}
}

// newNamer uses Gemini when an API key is configured and placeholder names otherwise.
func newNamer(ctx context.Context, cfg config.NamingConfig) grouping.Namer {
	if cfg.APIKey == "" {
		logger.Info("No Gemini API key configured, groups get placeholder names")
		return naming.StaticNamer{}
	}
	namer, err := naming.NewGeminiNamer(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
	if err != nil {
		logger.Warningf("Gemini unavailable, groups get placeholder names: %v", err)
		return naming.StaticNamer{}
	}
	logger.Infof("Group names come from %s", cfg.Model)
	return namer
}
