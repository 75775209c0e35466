// Package cli provides the command-line interface for the chart data
// tooling.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kline-chart/internal/config"
	"kline-chart/internal/feed"
	"kline-chart/internal/logging"
	"kline-chart/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	REST   *feed.RESTClient
	Cache  *store.SQLiteStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		REST:   feed.NewRESTClient(cfg.Feed, logger),
	}

	if cfg.Cache.Enabled {
		cache, err := store.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to open candle cache, continuing without it")
		} else {
			app.Cache = cache
			logger.Debug().Str("path", cfg.Cache.Path).Msg("candle cache opened")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "kline-chart",
		Short: "Candlestick chart data engine",
		Long: `kline-chart fetches, streams and analyzes candlestick market data.

It loads historical klines over REST, follows live updates over
WebSocket and computes technical indicators over the merged series.

Use 'kline-chart help <command>' for more information about a command.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/kline-chart)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addFetchCommand(rootCmd, app)
	addStreamCommand(rootCmd, app)
	addIndicatorCommands(rootCmd, app)
	addExportCommand(rootCmd, app)

	return rootCmd
}

// Execute loads configuration, builds the root command and runs it.
func Execute() error {
	cfg, err := config.Load(config.DefaultConfigDir())
	if err != nil {
		cfg = config.Default()
	}

	logger := logging.NewLogger()
	return NewRootCmd(cfg, logger).Execute()
}
