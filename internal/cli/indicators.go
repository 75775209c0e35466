package cli

import (
	"fmt"
	"math"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kline-chart/internal/indicators"
	"kline-chart/internal/models"
)

func addIndicatorCommands(rootCmd *cobra.Command, app *App) {
	var workers int

	indicatorsCmd := &cobra.Command{
		Use:   "indicators [symbol]",
		Short: "Compute technical indicators",
		Long:  "Fetch recent candles and print the latest value of a standard indicator set.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := app.Config.Chart.Symbol
			if len(args) > 0 {
				symbol = args[0]
			}
			interval := models.Interval(app.Config.Chart.Interval)

			batch, err := app.REST.FetchKlines(cmd.Context(), symbol, interval)
			if err != nil {
				return err
			}

			cfg := indicators.DefaultConfig()
			cfg.MA1.Enabled = true
			cfg.MA2.Enabled = true
			cfg.Bollinger.Enabled = true
			cfg.RSI.Enabled = true
			cfg.MACD.Enabled = true
			cfg.VWAP.Enabled = true
			cfg.MAVOL1.Enabled = true

			engine := indicators.BuildEngine(workers, cfg)
			result, err := engine.CalculateAll(cmd.Context(), batch.Candles, batch.Volumes)
			if err != nil {
				return err
			}

			color.Cyan("📊 %s %s indicators (%d candles)", symbol, interval, len(batch.Candles))
			printLatestValues(result)
			return nil
		},
	}
	indicatorsCmd.Flags().StringVar(&app.Config.Chart.Interval, "interval", app.Config.Chart.Interval, "candle interval (1m, 5m, 1h, ...)")
	indicatorsCmd.Flags().IntVar(&workers, "workers", 4, "parallel calculation workers")

	rootCmd.AddCommand(indicatorsCmd)
}

func printLatestValues(result *indicators.Result) {
	names := make([]string, 0, len(result.Single))
	for name := range result.Single {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-16s %s\n", name, formatLatest(result.Single[name]))
	}

	multiNames := make([]string, 0, len(result.Multi))
	for name := range result.Multi {
		multiNames = append(multiNames, name)
	}
	sort.Strings(multiNames)
	for _, name := range multiNames {
		lines := result.Multi[name]
		lineNames := make([]string, 0, len(lines))
		for lineName := range lines {
			lineNames = append(lineNames, lineName)
		}
		sort.Strings(lineNames)
		fmt.Printf("  %s\n", name)
		for _, lineName := range lineNames {
			fmt.Printf("    %-14s %s\n", lineName, formatLatest(lines[lineName]))
		}
	}
}

// formatLatest prints the last defined value of a series, or a dash if
// the whole series is still warming up.
func formatLatest(values []float64) string {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return models.FormatPrice(values[i])
		}
	}
	return "-"
}
