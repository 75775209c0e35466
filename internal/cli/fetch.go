package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kline-chart/internal/feed"
	"kline-chart/internal/models"
)

func addFetchCommand(rootCmd *cobra.Command, app *App) {
	var tail int

	fetchCmd := &cobra.Command{
		Use:   "fetch [symbol]",
		Short: "Fetch historical candles",
		Long:  "Fetch recent candles for a symbol over REST and cache them locally.",
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

			if app.Cache != nil {
				if err := app.Cache.SaveCandles(cmd.Context(), symbol, interval, batch); err != nil {
					app.Logger.Warn().Err(err).Msg("failed to cache candles")
				}
			}

			color.Cyan("📈 %s %s (%d candles)", symbol, interval, len(batch.Candles))
			printCandleTable(batch, tail)
			return nil
		},
	}
	fetchCmd.Flags().StringVar(&app.Config.Chart.Interval, "interval", app.Config.Chart.Interval, "candle interval (1m, 5m, 1h, ...)")
	fetchCmd.Flags().IntVar(&tail, "tail", 10, "number of most recent candles to print")

	rootCmd.AddCommand(fetchCmd)
}

func printCandleTable(batch feed.HistoryBatch, tail int) {
	start := 0
	if tail > 0 && len(batch.Candles) > tail {
		start = len(batch.Candles) - tail
	}

	fmt.Printf("%-18s %12s %12s %12s %12s %14s\n", "TIME", "OPEN", "HIGH", "LOW", "CLOSE", "VOLUME")
	for i := start; i < len(batch.Candles); i++ {
		c := batch.Candles[i]
		line := fmt.Sprintf("%-18s %12s %12s %12s %12s %14.2f",
			models.FormatTime(c.Time),
			models.FormatPrice(c.Open),
			models.FormatPrice(c.High),
			models.FormatPrice(c.Low),
			models.FormatPrice(c.Close),
			batch.Volumes[i])
		if c.IsBullish() {
			color.Green("%s", line)
		} else {
			color.Red("%s", line)
		}
	}
}
