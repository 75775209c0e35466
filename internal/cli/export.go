package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"kline-chart/internal/models"
)

// candleRow is the CSV export shape for one candle.
type candleRow struct {
	Time   string  `csv:"time"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

func addExportCommand(rootCmd *cobra.Command, app *App) {
	var output string

	exportCmd := &cobra.Command{
		Use:   "export [symbol]",
		Short: "Export candles to CSV",
		Long:  "Fetch recent candles (or load them from the cache) and write them to a CSV file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := app.Config.Chart.Symbol
			if len(args) > 0 {
				symbol = args[0]
			}
			interval := models.Interval(app.Config.Chart.Interval)

			batch, err := app.REST.FetchKlines(cmd.Context(), symbol, interval)
			if err != nil {
				if app.Cache == nil {
					return err
				}
				app.Logger.Warn().Err(err).Msg("fetch failed, falling back to cache")
				batch, err = app.Cache.LoadCandles(cmd.Context(), symbol, interval)
				if err != nil {
					return err
				}
			}

			rows := make([]candleRow, len(batch.Candles))
			for i, c := range batch.Candles {
				rows[i] = candleRow{
					Time:   models.FormatTime(c.Time),
					Open:   c.Open,
					High:   c.High,
					Low:    c.Low,
					Close:  c.Close,
					Volume: batch.Volumes[i],
				}
			}

			path := output
			if path == "" {
				path = fmt.Sprintf("%s_%s.csv", symbol, interval)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			defer f.Close()

			if err := gocsv.MarshalFile(&rows, f); err != nil {
				return fmt.Errorf("failed to write csv: %w", err)
			}

			color.Green("✓ wrote %d candles to %s", len(rows), path)
			return nil
		},
	}

	exportCmd.Flags().StringVar(&app.Config.Chart.Interval, "interval", app.Config.Chart.Interval, "candle interval (1m, 5m, 1h, ...)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default <symbol>_<interval>.csv)")
	rootCmd.AddCommand(exportCmd)
}
