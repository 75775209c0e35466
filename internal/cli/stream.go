package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kline-chart/internal/feed"
	"kline-chart/internal/models"
	"kline-chart/internal/stream"
	"kline-chart/internal/viewport"
)

func addStreamCommand(rootCmd *cobra.Command, app *App) {
	streamCmd := &cobra.Command{
		Use:   "stream [symbol]",
		Short: "Follow live candle updates",
		Long: `Load history for a symbol, then follow its live kline stream.
Closed candles are printed as they arrive. Press Ctrl+C to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := app.Config.Chart.Symbol
			if len(args) > 0 {
				symbol = args[0]
			}
			interval := models.Interval(app.Config.Chart.Interval)

			session := stream.NewSession(app.REST, app.Config.Feed,
				stream.DefaultIngestorConfig(), viewport.DefaultOptions(), app.Logger)
			session.OnCandleClosed(func(u models.KlineUpdate) {
				line := color.New(color.FgGreen)
				if u.Close < u.Open {
					line = color.New(color.FgRed)
				}
				line.Printf("%s  O %s  H %s  L %s  C %s  V %.2f\n",
					models.FormatTime(u.Time),
					models.FormatPrice(u.Open),
					models.FormatPrice(u.High),
					models.FormatPrice(u.Low),
					models.FormatPrice(u.Close),
					u.Volume)
			})
			session.OnStateChange(func(state feed.State) {
				switch state {
				case feed.StateConnected:
					color.Green("✓ connected to %s %s stream", symbol, interval)
				case feed.StateReconnecting:
					color.Yellow("reconnecting...")
				case feed.StateUnavailable:
					color.Red("✗ feed unavailable")
				}
			})

			if err := session.Start(cmd.Context(), symbol, interval); err != nil {
				return err
			}
			defer session.Close()

			color.Cyan("📡 streaming %s %s (%d historical candles loaded)", symbol, interval, session.Data().Len())

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			select {
			case <-cmd.Context().Done():
			case <-sigCh:
			}

			applied, dropped := session.Stats()
			color.Cyan("applied %d updates, dropped %d", applied, dropped)
			return nil
		},
	}

	streamCmd.Flags().StringVar(&app.Config.Chart.Interval, "interval", app.Config.Chart.Interval, "candle interval (1m, 5m, 1h, ...)")
	rootCmd.AddCommand(streamCmd)
}
