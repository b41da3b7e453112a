package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fno-signals/internal/analysis/oi"
	apperrors "fno-signals/internal/errors"
	"fno-signals/internal/store"
)

func requireEngine(app *App) error {
	if app.Engine == nil {
		return fmt.Errorf("Kite credentials not configured: set KITE_API_KEY and KITE_ACCESS_TOKEN")
	}
	return nil
}

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the instrument universe for signals",
		Long: `Runs the full synthesis pipeline over every configured index and
stock, and prints the signals that pass every gate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireEngine(app); err != nil {
				return err
			}

			if err := app.Engine.RestoreQuota(cmd.Context()); err != nil {
				app.Logger.Warn().Err(err).Msg("Quota restore failed, starting from zero")
			}

			instruments := app.Config.Instruments.All()
			output.Info("Scanning %d instruments...", len(instruments))

			signals := app.Engine.Scan(cmd.Context(), instruments)
			if output.IsJSON() {
				return output.JSON(signals)
			}

			if len(signals) == 0 {
				output.Warning("No qualifying setups found")
				return nil
			}
			for _, sig := range signals {
				output.PrintSignal(sig)
			}
			output.Dim("Daily quota used: %d/%d", app.Engine.QuotaUsed(), app.Config.Engine.MaxDailySignals)
			return nil
		},
	}
	return cmd
}

func newEvaluateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate <symbol>",
		Short: "Evaluate a single underlying",
		Long:  "Runs the synthesis pipeline for one underlying and explains the outcome.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireEngine(app); err != nil {
				return err
			}

			symbol := strings.ToUpper(args[0])
			if err := app.Engine.RestoreQuota(cmd.Context()); err != nil {
				app.Logger.Warn().Err(err).Msg("Quota restore failed, starting from zero")
			}

			sig, err := app.Engine.Evaluate(cmd.Context(), symbol)
			if err != nil {
				switch {
				case apperrors.Is(err, apperrors.ErrNoOpportunity):
					output.Warning("%s: no qualifying setup", symbol)
					return nil
				case apperrors.Is(err, apperrors.ErrInsufficientData):
					output.Warning("%s: insufficient data to analyze", symbol)
					return nil
				case apperrors.Is(err, apperrors.ErrQuotaExhausted):
					output.Warning("Daily signal quota exhausted (%d)", app.Config.Engine.MaxDailySignals)
					return nil
				}
				return err
			}

			if output.IsJSON() {
				return output.JSON(sig)
			}
			output.PrintSignal(sig)
			return nil
		},
	}
}

func newChainCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "chain <symbol>",
		Short: "Show open interest analysis for an underlying",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Provider == nil {
				return fmt.Errorf("Kite credentials not configured: set KITE_API_KEY and KITE_ACCESS_TOKEN")
			}

			symbol := strings.ToUpper(args[0])
			chain, err := app.Provider.GetOptionChain(cmd.Context(), symbol)
			if err != nil {
				return err
			}

			analyzer := oi.NewAnalyzer()
			analysis, err := analyzer.Analyze(chain)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(analysis)
			}

			output.Bold("%s | spot %.2f, expiry %s", symbol, chain.SpotPrice, chain.Expiry.Format("02 Jan 2006"))
			output.PrintOIAnalysis(analysis)
			return nil
		},
	}
}

func newSignalsCmd(app *App) *cobra.Command {
	var (
		instrument string
		limit      int
		today      bool
	)

	cmd := &cobra.Command{
		Use:   "signals",
		Short: "List journaled signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("signal journal unavailable")
			}

			filter := store.SignalFilter{
				Instrument: strings.ToUpper(instrument),
				Limit:      limit,
			}
			if today {
				now := time.Now()
				filter.From = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			}

			signals, err := app.Store.ListSignals(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(signals)
			}
			if len(signals) == 0 {
				output.Dim("No signals journaled")
				return nil
			}

			table := NewTable(output, "TIME", "TYPE", "CONTRACT", "ENTRY", "TARGET", "SL", "R:R", "CONF")
			for _, sig := range signals {
				table.AddRow(
					sig.CreatedAt.Format("02 Jan 15:04"),
					output.SignalTypeTag(sig.SignalType),
					sig.TradingSymbol,
					fmt.Sprintf("%.2f", sig.EntryPrice),
					fmt.Sprintf("%.2f", sig.TargetPrice),
					fmt.Sprintf("%.2f", sig.StopLoss),
					fmt.Sprintf("%.1f", sig.RiskReward),
					fmt.Sprintf("%d%%", sig.Confidence),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&instrument, "instrument", "", "filter by underlying")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum signals to list")
	cmd.Flags().BoolVar(&today, "today", false, "only today's signals")
	return cmd
}
