package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fno-signals/internal/scheduler"
)

func newRunCmd(app *App) *cobra.Command {
	var scanOnStart bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scan scheduler as a daemon",
		Long: `Starts the cron scheduler: the universe is scanned on the configured
schedule during market hours, and the daily signal quota resets at
midnight. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEngine(app); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if err := app.Engine.RestoreQuota(ctx); err != nil {
				app.Logger.Warn().Err(err).Msg("Quota restore failed, starting from zero")
			}

			if app.Recorder != nil {
				go func() {
					addr := app.Config.Metrics.Addr
					app.Logger.Info().Str("addr", addr).Msg("Metrics endpoint listening")
					if err := app.Recorder.Serve(addr); err != nil {
						app.Logger.Error().Err(err).Msg("Metrics endpoint failed")
					}
				}()
			}

			sched := scheduler.NewScheduler(ctx, app.Engine, app.Config.Instruments.All(), app.Logger)
			if err := sched.Register(app.Config.Scheduler); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if scanOnStart {
				sched.RunScanNow()
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop
			app.Logger.Info().Msg("Shutting down")
			return nil
		},
	}

	cmd.Flags().BoolVar(&scanOnStart, "scan-on-start", false, "run one scan immediately on startup")
	return cmd
}
