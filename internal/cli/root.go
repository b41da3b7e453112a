package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fno-signals/internal/config"
	"fno-signals/internal/logging"
	"fno-signals/internal/marketdata"
	"fno-signals/internal/metrics"
	"fno-signals/internal/notify"
	"fno-signals/internal/signal"
	"fno-signals/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Provider marketdata.Provider
	Store    *store.SQLiteStore
	Notifier *notify.Manager
	Recorder *metrics.Recorder
	Engine   *signal.Engine
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Credentials.Kite.APIKey != "" {
		app.Provider = marketdata.NewKiteProvider(
			cfg.Credentials.Kite.APIKey,
			cfg.Credentials.Kite.AccessToken,
			cfg.Engine.Timeframe,
		)
		logger.Debug().Msg("Kite market data provider initialized")
	}

	dataStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize signal journal, quota will not survive restarts")
	} else {
		app.Store = dataStore
		logger.Debug().Msg("Signal journal initialized")
	}

	if cfg.Metrics.Enabled {
		app.Recorder = metrics.NewRecorder()
	}
	app.Notifier = buildNotifier(cfg, logger)

	if app.Provider != nil {
		opts := []signal.EngineOption{}
		if app.Store != nil {
			opts = append(opts, signal.WithJournal(app.Store))
		}
		if app.Notifier != nil {
			opts = append(opts, signal.WithNotifier(app.Notifier))
		}
		if app.Recorder != nil {
			opts = append(opts, signal.WithRecorder(app.Recorder))
		}
		app.Engine = signal.NewEngine(cfg.Engine, app.Provider, logger, opts...)
	}

	rootCmd := &cobra.Command{
		Use:   "fnosignals",
		Short: "F&O signal engine for the Indian options market",
		Long: `fnosignals synthesizes intraday options trade signals from open
interest and technical analysis of NSE F&O underlyings.

It scans a configured universe of indices and stocks, resolves a
direction from OI sentiment and price trend confluence, selects a
liquid out-of-the-money strike, and sizes the trade against a fixed
risk budget. Emitted signals are journaled and delivered to the
configured channels.

Use 'fnosignals help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/fno-signals)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newEvaluateCmd(app))
	rootCmd.AddCommand(newChainCmd(app))
	rootCmd.AddCommand(newSignalsCmd(app))
	rootCmd.AddCommand(newRunCmd(app))

	return rootCmd
}

func buildNotifier(cfg *config.Config, logger zerolog.Logger) *notify.Manager {
	if !cfg.Notifications.Enabled {
		return nil
	}

	var channels []notify.Channel
	if cfg.Notifications.Terminal.Enabled {
		channels = append(channels, notify.NewTerminalChannel())
	}
	if cfg.Notifications.Telegram.Enabled {
		channels = append(channels, notify.NewTelegramChannel(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID,
		))
	}
	if cfg.Notifications.Kafka.Enabled {
		kafka, err := notify.NewKafkaChannel(cfg.Notifications.Kafka.Brokers, cfg.Notifications.Kafka.Topic)
		if err != nil {
			logger.Warn().Err(err).Msg("Kafka delivery unavailable")
		} else {
			channels = append(channels, kafka)
		}
	}
	if len(channels) == 0 {
		return nil
	}
	return notify.NewManager(logger, channels...)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("fnosignals v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Engine Configuration")
	output.Printf("  Min Confidence:    %d%%\n", cfg.Engine.MinConfidence)
	output.Printf("  Max Daily Signals: %d\n", cfg.Engine.MaxDailySignals)
	output.Printf("  Min Risk/Reward:   %.1f\n", cfg.Engine.MinRiskReward)
	output.Printf("  Risk Per Trade:    %.0f\n", cfg.Engine.MaxRiskPerTrade)
	output.Printf("  History Days:      %d\n", cfg.Engine.HistoryDays)
	output.Printf("  Timeframe:         %s\n", cfg.Engine.Timeframe)
	output.Println()

	output.Bold("Instrument Universe")
	output.Printf("  Indices: %v\n", cfg.Instruments.Indices)
	output.Printf("  Stocks:  %v\n", cfg.Instruments.Stocks)
	output.Println()

	output.Bold("Notifications")
	output.Printf("  Enabled:  %v\n", cfg.Notifications.Enabled)
	output.Printf("  Terminal: %v\n", cfg.Notifications.Terminal.Enabled)
	output.Printf("  Telegram: %v\n", cfg.Notifications.Telegram.Enabled)
	output.Printf("  Kafka:    %v\n", cfg.Notifications.Kafka.Enabled)
	output.Println()

	output.Bold("Scheduler")
	output.Printf("  Scan:  %s\n", cfg.Scheduler.ScanCron)
	output.Printf("  Reset: %s\n", cfg.Scheduler.ResetCron)
}
