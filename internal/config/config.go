// Package config provides configuration management for the signal engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Engine        EngineConfig       `mapstructure:"engine"`
	Instruments   InstrumentConfig   `mapstructure:"instruments"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Store         StoreConfig        `mapstructure:"store"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Scheduler     SchedulerConfig    `mapstructure:"scheduler"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Credentials   Credentials        `mapstructure:"-"` // Loaded separately
}

// EngineConfig holds the signal engine parameters.
type EngineConfig struct {
	MinConfidence   int     `mapstructure:"min_confidence"`
	MaxDailySignals int64   `mapstructure:"max_daily_signals"`
	MinRiskReward   float64 `mapstructure:"min_risk_reward"`
	MaxRiskPerTrade float64 `mapstructure:"max_risk_per_trade"`
	HistoryDays     int     `mapstructure:"history_days"`
	Timeframe       string  `mapstructure:"timeframe"`
}

// InstrumentConfig holds the instrument scan universe.
type InstrumentConfig struct {
	Indices []string `mapstructure:"indices"`
	Stocks  []string `mapstructure:"stocks"`
}

// All returns indices followed by stocks, the scan order.
func (i InstrumentConfig) All() []string {
	out := make([]string, 0, len(i.Indices)+len(i.Stocks))
	out = append(out, i.Indices...)
	out = append(out, i.Stocks...)
	return out
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// StoreConfig holds signal journal configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// NotificationConfig holds delivery channel configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// TerminalConfig holds terminal notification configuration.
type TerminalConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TelegramConfig holds Telegram delivery configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// KafkaConfig holds Kafka delivery configuration.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// SchedulerConfig holds cron schedule configuration.
type SchedulerConfig struct {
	ScanCron  string `mapstructure:"scan_cron"`
	ResetCron string `mapstructure:"reset_cron"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Credentials holds API credentials.
type Credentials struct {
	Kite KiteCredentials `mapstructure:"kite"`
}

// KiteCredentials holds Kite Connect API credentials.
type KiteCredentials struct {
	APIKey      string `mapstructure:"api_key"`
	AccessToken string `mapstructure:"access_token"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/fno-signals"
	}
	return filepath.Join(home, ".config", "fno-signals")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		// Defaults alone are a working configuration.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.yaml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("engine.min_confidence", 75)
	v.SetDefault("engine.max_daily_signals", 8)
	v.SetDefault("engine.min_risk_reward", 2.0)
	v.SetDefault("engine.max_risk_per_trade", 500.0)
	v.SetDefault("engine.history_days", 10)
	v.SetDefault("engine.timeframe", "5minute")

	v.SetDefault("instruments.indices", []string{"NIFTY", "BANKNIFTY"})
	v.SetDefault("instruments.stocks", []string{"RELIANCE", "HDFCBANK", "ICICIBANK", "INFY", "TCS"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)

	v.SetDefault("store.path", filepath.Join(configDir, "signals.db"))

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.terminal.enabled", true)

	// Every 5 minutes during market hours, and the daily reset at midnight IST.
	v.SetDefault("scheduler.scan_cron", "0 */5 9-15 * * 1-5")
	v.SetDefault("scheduler.reset_cron", "0 0 0 * * *")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9108")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KITE_API_KEY"); v != "" {
		cfg.Credentials.Kite.APIKey = v
	}
	if v := os.Getenv("KITE_ACCESS_TOKEN"); v != "" {
		cfg.Credentials.Kite.AccessToken = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notifications.Telegram.ChatID = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 100 {
		return fmt.Errorf("min_confidence must be between 0 and 100")
	}
	if c.Engine.MaxDailySignals <= 0 {
		return fmt.Errorf("max_daily_signals must be positive")
	}
	if c.Engine.MinRiskReward < 0 {
		return fmt.Errorf("min_risk_reward must be non-negative")
	}
	if c.Engine.MaxRiskPerTrade <= 0 {
		return fmt.Errorf("max_risk_per_trade must be positive")
	}
	if c.Notifications.Kafka.Enabled && len(c.Notifications.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka delivery enabled but no brokers configured")
	}
	if c.Notifications.Telegram.Enabled && (c.Notifications.Telegram.BotToken == "" || c.Notifications.Telegram.ChatID == "") {
		return fmt.Errorf("telegram delivery enabled but bot_token or chat_id missing")
	}
	return nil
}
