package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rewired-gh/oiwatch/internal/models"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Binance  BinanceConfig  `mapstructure:"binance"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Status   StatusConfig   `mapstructure:"status"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// BinanceConfig holds Binance public API configuration
type BinanceConfig struct {
	SpotAPIURL    string        `mapstructure:"spot_api_url"`
	FuturesAPIURL string        `mapstructure:"futures_api_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	KlineInterval string        `mapstructure:"kline_interval"`
	KlineLimit    int           `mapstructure:"kline_limit"`
	OIPeriod      string        `mapstructure:"oi_period"`
	OILimit       int           `mapstructure:"oi_limit"`
}

// MonitorConfig holds signal detection and alerting configuration
type MonitorConfig struct {
	Symbol                  string  `mapstructure:"symbol"`
	PollIntervalSeconds     int     `mapstructure:"poll_interval_seconds"`
	EmptyDataBackoffSeconds int     `mapstructure:"empty_data_backoff_seconds"`
	OIPercentMin            float64 `mapstructure:"oi_percent_min"`
	VolRatioMin             float64 `mapstructure:"vol_ratio_min"`
	MinRepeatMinutes        int     `mapstructure:"min_repeat_minutes"`
	StopLossPoints          float64 `mapstructure:"stop_loss_points"`
	TP1Points               float64 `mapstructure:"tp1_points"`
	TP2Points               float64 `mapstructure:"tp2_points"`
	TP3Points               float64 `mapstructure:"tp3_points"`
}

// PollInterval is the main sleep between cycles.
func (m MonitorConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalSeconds) * time.Second
}

// EmptyDataBackoff is the short sleep after a cycle without data.
func (m MonitorConfig) EmptyDataBackoff() time.Duration {
	return time.Duration(m.EmptyDataBackoffSeconds) * time.Second
}

// MinRepeat is the cooldown window for a repeated signal type.
func (m MonitorConfig) MinRepeat() time.Duration {
	return time.Duration(m.MinRepeatMinutes) * time.Minute
}

// LevelPoints returns the stop-loss and take-profit offsets.
func (m MonitorConfig) LevelPoints() models.LevelPoints {
	return models.LevelPoints{
		StopLoss: m.StopLossPoints,
		TP1:      m.TP1Points,
		TP2:      m.TP2Points,
		TP3:      m.TP3Points,
	}
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	ListenCommands bool          `mapstructure:"listen_commands"`
}

// Enabled reports whether both credentials are present. Anything less means
// alerts are only logged.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// StorageConfig holds alert journal configuration
type StorageConfig struct {
	DBPath    string `mapstructure:"db_path"` // empty = in-memory
	MaxAlerts int    `mapstructure:"max_alerts"`
}

// StatusConfig holds the status HTTP server configuration
type StatusConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envAliases maps config keys to the plain environment names used by deployments.
var envAliases = map[string]string{
	"monitor.symbol":                "SYMBOL",
	"monitor.poll_interval_seconds": "SLEEP_SECONDS",
	"monitor.vol_ratio_min":         "VOL_RATIO_MIN",
	"monitor.oi_percent_min":        "OI_PC_MIN",
	"monitor.stop_loss_points":      "SL_PTS",
	"monitor.tp1_points":            "TP1_PTS",
	"monitor.tp2_points":            "TP2_PTS",
	"monitor.tp3_points":            "TP3_PTS",
	"monitor.min_repeat_minutes":    "MIN_REPEAT_MINUTES",
	"telegram.bot_token":            "BOT_TOKEN",
	"telegram.chat_id":              "CHAT_ID",
}

// Load reads configuration from an optional file and environment variables.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Environment override: OIWATCH_MONITOR_SYMBOL, ... plus the plain aliases
	v.SetEnvPrefix("OIWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, "OIWATCH_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Binance defaults
	v.SetDefault("binance.spot_api_url", "https://api.binance.com")
	v.SetDefault("binance.futures_api_url", "https://fapi.binance.com")
	v.SetDefault("binance.timeout", "10s")
	v.SetDefault("binance.kline_interval", "5m")
	v.SetDefault("binance.kline_limit", 50)
	v.SetDefault("binance.oi_period", "5m")
	v.SetDefault("binance.oi_limit", 12)

	// Monitor defaults
	v.SetDefault("monitor.symbol", "BTCUSDT")
	v.SetDefault("monitor.poll_interval_seconds", 300)
	v.SetDefault("monitor.empty_data_backoff_seconds", 10)
	v.SetDefault("monitor.oi_percent_min", 5.0)
	v.SetDefault("monitor.vol_ratio_min", 1.15)
	v.SetDefault("monitor.min_repeat_minutes", 30)
	v.SetDefault("monitor.stop_loss_points", 100.0)
	v.SetDefault("monitor.tp1_points", 170.0)
	v.SetDefault("monitor.tp2_points", 250.0)
	v.SetDefault("monitor.tp3_points", 300.0)

	// Telegram defaults
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.timeout", "10s")
	v.SetDefault("telegram.max_retries", 1) // one attempt per alert
	v.SetDefault("telegram.retry_delay_base", "1s")
	v.SetDefault("telegram.listen_commands", false)

	// Storage defaults
	v.SetDefault("storage.db_path", "")
	v.SetDefault("storage.max_alerts", 1000)

	// Status defaults
	v.SetDefault("status.enabled", false)
	v.SetDefault("status.listen_addr", ":8080")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Binance config
	if c.Binance.SpotAPIURL == "" {
		return fmt.Errorf("binance.spot_api_url is required")
	}
	if c.Binance.FuturesAPIURL == "" {
		return fmt.Errorf("binance.futures_api_url is required")
	}
	if c.Binance.Timeout <= 0 {
		return fmt.Errorf("binance.timeout must be positive")
	}
	if c.Binance.KlineInterval == "" || c.Binance.OIPeriod == "" {
		return fmt.Errorf("binance.kline_interval and binance.oi_period are required")
	}
	if c.Binance.KlineLimit < 1 || c.Binance.KlineLimit > 1000 {
		return fmt.Errorf("binance.kline_limit must be between 1 and 1000")
	}
	if c.Binance.OILimit < 1 || c.Binance.OILimit > 500 {
		return fmt.Errorf("binance.oi_limit must be between 1 and 500")
	}

	// Validate Monitor config
	if c.Monitor.Symbol == "" {
		return fmt.Errorf("monitor.symbol is required")
	}
	if c.Monitor.PollIntervalSeconds < 1 {
		return fmt.Errorf("monitor.poll_interval_seconds must be at least 1")
	}
	if c.Monitor.EmptyDataBackoffSeconds < 1 {
		return fmt.Errorf("monitor.empty_data_backoff_seconds must be at least 1")
	}
	if c.Monitor.OIPercentMin < 0 {
		return fmt.Errorf("monitor.oi_percent_min must not be negative")
	}
	if c.Monitor.VolRatioMin <= 0 {
		return fmt.Errorf("monitor.vol_ratio_min must be positive")
	}
	if c.Monitor.MinRepeatMinutes < 0 {
		return fmt.Errorf("monitor.min_repeat_minutes must not be negative")
	}
	if err := c.Monitor.LevelPoints().Validate(); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}

	// Validate Telegram config
	if c.Telegram.Timeout <= 0 {
		return fmt.Errorf("telegram.timeout must be positive")
	}

	// Validate Storage config
	if c.Storage.MaxAlerts < 1 {
		return fmt.Errorf("storage.max_alerts must be at least 1")
	}

	// Validate Status config
	if c.Status.Enabled && c.Status.ListenAddr == "" {
		return fmt.Errorf("status.listen_addr is required when status is enabled")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
