package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockPulse/internal/logging"
	"StockPulse/internal/model"
)

// MaxTailRows bounds the latest-bars table so a report fits one Telegram message.
const MaxTailRows = 50

// Config holds all application configuration.
type Config struct {
	Dashboard struct {
		Symbol    string  `yaml:"symbol"`
		Interval  string  `yaml:"interval"`
		Period    string  `yaml:"period"`
		Threshold float64 `yaml:"threshold"`
		TailRows  int     `yaml:"tail_rows"`
		// ComparePreviousRefresh compares against the last close of the previous
		// refresh instead of the previous bar of the same fetch.
		ComparePreviousRefresh bool `yaml:"compare_previous_refresh"`
	} `yaml:"dashboard"`
	Refresh struct {
		Enabled  bool          `yaml:"enabled"`
		Interval time.Duration `yaml:"interval"`
	} `yaml:"refresh"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Export struct {
		Dir string `yaml:"dir"`
	} `yaml:"export"`
	Log   logging.Config `yaml:"log"`
	Proxy string         `yaml:"proxy"`
}

// Load reads an optional .env file and the YAML config, then applies environment
// variable overrides and defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// defaultConfig is filled in before decoding so that explicit zeros in the file or
// environment are kept and reach Validate.
func defaultConfig() *Config {
	cfg := &Config{Log: logging.DefaultConfig()}
	cfg.Dashboard.Threshold = 5
	cfg.Dashboard.TailRows = 5
	cfg.Refresh.Interval = 60 * time.Second
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STOCK_SYMBOL"); v != "" {
		cfg.Dashboard.Symbol = v
	}
	if v := os.Getenv("STOCK_INTERVAL"); v != "" {
		cfg.Dashboard.Interval = v
	}
	if v := os.Getenv("STOCK_PERIOD"); v != "" {
		cfg.Dashboard.Period = v
	}
	if v := os.Getenv("ALERT_THRESHOLD"); v != "" {
		if th, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Dashboard.Threshold = th
		}
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Refresh.Interval = d
			cfg.Refresh.Enabled = true
		}
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Dashboard.Symbol == "" {
		cfg.Dashboard.Symbol = "AAPL"
	}
	cfg.Dashboard.Symbol = model.NormalizeSymbol(cfg.Dashboard.Symbol)
	if cfg.Dashboard.Interval == "" {
		cfg.Dashboard.Interval = string(model.Interval1m)
	}
	if cfg.Dashboard.Period == "" {
		cfg.Dashboard.Period = string(model.Period1d)
	}
}

// Params returns the validated initial dashboard query.
func (c *Config) Params() (model.Params, error) {
	interval, err := model.ParseInterval(c.Dashboard.Interval)
	if err != nil {
		return model.Params{}, err
	}
	period, err := model.ParsePeriod(c.Dashboard.Period)
	if err != nil {
		return model.Params{}, err
	}
	p := model.Params{
		Symbol:    c.Dashboard.Symbol,
		Interval:  interval,
		Period:    period,
		Threshold: c.Dashboard.Threshold,
	}
	return p, p.Validate()
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	if c.Dashboard.TailRows < 0 || c.Dashboard.TailRows > MaxTailRows {
		return fmt.Errorf("dashboard.tail_rows must be between 0 and %d, got %d", MaxTailRows, c.Dashboard.TailRows)
	}
	if c.Refresh.Enabled && c.Refresh.Interval < time.Second {
		return fmt.Errorf("refresh.interval must be at least 1s, got %s", c.Refresh.Interval)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
