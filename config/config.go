package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full bridge configuration. Behavior lives in the YAML file,
// credentials come from the environment (.env is loaded if present) so they
// never sit next to the tunables.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Risk     RiskConfig     `yaml:"risk"`
	Watchdog WatchdogConfig `yaml:"watchdog"`
	Desk     DeskConfig     `yaml:"desk"`
	Binary   BinaryConfig   `yaml:"binary"`
	Model    ModelConfig    `yaml:"model"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	Confirm  string         `yaml:"confirm"` // auto | prompt
}

type TelegramConfig struct {
	ChannelIDs   []int64 `yaml:"channel_ids"`
	OperatorChat int64   `yaml:"operator_chat"`
	BotToken     string  `yaml:"-"`
}

type RiskConfig struct {
	MaxRiskFraction float64 `yaml:"max_risk_fraction"`
	MinLot          float64 `yaml:"min_lot"`
	// ContractSizes overrides the desk's contract size per symbol.
	ContractSizes map[string]float64 `yaml:"contract_sizes"`
}

type WatchdogConfig struct {
	IntervalSeconds   int `yaml:"interval_seconds"`
	ReportWindowHours int `yaml:"report_window_hours"`
}

type DeskConfig struct {
	GatewayURL string `yaml:"gateway_url"`
	Login      int64  `yaml:"-"`
	Password   string `yaml:"-"`
	Server     string `yaml:"-"`
}

type BinaryConfig struct {
	WSEndpoint string  `yaml:"ws_endpoint"`
	Stake      float64 `yaml:"stake"`
	SSID       string  `yaml:"-"`
}

type ModelConfig struct {
	BaseURL string `yaml:"base_url"`
	Name    string `yaml:"name"`
	APIKey  string `yaml:"-"`
}

type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file, then layers environment credentials on top.
// A missing .env is fine; set the variables any other way.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse YAML: %w", err)
	}

	applyEnv(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// WatchdogInterval returns the polling cadence as a Duration.
func (c *Config) WatchdogInterval() time.Duration {
	return time.Duration(c.Watchdog.IntervalSeconds) * time.Second
}

// ReportWindow returns the trailing history window as a Duration.
func (c *Config) ReportWindow() time.Duration {
	return time.Duration(c.Watchdog.ReportWindowHours) * time.Hour
}

func applyEnv(cfg *Config) {
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("DESK_LOGIN"); v != "" {
		if login, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Desk.Login = login
		}
	}
	cfg.Desk.Password = os.Getenv("DESK_PASSWORD")
	if v := os.Getenv("DESK_SERVER"); v != "" {
		cfg.Desk.Server = v
	}
	cfg.Binary.SSID = os.Getenv("BINARY_SSID")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Risk.MaxRiskFraction <= 0 {
		cfg.Risk.MaxRiskFraction = 0.02
	}
	if cfg.Risk.MinLot <= 0 {
		cfg.Risk.MinLot = 0.01
	}
	if cfg.Watchdog.IntervalSeconds <= 0 {
		cfg.Watchdog.IntervalSeconds = 60
	}
	if cfg.Watchdog.ReportWindowHours <= 0 {
		cfg.Watchdog.ReportWindowHours = 24
	}
	if cfg.Binary.Stake <= 0 {
		cfg.Binary.Stake = 10
	}
	if cfg.Model.Name == "" {
		cfg.Model.Name = "gpt-4o-mini"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "bridge.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Confirm == "" {
		cfg.Confirm = "auto"
	}
}

// Validate rejects configurations the bridge cannot start with.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("config: TELEGRAM_BOT_TOKEN is required")
	}
	if len(c.Telegram.ChannelIDs) == 0 {
		return fmt.Errorf("config: at least one telegram channel id is required")
	}
	if c.Telegram.OperatorChat == 0 {
		return fmt.Errorf("config: operator_chat is required")
	}
	if c.Model.APIKey == "" {
		return fmt.Errorf("config: OPENAI_API_KEY is required")
	}
	if c.Desk.GatewayURL == "" {
		return fmt.Errorf("config: desk gateway_url is required")
	}
	if c.Confirm != "auto" && c.Confirm != "prompt" {
		return fmt.Errorf("config: confirm must be auto or prompt, got %q", c.Confirm)
	}
	return nil
}
