package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Title sources.
const (
	TitleSourceHTTP    = "http"
	TitleSourceBrowser = "browser"
)

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	TelegramBotToken string        `mapstructure:"TELEGRAM_BOT_TOKEN"`
	StorageBackend   string        `mapstructure:"STORAGE_BACKEND"`
	BadgerDBPath     string        `mapstructure:"BADGERDB_PATH"`
	SQLitePath       string        `mapstructure:"SQLITE_PATH"`
	FetchTimeout     time.Duration `mapstructure:"FETCH_TIMEOUT"`
	FaviconEndpoint  string        `mapstructure:"FAVICON_ENDPOINT"`
	TitleSource      string        `mapstructure:"TITLE_SOURCE"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"TELEGRAM_BOT_TOKEN": "",
	"STORAGE_BACKEND":    BackendBadger,
	"BADGERDB_PATH":      "./badger_data",
	"SQLITE_PATH":        "./jetgrind.db",
	"FETCH_TIMEOUT":      "5s",
	"FAVICON_ENDPOINT":   "https://www.google.com/s2/favicons?domain=%s&sz=32",
	"TITLE_SOURCE":       TitleSourceHTTP,
	"LOG_LEVEL":          "info",
}

// LoadConfig reads configuration from path/config.yaml and the environment.
// A missing config file is not an error.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch c.StorageBackend {
	case BackendBadger, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	c.TitleSource = strings.ToLower(strings.TrimSpace(c.TitleSource))
	switch c.TitleSource {
	case TitleSourceHTTP, TitleSourceBrowser:
	default:
		return fmt.Errorf("unknown TITLE_SOURCE %q", c.TitleSource)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if !strings.Contains(c.FaviconEndpoint, "%s") {
		return errors.New("FAVICON_ENDPOINT must contain a %s placeholder for the host")
	}
	return nil
}

// RequireBotToken reports an error when the Telegram token is missing.
// Only the bot needs it.
func (c Config) RequireBotToken() error {
	if c.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	return nil
}
