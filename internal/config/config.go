package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/budget/internal/common"
	"github.com/Veraticus/budget/internal/money"
)

// Configuration keys.
const (
	KeyDatabasePath = "database.path"
	KeyLogLevel     = "logging.level"
	KeyLogFormat    = "logging.format"
	KeyCurrency     = "display.currency"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "$HOME/.local/share/budget/budget.db"

// Config holds the resolved settings for a budget run.
type Config struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	Currency     string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyCurrency, money.DefaultSymbol)
}

// Load reads settings from v, applying defaults and expanding the database path.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: viper instance is nil", common.ErrMissingConfig)
	}
	SetDefaults(v)

	cfg := &Config{
		DatabasePath: strings.TrimSpace(v.GetString(KeyDatabasePath)),
		LogLevel:     strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFormat:    strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		Currency:     v.GetString(KeyCurrency),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath
	}
	cfg.DatabasePath = ExpandDatabasePath(cfg.DatabasePath)

	if cfg.Currency == "" {
		cfg.Currency = money.DefaultSymbol
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the logging settings.
func (c *Config) Validate() error {
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: invalid log format %q", common.ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
