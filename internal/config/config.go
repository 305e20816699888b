// Package config loads ecostep settings from a YAML file, ECOSTEP_* environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration.
type Config struct {
	Store       StoreConfig       `mapstructure:"store"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Log         LogConfig         `mapstructure:"log"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	// Path is the data directory for the file driver and the database file
	// for sqlite.
	Path string `mapstructure:"path"`
	DSN  string `mapstructure:"dsn"`
}

// AuthConfig selects the password digest.
type AuthConfig struct {
	Hasher string `mapstructure:"hasher"` // legacy | argon2
}

// PreferencesConfig holds defaults for new accounts.
type PreferencesConfig struct {
	DarkMode bool   `mapstructure:"dark_mode"`
	Language string `mapstructure:"language"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Dir returns the per-user ecostep directory, honoring XDG_CONFIG_HOME.
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "ecostep")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ecostep")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.path", "")
	v.SetDefault("store.dsn", "")
	v.SetDefault("auth.hasher", "legacy")
	v.SetDefault("preferences.dark_mode", false)
	v.SetDefault("preferences.language", "en")
	v.SetDefault("log.level", "warn")
}

// Load reads configuration. An empty path searches for config.yml in the
// working directory and Dir(); a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("ECOSTEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitize(&c)
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func sanitize(c *Config) {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Auth.Hasher = strings.ToLower(strings.TrimSpace(c.Auth.Hasher))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Store.Path == "" {
		switch c.Store.Driver {
		case DriverFile:
			c.Store.Path = Dir()
		case DriverSQLite:
			c.Store.Path = filepath.Join(Dir(), "ecostep.db")
		}
	}
}

func validate(c *Config) error {
	switch c.Store.Driver {
	case DriverMemory, DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Auth.Hasher {
	case "legacy", "argon2", "argon2id":
	default:
		return fmt.Errorf("unknown auth.hasher %q", c.Auth.Hasher)
	}
	return nil
}
