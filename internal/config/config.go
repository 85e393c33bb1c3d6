// Package config loads polyquery configuration with koanf.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Environment variables use the POLYQUERY_ prefix: POLYQUERY_DATABASE
// sets "database".
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/roach88/polyquery/internal/querysql"
	"github.com/roach88/polyquery/internal/store"
)

// Defaults.
const (
	DefaultDriver   = store.DriverSQLite
	DefaultDatabase = "polyquery.db"
	DefaultFormat   = "text"
	DefaultMode     = "strict"

	envPrefix = "POLYQUERY_"
)

// DefaultFiles are the config files looked for in the working directory
// when no --config flag is given.
var DefaultFiles = []string{"polyquery.yaml", "polyquery.yml"}

// Config is the resolved configuration.
type Config struct {
	Driver   string `koanf:"driver"`
	Database string `koanf:"database"` // sqlite3 path or mysql DSN
	Format   string `koanf:"format"`   // text or json
	Mode     string `koanf:"mode"`     // strict or lenient
	Verbose  bool   `koanf:"verbose"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"db": "database",
}

// Load resolves configuration. cfgFile may be empty; flags may be nil.
// Only flags that were explicitly set override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"driver":   DefaultDriver,
		"database": DefaultDatabase,
		"format":   DefaultFormat,
		"mode":     DefaultMode,
		"verbose":  false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables: POLYQUERY_DATABASE -> database
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[key]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// findConfigFile returns the explicit path, or the first default file present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range DefaultFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Driver {
	case store.DriverSQLite, store.DriverMySQL:
	default:
		return fmt.Errorf("invalid driver %q: must be %s or %s", c.Driver, store.DriverSQLite, store.DriverMySQL)
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format %q: must be text or json", c.Format)
	}
	if _, err := querysql.ParseMode(c.Mode); err != nil {
		return err
	}
	return nil
}

// QueryMode returns the parsed compiler mode.
func (c *Config) QueryMode() querysql.Mode {
	m, _ := querysql.ParseMode(c.Mode)
	return m
}

// StoreConfig returns the store settings.
func (c *Config) StoreConfig(logger *slog.Logger) store.Config {
	return store.Config{
		Driver: c.Driver,
		DSN:    c.Database,
		Logger: logger,
	}
}
