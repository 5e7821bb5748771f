// Package config loads momentum settings from an optional YAML file with
// MOMENTUM_* environment overrides.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/julianstephens/momentum/internal/constants"
)

// Config is the top-level momentum configuration.
type Config struct {
	// Database is a SQLite path, a PostgreSQL connection string, or "keyring".
	Database         string `mapstructure:"database"`
	Debug            bool   `mapstructure:"debug"`
	AutoBackup       bool   `mapstructure:"auto_backup"`
	MaxBackups       int    `mapstructure:"max_backups"`
	CrossProcessLock bool   `mapstructure:"cross_process_lock"`
}

const envPrefix = "MOMENTUM"

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// Dir returns the expanded configuration directory.
func Dir() string {
	return ExpandPath(constants.DefaultConfigDir)
}

// Load reads configuration from cfgFile, or from config.yaml in the default
// directory when cfgFile is empty. A missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database", constants.DefaultDBPath)
	v.SetDefault("debug", false)
	v.SetDefault("auto_backup", true)
	v.SetDefault("max_backups", constants.MaxBackups)
	v.SetDefault("cross_process_lock", true)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = constants.MaxBackups
	}
	if !strings.Contains(cfg.Database, "://") && !strings.Contains(cfg.Database, "=") {
		cfg.Database = ExpandPath(cfg.Database)
	}
	return &cfg, nil
}
