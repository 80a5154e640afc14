package config

import (
	"fmt"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/treescope/treescope"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Treescope TreescopeConfig `mapstructure:"treescope"`
}

// TreescopeConfig stores treescope specific configurations.
type TreescopeConfig struct {
	Scan     ScanConfig     `mapstructure:"scan"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// ScanConfig stores default settings for the scan command.
type ScanConfig struct {
	MaxDepth        int      `mapstructure:"maxDepth"`
	HumanReadable   bool     `mapstructure:"humanReadable"`
	WorkerCount     int      `mapstructure:"workerCount"`
	SkipHidden      bool     `mapstructure:"skipHidden"`
	ExcludePatterns []string `mapstructure:"excludePatterns"`
}

// DatabaseConfig stores database connection details.
type DatabaseConfig struct {
	DSN  string `mapstructure:"dsn"`
	Type string `mapstructure:"type"`
}

// LogConfig stores logging output configuration.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("treescope.scan.maxDepth", internal.DefaultMaxDepth)
	viper.SetDefault("treescope.scan.humanReadable", false)
	viper.SetDefault("treescope.scan.workerCount", internal.DefaultWorkerCount)
	viper.SetDefault("treescope.scan.skipHidden", false)
	viper.SetDefault("treescope.scan.excludePatterns", []string{})
	viper.SetDefault("treescope.database.dsn", internal.DefaultSnapshotDBPath)
	viper.SetDefault("treescope.database.type", "libsql")
	viper.SetDefault("treescope.log.file", "")
	viper.SetDefault("treescope.log.level", "info")

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. treescope.scan.maxDepth becomes TREESCOPE_SCAN_MAXDEPTH

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults will be used.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
