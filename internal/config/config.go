// Package config handles configuration loading for equisage.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Fetch    FetchConfig    `mapstructure:"fetch"    yaml:"fetch"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// AnalysisConfig holds analysis pipeline settings.
type AnalysisConfig struct {
	// ParallelStages runs the four analysis stages concurrently instead of
	// one after another. The result is identical either way; parallel
	// trades log ordering for latency.
	ParallelStages bool `mapstructure:"parallel_stages" yaml:"parallel_stages"`
}

// FetchConfig holds data acquisition settings.
type FetchConfig struct {
	CacheTTL  int `mapstructure:"cache_ttl"  yaml:"cache_ttl"`  // seconds
	NewsLimit int `mapstructure:"news_limit" yaml:"news_limit"` // max articles per ticker
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // console or json
}

// Load reads configuration from the default locations, environment
// variables, and built-in defaults. A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".equisage"))
	v.AddConfigPath("/etc/equisage")

	v.SetEnvPrefix("EQUISAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("EQUISAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Analysis defaults
	v.SetDefault("analysis.parallel_stages", false)

	// Fetch defaults
	v.SetDefault("fetch.cache_ttl", 300) // 5 minutes
	v.SetDefault("fetch.news_limit", 20)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
