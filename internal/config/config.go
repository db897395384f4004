// Package config loads runtime-compilation settings from config files
// and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the tunables for the runtime compilation pipeline.
type Config struct {
	Cache   CacheConfig   `mapstructure:"cache"`
	Compile CompileConfig `mapstructure:"compile"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type CacheConfig struct {
	// Dir is the durable kernel cache directory. Empty keeps the cache
	// in memory only.
	Dir string `mapstructure:"dir"`
}

type CompileConfig struct {
	// Only skips module loading after compilation, for cache warming on
	// machines without the target device.
	Only bool `mapstructure:"only"`
	// Arch overrides the device architecture reported by the backend.
	Arch string `mapstructure:"arch"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Cache:   CacheConfig{Dir: ""},
		Compile: CompileConfig{Only: false, Arch: ""},
		Logging: LoggingConfig{Level: "info", File: "", Console: false},
	}
}

// Load reads configuration from cfgFile (or the default search path when
// empty), overlays ROCFFT_* environment variables, and fills the rest
// from defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".rocfft"))
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ROCFFT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file is fine, run on defaults.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Cache.Dir = expandPath(cfg.Cache.Dir)
	cfg.Logging.File = expandPath(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validLevels := []string{"trace", "debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("compile.only", cfg.Compile.Only)
	v.SetDefault("compile.arch", cfg.Compile.Arch)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
}
