// Package config loads the transfer engine's tunables (spec §3) from a
// YAML file, the way Auriora-OneMount's cmd/common/config.go loads its
// client config: defaults first, then an on-disk file merged over them
// with mergo, then validated.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/imdario/mergo"
	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v3"
)

// Config mirrors b2.Config's tunables plus the credentials and log level
// a CLI needs that the library itself has no opinion on. It has no field
// for b2.Config's TestMode or UserAgent, so those cannot be set from the
// file.
type Config struct {
	KeyID          string `yaml:"keyId"`
	ApplicationKey string `yaml:"applicationKey"`
	APIBase        string `yaml:"apiBase"`
	LogLevel       string `yaml:"log"`

	RetryCount          int   `yaml:"retryCount"`
	UploadConnections   int   `yaml:"uploadConnections"`
	DownloadConnections int   `yaml:"downloadConnections"`
	UploadCutoffSize    int64 `yaml:"uploadCutoffSize"`
	UploadPartSize      int64 `yaml:"uploadPartSize"`
	DownloadCutoffSize  int64 `yaml:"downloadCutoffSize"`
	DownloadPartSize    int64 `yaml:"downloadPartSize"`
}

// DefaultConfigPath mirrors onedriver's DefaultConfigPath: a per-user
// config directory, one file.
func DefaultConfigPath() string {
	confDir, err := os.UserConfigDir()
	if err != nil {
		log.Error().Err(err).Msg("could not determine configuration directory")
	}
	return filepath.Join(confDir, "b2core/config.yml")
}

func createDefaultConfig() Config {
	return Config{
		LogLevel:            "info",
		RetryCount:          3,
		UploadConnections:   1,
		DownloadConnections: 1,
	}
}

func validateConfig(c *Config) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "trace": true}
	if !validLevels[c.LogLevel] {
		log.Warn().Str("logLevel", c.LogLevel).Msg("invalid log level, using default")
		c.LogLevel = "info"
	}
	if c.RetryCount <= 0 {
		log.Warn().Int("retryCount", c.RetryCount).Msg("retry count must be positive, using default")
		c.RetryCount = 3
	}
	if c.UploadConnections <= 0 {
		c.UploadConnections = 1
	}
	if c.DownloadConnections <= 0 {
		c.DownloadConnections = 1
	}
	if c.KeyID != "" && c.ApplicationKey == "" {
		return fmt.Errorf("config: applicationKey must be set when keyId is set")
	}
	return nil
}

// Load reads path, merges it over the documented defaults, and validates
// the result. A missing file is not an error: it returns defaults.
func Load(path string) *Config {
	defaults := createDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("configuration file not found, using defaults")
		return &defaults
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Error().Err(err).Str("path", path).Msg("could not parse configuration file, using defaults")
		return &defaults
	}

	if err := mergo.Merge(cfg, defaults); err != nil {
		log.Error().Err(err).Str("path", path).Msg("could not merge configuration with defaults, using defaults only")
		return &defaults
	}

	if err := validateConfig(cfg); err != nil {
		log.Error().Err(err).Str("path", path).Msg("invalid configuration, using defaults")
		return &defaults
	}

	return cfg
}

// Write marshals c to path as YAML, creating parent directories as needed.
func (c Config) Write(path string) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		log.Error().Err(err).Msg("could not marshal config")
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		log.Error().Err(err).Str("path", path).Msg("could not create directory for config file")
		return err
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		log.Error().Err(err).Str("path", path).Msg("could not write config to disk")
		return err
	}
	log.Debug().Str("path", path).Msg("configuration written to file")
	return nil
}
