// Package config reads the local .chanwork.yaml file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig represents the .chanwork.yaml fields read directly from the
// file rather than through the viper singleton. This is needed when checking
// config before viper is initialized, or from a different directory than the
// one viper was initialized with.
type LocalConfig struct {
	// Actor is the user ID recorded on mutations when --as is not given.
	Actor string `yaml:"actor"`
	// DB is the MySQL DSN. Empty selects the in-memory store.
	DB string `yaml:"db"`
	// Channel is the default channel for create/list commands.
	Channel string `yaml:"channel"`
	// NoColor disables styled output.
	NoColor bool `yaml:"no-color"`
}

// LoadLocalConfig reads and parses .chanwork.yaml from the given directory.
// Returns an empty LocalConfig (not nil) if the file doesn't exist or can't
// be parsed.
func LoadLocalConfig(dir string) *LocalConfig {
	configPath := filepath.Join(dir, ".chanwork.yaml")
	data, err := os.ReadFile(configPath) // #nosec G304 - config file path from dir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}

	return &cfg
}

// LoadLocalConfigWithEnv reads .chanwork.yaml and applies environment
// variable overrides. Environment variables take precedence over file values.
//
// Supported environment variables:
// - CW_ACTOR: overrides actor
// - CW_DB: overrides db
func LoadLocalConfigWithEnv(dir string) *LocalConfig {
	cfg := LoadLocalConfig(dir)

	if actor := os.Getenv("CW_ACTOR"); actor != "" {
		cfg.Actor = actor
	}
	if dsn := os.Getenv("CW_DB"); dsn != "" {
		cfg.DB = dsn
	}

	return cfg
}
