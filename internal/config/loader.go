package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration in priority order:
//  1. Defaults (setDefaults)
//  2. Config file at configPath, if non-empty and present
//  3. Environment variables with the LEDGERD_ prefix
//
// configPath may be empty; a missing optional file is not an error, but an
// explicitly named, missing file is.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if _, err := os.Stat(configPath); err != nil {
			return nil, err
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix("LEDGERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.configPath = configPath

	return &cfg, nil
}

// LoadDefaultConfig loads configuration from the environment only, with no
// config file.
func LoadDefaultConfig() (*Config, error) {
	return LoadConfig("")
}
