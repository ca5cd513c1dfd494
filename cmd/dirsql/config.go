// Config loading for the dirsql CLI: a YAML config file found either at
// an explicit path or in the XDG config directory.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/dirsql/dirsql"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys
	cfgKeyRootDir = "root_dir"
	cfgKeyIgnores = "ignores"
)

// loadConfig reads the configuration with Viper. An explicit path wins;
// otherwise the config directory is searched. A missing config file is
// not an error: defaults apply.
func loadConfig(explicitPath string) (dirsql.Config, error) {
	defaults := dirsql.DefaultConfig()

	v := viper.New()
	v.SetDefault(cfgKeyRootDir, defaults.RootDir)
	v.SetDefault(cfgKeyIgnores, defaults.Ignores)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(configDir())
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && explicitPath == "" {
			// Missing config file is not an error; defaults apply.
			return defaults, nil
		}
		return dirsql.Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg dirsql.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return dirsql.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// configDir resolves the config directory: $XDG_CONFIG_HOME/dirsql with
// a ~/.config/dirsql fallback.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dirsql")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "dirsql")
}
