package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from file and environment.
type Loader struct {
	configPath string
	envPrefix  string
}

// NewLoader creates a config loader. An empty configPath searches the
// default locations.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		envPrefix:  "DRIVEMERGE",
	}
}

// Load reads configuration, with precedence env > file > defaults.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	l.setDefaults(v, defaults)

	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if l.configPath != "" {
		v.SetConfigFile(l.configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", l.configPath, err)
		}
	} else {
		v.SetConfigName("drivemerge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "drivemerge"))
		}

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every default so viper can overlay file and env
// values on top of them.
func (l *Loader) setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("drive.credentials_file", d.Drive.CredentialsFile)
	v.SetDefault("drive.token_file", d.Drive.TokenFile)
	v.SetDefault("drive.timeout", d.Drive.Timeout)
	v.SetDefault("drive.page_size", d.Drive.PageSize)

	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("storage.state_dir", d.Storage.StateDir)
	v.SetDefault("storage.text_cache_dir", d.Storage.TextCacheDir)
	v.SetDefault("storage.output_dir", d.Storage.OutputDir)
	v.SetDefault("storage.state_backend", d.Storage.StateBackend)

	v.SetDefault("merge.max_bytes", d.Merge.MaxBytes)
	v.SetDefault("merge.max_words", d.Merge.MaxWords)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
}
