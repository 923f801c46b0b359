package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Drive API access
	Drive DriveConfig `mapstructure:"drive"`

	// Local storage paths
	Storage StorageConfig `mapstructure:"storage"`

	// Merge limits
	Merge MergeConfig `mapstructure:"merge"`

	// Logging
	Log LogConfig `mapstructure:"log"`
}

// DriveConfig for Google Drive access.
type DriveConfig struct {
	CredentialsFile string        `mapstructure:"credentials_file"` // OAuth client secrets
	TokenFile       string        `mapstructure:"token_file"`       // cached user token
	Timeout         time.Duration `mapstructure:"timeout"`
	PageSize        int64         `mapstructure:"page_size"`
}

// StorageConfig for local file paths.
type StorageConfig struct {
	DataDir      string `mapstructure:"data_dir"`      // base directory for all state
	StateDir     string `mapstructure:"state_dir"`     // ledger storage
	TextCacheDir string `mapstructure:"text_cache_dir"` // extracted text cache
	OutputDir    string `mapstructure:"output_dir"`    // merged chunk files
	StateBackend string `mapstructure:"state_backend"` // json or sqlite
}

// MergeConfig bounds one merged output file. The defaults match the
// limits of the downstream ingestion tool the merged files feed.
type MergeConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
	MaxWords int   `mapstructure:"max_words"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
	File   string `mapstructure:"file"`   // log file path (empty = stderr)
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	dataDir := ".drivemerge"

	return &Config{
		Drive: DriveConfig{
			CredentialsFile: "credentials.json",
			TokenFile:       filepath.Join(dataDir, "token.json"),
			Timeout:         30 * time.Second,
			PageSize:        1000,
		},
		Storage: StorageConfig{
			DataDir:      dataDir,
			StateDir:     filepath.Join(dataDir, "state"),
			TextCacheDir: filepath.Join(dataDir, "text"),
			OutputDir:    "synced_content",
			StateBackend: "json",
		},
		Merge: MergeConfig{
			MaxBytes: 200 * 1024 * 1024, // 200 MiB
			MaxWords: 450_000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Drive.Timeout <= 0 {
		return errors.New("drive.timeout must be positive")
	}

	if c.Drive.PageSize <= 0 || c.Drive.PageSize > 1000 {
		return errors.New("drive.page_size must be between 1 and 1000")
	}

	if c.Merge.MaxBytes <= 0 {
		return errors.New("merge.max_bytes must be positive")
	}

	if c.Merge.MaxWords <= 0 {
		return errors.New("merge.max_words must be positive")
	}

	switch c.Storage.StateBackend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid state backend: %s", c.Storage.StateBackend)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDir,
		c.Storage.StateDir,
		c.Storage.TextCacheDir,
		c.Storage.OutputDir,
	}

	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
