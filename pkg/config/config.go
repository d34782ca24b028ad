// Package config provides configuration management for shelfsync.
// It handles loading, validating and saving the YAML configuration file and
// applies environment overrides for secrets and the download directory.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/fsutil"
	"github.com/glorpus-work/shelfsync/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Catalog  CatalogConfig `yaml:"catalog"`
	Storage  StorageConfig `yaml:"storage"`
	Settings Settings      `yaml:"settings"`
}

// CatalogConfig describes where the catalog is served from.
type CatalogConfig struct {
	BaseURL      string `yaml:"base_url"`
	Token        string `yaml:"token,omitempty"`
	DatabasePath string `yaml:"database_path,omitempty"`
}

// StorageConfig holds the object storage connection used for s3:// targets.
type StorageConfig struct {
	Endpoint     string `yaml:"endpoint,omitempty"`
	AccessKey    string `yaml:"access_key,omitempty"`
	SecretKey    string `yaml:"secret_key,omitempty"`
	Region       string `yaml:"region,omitempty"`
	Secure       bool   `yaml:"secure"`
	StorageClass string `yaml:"storage_class,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	DownloadDir string        `yaml:"download_dir,omitempty"`
	Retry       int           `yaml:"retry"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	ChunkSizeMB int           `yaml:"chunk_size_mb"`
	Bandwidth   string        `yaml:"bandwidth,omitempty"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file,omitempty"`
}

// Default configuration values.
const (
	DefaultBaseURL     = "https://embed.gog.com"
	DefaultRetry       = 3
	DefaultRetryDelay  = time.Second
	DefaultIdleTimeout = 3 * time.Second
	DefaultChunkSizeMB = 10
	// MinChunkSizeMB is the smallest part size object storage accepts.
	MinChunkSizeMB = 5

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// Environment variables that override the file.
const (
	EnvToken       = "SHELFSYNC_TOKEN"
	EnvS3AccessKey = "SHELFSYNC_S3_ACCESS_KEY"
	EnvS3SecretKey = "SHELFSYNC_S3_SECRET_KEY"
	EnvDownloadDir = "DOWNLOAD_DIRECTORY"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	downloadDir, err := fsutil.GetDownloadDir()
	if err != nil {
		downloadDir = "."
	}
	dbPath, err := fsutil.GetDatabasePath()
	if err != nil {
		dbPath = filepath.Join(os.TempDir(), fsutil.AppName, "catalog.db")
	}

	return &Config{
		Catalog: CatalogConfig{
			BaseURL:      DefaultBaseURL,
			DatabasePath: dbPath,
		},
		Storage: StorageConfig{Secure: true},
		Settings: Settings{
			DownloadDir: downloadDir,
			Retry:       DefaultRetry,
			RetryDelay:  DefaultRetryDelay,
			IdleTimeout: DefaultIdleTimeout,
			ChunkSizeMB: DefaultChunkSizeMB,
			LogLevel:    "info",
			LogFormat:   "text",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := *DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()
	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// ApplyEnv overrides secrets and the download directory from the
// environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvToken); v != "" {
		c.Catalog.Token = v
	}
	if v := os.Getenv(EnvS3AccessKey); v != "" {
		c.Storage.AccessKey = v
	}
	if v := os.Getenv(EnvS3SecretKey); v != "" {
		c.Storage.SecretKey = v
	}
	if v := os.Getenv(EnvDownloadDir); v != "" {
		c.Settings.DownloadDir = v
	}
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	// the file may hold the token, keep it private
	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeSecure)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	if _, err := storage.ParseStorageClass(c.Storage.StorageClass); err != nil {
		return err
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.Retry < 0 {
		return errors.ErrRetryNegative
	}
	if s.RetryDelay < 0 {
		return errors.ErrRetryDelayNegative
	}
	if s.IdleTimeout < 0 {
		return errors.ErrIdleTimeoutNegative
	}
	if s.ChunkSizeMB < MinChunkSizeMB {
		return errors.ErrChunkSizeTooSmall
	}
	if _, err := ParseBandwidth(s.Bandwidth); err != nil {
		return err
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.LogFormat] {
		return errors.ErrInvalidLogFormatWithDetails(s.LogFormat)
	}
	return nil
}

// ChunkSize returns the configured chunk size in bytes.
func (s Settings) ChunkSize() int {
	return s.ChunkSizeMB * 1024 * 1024
}

// ParseBandwidth converts a bandwidth value into bytes per second. Plain
// numbers are bytes, the k/kb and m/mb suffixes are binary multiples. An
// empty value means unlimited and yields 0.
func ParseBandwidth(value string) (int64, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n < 0 {
			return 0, errors.Wrapf(errors.ErrInvalidBandwidth, "%q", value)
		}
		return n, nil
	}

	var number, unit string
	switch {
	case strings.HasSuffix(value, "kb"):
		number, unit = strings.TrimSuffix(value, "kb"), "KiB"
	case strings.HasSuffix(value, "k"):
		number, unit = strings.TrimSuffix(value, "k"), "KiB"
	case strings.HasSuffix(value, "mb"):
		number, unit = strings.TrimSuffix(value, "mb"), "MiB"
	case strings.HasSuffix(value, "m"):
		number, unit = strings.TrimSuffix(value, "m"), "MiB"
	default:
		return 0, errors.Wrapf(errors.ErrInvalidBandwidth, "unsupported format %q", value)
	}

	n, err := humanize.ParseBytes(strings.TrimSpace(number) + " " + unit)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInvalidBandwidth, "%q: %v", value, err)
	}
	return int64(n), nil
}

// ObjectStore returns the connection settings for s3:// targets.
func (c *Config) ObjectStore() storage.ObjectStoreConfig {
	return storage.ObjectStoreConfig{
		Endpoint:  c.Storage.Endpoint,
		AccessKey: c.Storage.AccessKey,
		SecretKey: c.Storage.SecretKey,
		Region:    c.Storage.Region,
		Secure:    c.Storage.Secure,
	}
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaults.Catalog.BaseURL
	}
	if c.Catalog.DatabasePath == "" {
		c.Catalog.DatabasePath = defaults.Catalog.DatabasePath
	}
	if c.Settings.DownloadDir == "" {
		c.Settings.DownloadDir = defaults.Settings.DownloadDir
	}
	if c.Settings.Retry == 0 {
		c.Settings.Retry = defaults.Settings.Retry
	}
	if c.Settings.RetryDelay == 0 {
		c.Settings.RetryDelay = defaults.Settings.RetryDelay
	}
	if c.Settings.IdleTimeout == 0 {
		c.Settings.IdleTimeout = defaults.Settings.IdleTimeout
	}
	if c.Settings.ChunkSizeMB == 0 {
		c.Settings.ChunkSizeMB = defaults.Settings.ChunkSizeMB
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}
