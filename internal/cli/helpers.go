package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/glorpus-work/shelfsync/internal/logger"
	"github.com/glorpus-work/shelfsync/pkg/config"
	pkgerrors "github.com/glorpus-work/shelfsync/pkg/errors"
	"github.com/glorpus-work/shelfsync/pkg/storage"
	"github.com/pterm/pterm"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	Debug      *bool
	NoColor    *bool
	LogFormat  *string
	LogFile    *string
)

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if (Verbose != nil && *Verbose) || debugMode() {
		cfg.Settings.LogLevel = "debug"
	}
	if LogFormat != nil && *LogFormat != "" {
		cfg.Settings.LogFormat = *LogFormat
	}
	if LogFile != nil && *LogFile != "" {
		cfg.Settings.LogFile = *LogFile
	}
	if NoColor != nil && *NoColor {
		pterm.DisableColor()
	}

	initLogging(cfg.Settings)
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// debugMode reports whether exhausted retries surface the last raw failure
// instead of the collected attempts.
func debugMode() bool {
	if Debug != nil && *Debug {
		return true
	}
	enabled, _ := strconv.ParseBool(os.Getenv(EnvDebug))
	return enabled
}

// newLocator returns the storage writers for the configured backends. The
// object writer is only added when an endpoint is configured.
func newLocator(cfg *config.Config) (*storage.Locator, error) {
	var writers []storage.Writer

	if cfg.Storage.Endpoint != "" {
		api, err := storage.NewMinioAPI(cfg.ObjectStore())
		if err != nil {
			return nil, err
		}
		class, err := storage.ParseStorageClass(cfg.Storage.StorageClass)
		if err != nil {
			return nil, err
		}
		writers = append(writers, storage.NewObjectWriter(api, class))
	}

	writers = append(writers, storage.NewLocalWriter())
	return storage.NewLocator(writers...), nil
}

// checkTarget fails when no writer handles the download directory.
func checkTarget(locator *storage.Locator, dir string) error {
	if _, err := locator.Writer(dir); err != nil {
		if storage.IsObjectPath(dir) {
			return fmt.Errorf("%w (set storage.endpoint to download into a bucket)", err)
		}
		return err
	}
	return nil
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pkgerrors.ErrExitRequested), errors.Is(err, pkgerrors.ErrForcedExit):
		return ExitCodeInterrupted
	default:
		return 1
	}
}
