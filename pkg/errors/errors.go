package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")

	// Setting validation errors.
	ErrRetryNegative       = fmt.Errorf("retry cannot be negative")
	ErrRetryDelayNegative  = fmt.Errorf("retry_delay cannot be negative")
	ErrIdleTimeoutNegative = fmt.Errorf("idle_timeout cannot be negative")
	ErrChunkSizeTooSmall   = fmt.Errorf("chunk size cannot be lower than 5 MB")
	ErrInvalidBandwidth    = fmt.Errorf("invalid bandwidth value")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")
	ErrInvalidLogFormat    = fmt.Errorf("invalid log format")
	ErrInvalidStorageClass = fmt.Errorf("invalid storage class")

	// Transfer errors.
	ErrTransport           = fmt.Errorf("transport failure")
	ErrRangeNotSatisfiable = fmt.Errorf("%w: requested range not satisfiable", ErrTransport)
	ErrNoDownloadURL       = fmt.Errorf("no download URL available")

	// Storage errors.
	ErrUnreadableTarget = fmt.Errorf("target is not readable")
	ErrNoWriter         = fmt.Errorf("no writer supports the target")
	ErrInvalidPath      = fmt.Errorf("invalid path")
	ErrSessionClosed    = fmt.Errorf("upload session is closed")

	// Verification errors.
	ErrDigestMismatch   = fmt.Errorf("digest mismatch")
	ErrDigestAlreadySet = fmt.Errorf("digest has already been set")

	// Retry and termination errors.
	ErrTooManyRetries = fmt.Errorf("the operation has been retried too many times")
	ErrExitRequested  = fmt.Errorf("application exit has been requested")
	ErrForcedExit     = fmt.Errorf("application termination has been requested twice, forcing exit")

	// Catalog errors.
	ErrCatalogParse    = fmt.Errorf("failed to parse catalog")
	ErrGameNotFound    = fmt.Errorf("game not found")
	ErrEntryInvalid    = fmt.Errorf("invalid catalog entry")
	ErrMissingToken    = fmt.Errorf("no authorization token configured")
	ErrDatabaseMissing = fmt.Errorf("catalog database path cannot be empty")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidLogFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidLogFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidLogFormat, format)
}

// ErrInvalidStorageClassWithDetails is a helper to create a wrapped error with the invalid class and valid options.
func ErrInvalidStorageClassWithDetails(class string, valid []string) error {
	return fmt.Errorf("%w: %s. Valid values are: %v", ErrInvalidStorageClass, class, valid)
}
