package cli

import (
	"github.com/glorpus-work/shelfsync/internal/logger"
	"github.com/glorpus-work/shelfsync/pkg/config"
)

// initLogging configures the global logger from the settings. The log file
// sink is set up before the handler so both see the same writer.
func initLogging(s config.Settings) {
	logger.SetLogFile(s.LogFile)
	logger.InitLogger(s.LogLevel, logger.OutputFormat(s.LogFormat))
}
