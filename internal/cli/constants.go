package cli

// Default values for CLI flags and output.
const (
	// ExitCodeInterrupted is returned when the user stopped a run.
	ExitCodeInterrupted = 130
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// setCommandArgs is the number of arguments of "config set".
	setCommandArgs = 2
	// EnvDebug enables debug mode like the --debug flag.
	EnvDebug = "SHELFSYNC_DEBUG"
)
