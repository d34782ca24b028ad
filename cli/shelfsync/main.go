package main

import (
	"context"
	"fmt"
	"os"

	"github.com/glorpus-work/shelfsync/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	debug      bool
	noColor    bool
	logFormat  string
	logFile    string
)

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelfsync",
		Short: "Mirror your game library",
		Long: `shelfsync downloads the installers and extras of a game library into
a local directory or an S3 compatible bucket:
- resumes partial downloads and verifies finished ones
- filters by operating system, language and title
- stops cleanly on CTRL+C`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "report the last raw failure when retries run out (env: "+cli.EnvDebug+")")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")

	// Set up CLI package variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.Debug = &debug
	cli.NoColor = &noColor
	cli.LogFormat = &logFormat
	cli.LogFile = &logFile

	cmd.AddCommand(
		cli.NewDownloadCmd(),
		cli.NewCatalogCmd(),
		cli.NewConfigCmd(),
		cli.NewLanguagesCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
