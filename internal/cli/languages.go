package cli

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/shelfsync/pkg/platform"
	"github.com/spf13/cobra"
)

// NewLanguagesCmd creates the languages command.
func NewLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List accepted language and OS codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Languages: %s\n", strings.Join(platform.ValidLanguages(), ", "))
			_, _ = fmt.Fprintf(out, "OS: %s (this machine: %s)\n", strings.Join(platform.ValidOS(), ", "), platform.CurrentOS())
			return nil
		},
	}
}
