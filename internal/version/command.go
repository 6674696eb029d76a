package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds a `version` subcommand to root. With --short
// only the semantic version is printed, which suits shell comparisons.
func AttachCobraVersionCommand(root *cobra.Command) {
	var short bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print the updater version together with the commit hash and build timestamp injected at build time.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			output := Full()
			if short {
				output = Short()
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
		},
	}

	versionCmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")
	root.AddCommand(versionCmd)
}
