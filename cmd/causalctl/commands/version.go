package commands

import (
	"fmt"

	"github.com/Harshitk-cp/causalchain/internal/buildconfig"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildconfig.VersionInfo()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (commit %s)\n", info["service"], info["version"], info["commit"])
			return err
		},
	}
}
