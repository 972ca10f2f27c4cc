package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrydrive/syncbox/pkg/entrystate"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status <path>...",
		Aliases: []string{"st"},
		Short:   "Resolve the sync state of one or more entries",
		Long: `Resolve the sync state of one or more entries.

Each path is classified from its sidecar record:
  not_set  no sync metadata recorded (or the sidecar is unreadable)
  synced   local copy matches the synchronized source
  refresh  local copy is stale and due for a refetch

A sidecar that exists but does not decode is reported as a malformed record
and makes the command exit non-zero.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed bool
			for _, path := range args {
				state, err := entrystate.Resolve(path)
				if err != nil {
					failed = true
					fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s (%v)\n", red.Render("malformed"), path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", renderState(state), path)
			}

			if failed {
				cmd.SilenceUsage = true
				return errors.New("one or more entries had malformed sidecar records")
			}
			return nil
		},
	}
}
