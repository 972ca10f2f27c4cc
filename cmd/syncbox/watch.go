package main

import (
	"fmt"

	"github.com/spf13/cobra"

	clientsync "github.com/entrydrive/syncbox/internal/client/sync"
)

func init() {
	rootCmd.AddCommand(newWatchCmd())
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Stream entry sync-state transitions as sidecars change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := scanRoot(args)
			if err != nil {
				return err
			}

			watcher, err := clientsync.NewWatcher(root)
			if err != nil {
				return err
			}

			cmd.SilenceUsage = true
			ctx := cmd.Context()
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer watcher.Stop()

			out := cmd.OutOrStdout()
			for {
				select {
				case <-ctx.Done():
					return nil
				case change, ok := <-watcher.Events():
					if !ok {
						return nil
					}
					fmt.Fprintf(out, "%s  %s %s %s\n",
						change.Path,
						renderState(change.From),
						gray.Render("->"),
						renderState(change.To),
					)
				case err, ok := <-watcher.Errors():
					if !ok {
						return nil
					}
					fmt.Fprintf(out, "%-10s %v\n", red.Render("malformed"), err)
				}
			}
		},
	}
}
