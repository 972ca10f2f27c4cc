package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	clientsync "github.com/entrydrive/syncbox/internal/client/sync"
	"github.com/entrydrive/syncbox/pkg/entrystate"
)

func init() {
	rootCmd.AddCommand(newMarkCmd())
}

func newMarkCmd() *cobra.Command {
	var refresh bool
	var synced bool
	var clear bool

	markCmd := &cobra.Command{
		Use:   "mark <path>...",
		Short: "Write sidecar records the way the sync agent does",
		Long: `Write sidecar records the way the sync agent does.

Intended for agent tooling and testing: --refresh marks entries as stale,
--synced marks them as matching the remote, --clear removes the sidecar and
returns the entry to not_set. Relative paths are anchored at the drive root.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if btoi(refresh)+btoi(synced)+btoi(clear) != 1 {
				return errors.New("exactly one of --refresh, --synced or --clear is required")
			}

			cfg, err := clientConfig()
			if err != nil {
				return err
			}

			root := cfg.DataDir
			if len(args) > 0 && filepath.IsAbs(args[0]) {
				root = filepath.Dir(args[0])
			}
			store, err := clientsync.NewStore(root)
			if err != nil {
				return err
			}

			cmd.SilenceUsage = true
			for _, path := range args {
				var err error
				switch {
				case clear:
					err = store.Remove(path)
				case refresh:
					err = store.SetNeedSync(path, true)
				case synced:
					err = store.SetNeedSync(path, false)
				}
				if err != nil {
					return fmt.Errorf("mark %s: %w", path, err)
				}

				state := entrystate.StateNotSet
				if !clear {
					if refresh {
						state = entrystate.StateRefresh
					} else {
						state = entrystate.StateSynced
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", renderState(state), path)
			}
			return nil
		},
	}

	markCmd.Flags().SortFlags = false
	markCmd.Flags().BoolVar(&refresh, "refresh", false, "mark entries as stale (need_sync = true)")
	markCmd.Flags().BoolVar(&synced, "synced", false, "mark entries as synced (need_sync = false)")
	markCmd.Flags().BoolVar(&clear, "clear", false, "remove the sidecar record")
	markCmd.MarkFlagsMutuallyExclusive("refresh", "synced", "clear")

	return markCmd
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
