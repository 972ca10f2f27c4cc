package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	clientsync "github.com/entrydrive/syncbox/internal/client/sync"
)

func init() {
	rootCmd.AddCommand(newScanCmd())
}

func newScanCmd() *cobra.Command {
	var pattern string
	var workers int
	var summaryOnly bool

	scanCmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a drive tree and summarize entry sync states",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := scanRoot(args)
			if err != nil {
				return err
			}

			scanner, err := clientsync.NewScanner(root)
			if err != nil {
				return err
			}
			scanner.Pattern = pattern
			scanner.Workers = workers

			cmd.SilenceUsage = true
			result, err := scanner.Scan(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !summaryOnly {
				for _, e := range result.Entries {
					if e.Err != nil {
						fmt.Fprintf(out, "%-10s %s (%v)\n", red.Render("malformed"), e.Path, e.Err)
						continue
					}
					fmt.Fprintf(out, "%-10s %s\n", renderState(e.State), e.Path)
				}
			}

			s := result.Summary
			fmt.Fprintf(out, "%d entries, %s: %s %d, %s %d, %s %d, %s %d\n",
				len(result.Entries),
				humanize.IBytes(s.TotalBytes),
				green.Render("synced"), s.Synced,
				yellow.Render("refresh"), s.Refresh,
				gray.Render("not_set"), s.NotSet,
				red.Render("malformed"), s.Malformed,
			)

			if s.Malformed > 0 {
				return errors.New("malformed sidecar records found")
			}
			return nil
		},
	}

	scanCmd.Flags().SortFlags = false
	scanCmd.Flags().StringVarP(&pattern, "pattern", "p", "", "doublestar glob to select entries, e.g. '**/*.txt'")
	scanCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent resolves (0 = default)")
	scanCmd.Flags().BoolVarP(&summaryOnly, "summary", "s", false, "print only the summary line")

	return scanCmd
}

// scanRoot picks the explicit dir argument over the configured data dir.
func scanRoot(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := clientConfig()
	if err != nil {
		return "", err
	}
	return cfg.DataDir, nil
}
