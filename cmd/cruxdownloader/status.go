package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show exported archives and orphaned CSV files",
		Long: `Status lists the archives in each scope directory. A CSV left next to them is
an orphan from a run that failed between writing and archiving; the next
export of that scope removes it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			manager, err := newManager(cfg)
			if err != nil {
				return err
			}

			statuses, err := manager.Status()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCOPE\tKIND\tFILE\tSIZE\tMODIFIED")
			for _, s := range statuses {
				for _, f := range s.Archives {
					fmt.Fprintf(w, "%s\tarchive\t%s\t%d\t%s\n", s.Scope, f.Path, f.Size, f.ModTime.UTC().Format("2006-01-02T15:04:05Z"))
				}
				for _, f := range s.Orphans {
					fmt.Fprintf(w, "%s\torphan\t%s\t%d\t%s\n", s.Scope, f.Path, f.Size, f.ModTime.UTC().Format("2006-01-02T15:04:05Z"))
				}
			}
			return w.Flush()
		},
	}
}
