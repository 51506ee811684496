package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMonthsCmd creates the months command.
func NewMonthsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "months",
		Short: "List the months that can be exported",
		Long: `Months prints every published month from 202102 through the latest complete
month (UTC), one YYYYMM per line, oldest first.`,
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

			out := cmd.OutOrStdout()
			if latest, _ := cmd.Flags().GetBool("latest"); latest {
				fmt.Fprintln(out, manager.LatestCompleteMonth().Int())
				return nil
			}
			for _, ym := range manager.ValidMonths() {
				fmt.Fprintln(out, ym.Int())
			}
			return nil
		},
	}

	cmd.Flags().BoolP("latest", "l", false, "Print only the month an export would use")

	return cmd
}
