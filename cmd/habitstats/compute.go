package main

import (
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
)

func newComputeCmd() *cobra.Command {
	var out outputOptions
	var scheduleFlag string

	cmd := &cobra.Command{
		Use:   "compute [flags] DATE...",
		Short: "Compute statistics for completion dates given as arguments",
		Long: `Compute statistics for the completion dates given as arguments.

The schedule is seven characters, Sunday first: 1 (or x) marks an active
day, 0 (or -) an inactive one. "0111110" is weekdays only.`,
		Example: `  habitstats compute --schedule 0111110 --as-of 2024-05-15 2024-05-13 2024-05-14 2024-05-15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			schedule, err := domain.ParseScheduleMask(scheduleFlag)
			if err != nil {
				return err
			}

			asOf, err := out.day()
			if err != nil {
				return err
			}

			result, rejected, err := out.calculator().ComputeRaw(args, schedule.Slice(), asOf)
			if err != nil {
				return err
			}
			warnRejected(cmd.ErrOrStderr(), rejected)

			return out.write(cmd.OutOrStdout(), "Habit", result, asOf, schedule)
		},
	}

	cmd.Flags().StringVarP(&scheduleFlag, "schedule", "s", "1111111", "active weekdays, Sunday first")
	out.register(cmd)
	return cmd
}
