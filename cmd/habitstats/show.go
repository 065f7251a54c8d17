package main

import (
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/repository"
)

func newShowCmd() *cobra.Command {
	var out outputOptions
	var dbPath string

	cmd := &cobra.Command{
		Use:     "show --db FILE HABIT_ID",
		Short:   "Show statistics for a habit stored in a SQLite database",
		Example: `  habitstats show --db habits.db 3f2c9a7e-0d1b-4a51-9f0e-6b7f2f0d9c11`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf, err := out.day()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := repository.OpenSQLite(ctx, dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			habit, err := repository.NewSQLiteHabitRepository(db).GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			done, rejected := habit.CompletedSet()
			warnRejected(cmd.ErrOrStderr(), rejected)

			result := out.calculator().Compute(done, habit.Schedule, asOf)
			return out.write(cmd.OutOrStdout(), habit.Name, result, asOf, habit.Schedule)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "habits.db", "path to the SQLite database")
	out.register(cmd)
	return cmd
}
