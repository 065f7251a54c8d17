package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/stats"
)

type outputOptions struct {
	asJSON   bool
	asOf     string
	lookback int
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "habitstats",
		Short: "Streak and adherence statistics for habits",
		Long: `habitstats computes the current streak, best streak, 30-day completion
rate and last-week histogram of a habit, either from dates given on the
command line or from a habit stored in a local SQLite database.`,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newComputeCmd())
	root.AddCommand(newShowCmd())
	return root
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.asJSON, "json", false, "print the statistics as JSON")
	cmd.Flags().StringVar(&o.asOf, "as-of", "", "evaluate as of this date (YYYY-MM-DD, default today in local time)")
	cmd.Flags().IntVar(&o.lookback, "max-lookback", stats.DefaultMaxLookbackDays, "days the current streak may reach back")
}

func (o *outputOptions) day() (domain.CalendarDay, error) {
	if o.asOf == "" {
		return domain.CalendarDayOf(time.Now()), nil
	}
	return domain.ParseCalendarDay(o.asOf)
}

func (o *outputOptions) calculator() *stats.Calculator {
	return stats.NewCalculator(stats.Options{MaxLookbackDays: o.lookback})
}

func (o *outputOptions) write(w io.Writer, title string, result domain.HabitStats, asOf domain.CalendarDay, schedule domain.ScheduleMask) error {
	if o.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err := fmt.Fprint(w, renderStats(title, result, asOf, schedule))
	return err
}

func warnRejected(w io.Writer, rejected []string) {
	for _, r := range rejected {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("skipping unparseable date %q", r)))
	}
}
