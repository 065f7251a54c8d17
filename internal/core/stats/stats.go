// Package stats derives streak and adherence figures from a habit's
// completion log and weekly schedule. Every function is pure: "today" is
// passed in as asOf and nothing is read from or written to storage.
package stats

import (
	"math"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
)

const (
	// RateWindowDays is the fixed denominator of the completion rate.
	RateWindowDays = 30

	// HistogramWindowDays is the trailing window of the weekday histogram.
	HistogramWindowDays = 7

	// DefaultMaxLookbackDays bounds the current-streak walk (about 10 years).
	DefaultMaxLookbackDays = 3653
)

type Options struct {
	// MaxLookbackDays caps how far back CurrentStreak walks from asOf.
	// A walk that reaches the cap without finding a break yields 0.
	MaxLookbackDays int
}

func DefaultOptions() Options {
	return Options{MaxLookbackDays: DefaultMaxLookbackDays}
}

// Calculator is safe for concurrent use; it holds only its options.
type Calculator struct {
	opts Options
}

func NewCalculator(opts Options) *Calculator {
	if opts.MaxLookbackDays <= 0 {
		opts.MaxLookbackDays = DefaultMaxLookbackDays
	}
	return &Calculator{opts: opts}
}

var defaultCalculator = NewCalculator(DefaultOptions())

// CurrentStreak counts completed scheduled days walking backward from asOf.
// Unscheduled days are skipped; the first scheduled day without a
// completion ends the walk.
func (c *Calculator) CurrentStreak(done domain.CompletedDateSet, schedule domain.ScheduleMask, asOf domain.CalendarDay) int {
	if schedule.IsEmpty() || done.Len() == 0 {
		return 0
	}

	streak := 0
	day := asOf
	for i := 0; i < c.opts.MaxLookbackDays; i++ {
		if schedule.IsActive(day.Weekday()) {
			if !done.Contains(day) {
				return streak
			}
			streak++
		}
		day = day.AddDays(-1)
	}

	return 0
}

// BestStreak is the longest run of completed scheduled days anywhere in the
// log. Every calendar day between the first and last completion is visited
// so that gaps on scheduled days break the run.
func (c *Calculator) BestStreak(done domain.CompletedDateSet, schedule domain.ScheduleMask) int {
	if schedule.IsEmpty() {
		return 0
	}

	first, last, ok := done.Bounds()
	if !ok {
		return 0
	}

	best, run := 0, 0
	for day := first; !day.After(last); day = day.AddDays(1) {
		if !schedule.IsActive(day.Weekday()) {
			continue
		}
		if done.Contains(day) {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}

	return best
}

// CompletionRate is the rounded percentage of the RateWindowDays days ending
// at asOf (inclusive) that have a completion, regardless of schedule.
func (c *Calculator) CompletionRate(done domain.CompletedDateSet, asOf domain.CalendarDay) int {
	count := countInWindow(done, asOf, RateWindowDays)
	rate := int(math.Round(100 * float64(count) / RateWindowDays))
	return min(max(rate, 0), 100)
}

// WeeklyHistogram counts completions per weekday (Sunday first) over the
// HistogramWindowDays days ending at asOf.
func (c *Calculator) WeeklyHistogram(done domain.CompletedDateSet, asOf domain.CalendarDay) [domain.DaysPerWeek]int {
	var hist [domain.DaysPerWeek]int
	day := asOf
	for i := 0; i < HistogramWindowDays; i++ {
		if done.Contains(day) {
			hist[day.Weekday()]++
		}
		day = day.AddDays(-1)
	}
	return hist
}

// Compute assembles every statistic for one snapshot of a habit.
func (c *Calculator) Compute(done domain.CompletedDateSet, schedule domain.ScheduleMask, asOf domain.CalendarDay) domain.HabitStats {
	return domain.HabitStats{
		CurrentStreak:      c.CurrentStreak(done, schedule, asOf),
		BestStreak:         c.BestStreak(done, schedule),
		CompletionRate:     c.CompletionRate(done, asOf),
		TotalDays:          done.Len(),
		LastWeekCompletion: c.WeeklyHistogram(done, asOf),
	}
}

// ComputeRaw is the boundary entry point for unnormalized input. Dates that
// cannot be parsed are skipped and returned in rejected; a schedule that is
// not seven entries long yields an *domain.InvalidScheduleError.
func (c *Calculator) ComputeRaw(rawDates []string, schedule []bool, asOf domain.CalendarDay) (stats domain.HabitStats, rejected []string, err error) {
	mask, err := domain.NewScheduleMask(schedule)
	if err != nil {
		return domain.HabitStats{}, nil, err
	}

	done, rejected := domain.NewCompletedDateSet(rawDates)
	return c.Compute(done, mask, asOf), rejected, nil
}

func countInWindow(done domain.CompletedDateSet, asOf domain.CalendarDay, days int) int {
	count := 0
	day := asOf
	for i := 0; i < days; i++ {
		if done.Contains(day) {
			count++
		}
		day = day.AddDays(-1)
	}
	return count
}

func CurrentStreak(done domain.CompletedDateSet, schedule domain.ScheduleMask, asOf domain.CalendarDay) int {
	return defaultCalculator.CurrentStreak(done, schedule, asOf)
}

func BestStreak(done domain.CompletedDateSet, schedule domain.ScheduleMask) int {
	return defaultCalculator.BestStreak(done, schedule)
}

func CompletionRate(done domain.CompletedDateSet, asOf domain.CalendarDay) int {
	return defaultCalculator.CompletionRate(done, asOf)
}

func WeeklyHistogram(done domain.CompletedDateSet, asOf domain.CalendarDay) [domain.DaysPerWeek]int {
	return defaultCalculator.WeeklyHistogram(done, asOf)
}

func Compute(done domain.CompletedDateSet, schedule domain.ScheduleMask, asOf domain.CalendarDay) domain.HabitStats {
	return defaultCalculator.Compute(done, schedule, asOf)
}

func ComputeRaw(rawDates []string, schedule []bool, asOf domain.CalendarDay) (domain.HabitStats, []string, error) {
	return defaultCalculator.ComputeRaw(rawDates, schedule, asOf)
}
