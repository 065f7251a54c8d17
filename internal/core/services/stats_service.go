package services

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/stats"
)

type StatsService struct {
	habitRepo domain.HabitRepository
	calc      *stats.Calculator
	loc       *time.Location
	now       func() time.Time
}

// NewStatsService wires the calculator to storage. loc decides which civil
// date "today" is; now defaults to time.Now.
func NewStatsService(habitRepo domain.HabitRepository, calc *stats.Calculator, loc *time.Location, now func() time.Time) *StatsService {
	if calc == nil {
		calc = stats.NewCalculator(stats.DefaultOptions())
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}

	return &StatsService{
		habitRepo: habitRepo,
		calc:      calc,
		loc:       loc,
		now:       now,
	}
}

func (s *StatsService) Today() domain.CalendarDay {
	return domain.CalendarDayOf(s.now().In(s.loc))
}

func (s *StatsService) GetHabitStats(ctx context.Context, input domain.StatsInput) (*domain.HabitStats, error) {
	habit, err := s.habitRepo.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, err
	}

	if habit.UserID != input.UserID {
		return nil, domain.ErrHabitNotFound
	}

	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = s.Today()
	}

	done, rejected := habit.CompletedSet()
	if len(rejected) > 0 {
		log.Printf("[STATS] Skipped %d unparseable completion dates for habit %s", len(rejected), habit.ID)
	}

	result := s.calc.Compute(done, habit.Schedule, asOf)
	return &result, nil
}

// Compute runs the calculator over a caller-supplied snapshot.
func (s *StatsService) Compute(input domain.ComputeInput) (*domain.HabitStats, error) {
	asOf := input.AsOf
	if asOf.IsZero() {
		asOf = s.Today()
	}

	result, rejected, err := s.calc.ComputeRaw(input.CompletedDates, input.Schedule, asOf)
	if err != nil {
		return nil, err
	}
	if len(rejected) > 0 {
		log.Printf("[STATS] Skipped %d unparseable completion dates in compute request", len(rejected))
	}

	return &result, nil
}

// Streaks is used by the snapshot worker, always as of today.
func (s *StatsService) Streaks(habit *domain.Habit) (current, best int) {
	done, _ := habit.CompletedSet()
	today := s.Today()
	return s.calc.CurrentStreak(done, habit.Schedule, today), s.calc.BestStreak(done, habit.Schedule)
}
