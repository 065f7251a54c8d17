package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
)

// StreakQueue receives habit IDs whose streak snapshot needs recomputing.
type StreakQueue interface {
	Enqueue(habitID string)
}

type HabitService struct {
	repo   domain.HabitRepository
	worker StreakQueue
}

func NewHabitService(repo domain.HabitRepository, worker StreakQueue) *HabitService {
	return &HabitService{
		repo:   repo,
		worker: worker,
	}
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Name        *string
	Description *string
	Schedule    []bool
	Pinned      *bool
	Notes       map[string]string
	Version     int
}

type CompletionInput struct {
	HabitID string
	UserID  string
	Date    string
	// Completed nil toggles the day.
	Completed *bool
	Version   int
}

func mergeString(newVal *string, oldVal string) string {
	if newVal == nil {
		return oldVal
	}
	return *newVal
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	schedule := habit.Schedule
	if input.Schedule != nil {
		schedule, err = domain.NewScheduleMask(input.Schedule)
		if err != nil {
			return nil, err
		}
	}

	pinned := habit.Pinned
	if input.Pinned != nil {
		pinned = *input.Pinned
	}

	err = habit.Update(
		mergeString(input.Name, habit.Name),
		mergeString(input.Description, habit.Description),
		schedule,
		pinned,
	)
	if err != nil {
		return nil, err
	}

	for rawDay, text := range input.Notes {
		day, err := domain.ParseCalendarDay(rawDay)
		if err != nil {
			return nil, err
		}
		if err := habit.SetNote(day, text); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	if input.Schedule != nil {
		s.worker.Enqueue(habit.ID)
	}

	return habit, nil
}

// SetCompletion normalizes the date once, here, and stores it in canonical form.
func (s *HabitService) SetCompletion(ctx context.Context, input CompletionInput) (*domain.Habit, error) {
	day, err := domain.ParseCalendarDay(input.Date)
	if err != nil {
		return nil, err
	}

	habit, err := s.GetByID(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	if rejected := habit.NormalizeCompletedDates(); len(rejected) > 0 {
		log.Printf("[HABIT] Dropped %d unparseable completion dates from habit %s", len(rejected), habit.ID)
	}

	if input.Completed == nil {
		habit.ToggleCompletion(day)
	} else if !habit.SetCompletion(day, *input.Completed) {
		return habit, nil
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.worker.Enqueue(habit.ID)

	return habit, nil
}
