package workers

import (
	"context"
	"log"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, best int) error
}

// StreakCalculator returns the current and best streak of a habit as of today.
type StreakCalculator interface {
	Streaks(habit *domain.Habit) (current, best int)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker keeps the denormalized streak columns of a habit in step with
// its completion log. The stats endpoint never reads them.
type StreakWorker struct {
	habitRepo HabitRepository
	calc      StreakCalculator
	jobs      chan StreakJob
}

func NewStreakWorker(hRepo HabitRepository, calc StreakCalculator, queueSize int) *StreakWorker {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &StreakWorker{
		habitRepo: hRepo,
		calc:      calc,
		jobs:      make(chan StreakJob, queueSize),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Streak worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("[WORKER] Streak worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("[WORKER] Queue full! Dropping streak job for habit %s", habitID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("[WORKER] Error fetching habit %s: %v", job.HabitID, err)
		return
	}

	current, best := w.calc.Streaks(habit)

	if habit.CurrentStreak == current && habit.BestStreak == best {
		return
	}

	if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, current, best); err != nil {
		log.Printf("[WORKER] Failed to update streak for %s: %v", job.HabitID, err)
		return
	}

	log.Printf("[WORKER] Streak updated for %s: Current=%d, Best=%d", habit.Name, current, best)
}
