package domain

// HabitStats is recomputed on every request and never stored.
type HabitStats struct {
	CurrentStreak      int              `json:"currentStreak"`
	BestStreak         int              `json:"bestStreak"`
	CompletionRate     int              `json:"completionRate"`
	TotalDays          int              `json:"totalDays"`
	LastWeekCompletion [DaysPerWeek]int `json:"lastWeekCompletion"`
}

type StatsInput struct {
	HabitID string
	UserID  string
	AsOf    CalendarDay
}

// ComputeInput carries a raw, caller-supplied snapshot for stateless computation.
type ComputeInput struct {
	CompletedDates []string
	Schedule       []bool
	AsOf           CalendarDay
}
