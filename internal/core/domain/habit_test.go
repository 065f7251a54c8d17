package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Creates valid habit with Sync fields", func(t *testing.T) {
		h, err := domain.NewHabit("u1", "  Drink Water ", "two liters", domain.EveryDay)

		require.NoError(t, err)
		assert.Equal(t, "Drink Water", h.Name)
		assert.Equal(t, "u1", h.UserID)
		assert.NotEmpty(t, h.ID)
		assert.Equal(t, domain.EveryDay, h.Schedule)
		assert.Empty(t, h.CompletedDates)
		assert.NotNil(t, h.CompletedDates, "Empty log must serialize as [] not null")

		assert.Equal(t, 1, h.Version, "New habits MUST start at Version 1 for Optimistic Locking")
		assert.Nil(t, h.DeletedAt)
		assert.WithinDuration(t, time.Now().UTC(), h.CreatedAt, 2*time.Second)
	})

	tests := []struct {
		name    string
		userID  string
		hName   string
		desc    string
		wantErr error
	}{
		{"Error: Empty Name", "u1", "   ", "", domain.ErrHabitNameEmpty},
		{"Error: Name Too Long", "u1", strings.Repeat("a", domain.MaxNameLen+1), "", domain.ErrHabitNameTooLong},
		{"Error: Description Too Long", "u1", "Read", strings.Repeat("d", domain.MaxDescLen+1), domain.ErrHabitDescTooLong},
		{"Error: Invalid UserID", "", "Read", "", domain.ErrHabitInvalidUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewHabit(tt.userID, tt.hName, tt.desc, domain.EveryDay)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestHabit_Update(t *testing.T) {
	h, err := domain.NewHabit("u1", "Gym", "", domain.EveryDay)
	require.NoError(t, err)
	before := h.UpdatedAt

	time.Sleep(time.Millisecond)

	mwf, _ := domain.ScheduleFromWeekdays(time.Monday, time.Wednesday, time.Friday)
	require.NoError(t, h.Update("Gym Session", "legs", mwf, true))

	assert.Equal(t, "Gym Session", h.Name)
	assert.Equal(t, "legs", h.Description)
	assert.Equal(t, mwf, h.Schedule)
	assert.True(t, h.Pinned)
	assert.True(t, h.UpdatedAt.After(before))

	assert.Equal(t, domain.ErrHabitNameEmpty, h.Update("", "", mwf, false))
	assert.Equal(t, "Gym Session", h.Name, "Failed update must not mutate the habit")
}

func TestHabit_Completion(t *testing.T) {
	h, _ := domain.NewHabit("u1", "Read", "", domain.EveryDay)
	day := domain.NewCalendarDay(2024, time.May, 15)

	t.Run("SetCompletion adds once", func(t *testing.T) {
		assert.True(t, h.SetCompletion(day, true))
		assert.False(t, h.SetCompletion(day, true))
		assert.Equal(t, []string{"2024-05-15"}, h.CompletedDates)
	})

	t.Run("Log stays sorted", func(t *testing.T) {
		h.SetCompletion(day.AddDays(-3), true)
		h.SetCompletion(day.AddDays(2), true)
		assert.Equal(t, []string{"2024-05-12", "2024-05-15", "2024-05-17"}, h.CompletedDates)
	})

	t.Run("SetCompletion removes", func(t *testing.T) {
		assert.True(t, h.SetCompletion(day.AddDays(2), false))
		assert.False(t, h.SetCompletion(day.AddDays(2), false))
		assert.Equal(t, []string{"2024-05-12", "2024-05-15"}, h.CompletedDates)
	})

	t.Run("ToggleCompletion flips", func(t *testing.T) {
		assert.False(t, h.ToggleCompletion(day))
		assert.NotContains(t, h.CompletedDates, "2024-05-15")
		assert.True(t, h.ToggleCompletion(day))
		assert.Contains(t, h.CompletedDates, "2024-05-15")
	})
}

func TestHabit_NormalizeCompletedDates(t *testing.T) {
	h := &domain.Habit{CompletedDates: []string{
		"2024-05-02T10:00:00Z", "2024-05-01", "2024-05-02", "garbage",
	}}

	rejected := h.NormalizeCompletedDates()

	assert.Equal(t, []string{"garbage"}, rejected)
	assert.Equal(t, []string{"2024-05-01", "2024-05-02"}, h.CompletedDates)
}

func TestHabit_SetNote(t *testing.T) {
	h := &domain.Habit{}
	day := domain.NewCalendarDay(2024, time.May, 1)

	require.NoError(t, h.SetNote(day, "  felt great "))
	assert.Equal(t, "felt great", h.Notes["2024-05-01"])

	require.NoError(t, h.SetNote(day, ""))
	assert.NotContains(t, h.Notes, "2024-05-01")

	assert.Equal(t, domain.ErrNoteTooLong, h.SetNote(day, strings.Repeat("n", domain.MaxNoteLen+1)))
}

func TestHabit_Clone(t *testing.T) {
	deleted := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	h := &domain.Habit{
		ID:             "h1",
		CompletedDates: []string{"2024-05-01"},
		Notes:          map[string]string{"2024-05-01": "ok"},
		DeletedAt:      &deleted,
	}

	c := h.Clone()
	c.CompletedDates[0] = "2024-05-02"
	c.Notes["2024-05-01"] = "changed"
	*c.DeletedAt = deleted.Add(time.Hour)

	assert.Equal(t, "h1", c.ID)
	assert.Equal(t, "2024-05-01", h.CompletedDates[0])
	assert.Equal(t, "ok", h.Notes["2024-05-01"])
	assert.Equal(t, deleted, *h.DeletedAt)
}
