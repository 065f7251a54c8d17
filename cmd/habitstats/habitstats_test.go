package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompute_JSON(t *testing.T) {
	stdout, stderr, err := runCLI(t, "compute",
		"--schedule", "0111110", "--as-of", "2024-05-15", "--json",
		"2024-05-13", "2024-05-14", "2024-05-15T07:00:00Z", "2024-05-10", "nonsense")
	require.NoError(t, err)

	var got domain.HabitStats
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, 4, got.CurrentStreak)
	assert.Equal(t, 4, got.BestStreak)
	assert.Equal(t, 13, got.CompletionRate)
	assert.Equal(t, 4, got.TotalDays)

	assert.Contains(t, stderr, "nonsense")
}

func TestCompute_Styled(t *testing.T) {
	stdout, _, err := runCLI(t, "compute", "--as-of", "2024-05-15", "2024-05-14", "2024-05-15")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Current streak")
	assert.Contains(t, stdout, "2 days")
	assert.Contains(t, stdout, "7% of last 30 days")
	assert.Contains(t, stdout, "1111111")
}

func TestCompute_Errors(t *testing.T) {
	_, _, err := runCLI(t, "compute", "--schedule", "11", "2024-05-15")
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)

	_, _, err = runCLI(t, "compute", "--schedule", "11z1111", "2024-05-15")
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)

	_, _, err = runCLI(t, "compute", "--as-of", "someday", "2024-05-15")
	assert.ErrorIs(t, err, domain.ErrInvalidCalendarDay)
}

func TestShow(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "habits.db")

	db, err := repository.OpenSQLite(ctx, path)
	require.NoError(t, err)

	h, err := domain.NewHabit("u1", "Meditate", "", domain.EveryDay)
	require.NoError(t, err)
	h.CompletedDates = []string{"2024-05-12", "2024-05-13", "2024-05-15"}
	require.NoError(t, repository.NewSQLiteHabitRepository(db).Create(ctx, h))
	require.NoError(t, db.Close())

	t.Run("JSON", func(t *testing.T) {
		stdout, _, err := runCLI(t, "show", "--db", path, "--as-of", "2024-05-15", "--json", h.ID)
		require.NoError(t, err)

		var got domain.HabitStats
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, 1, got.CurrentStreak)
		assert.Equal(t, 2, got.BestStreak)
		assert.Equal(t, 3, got.TotalDays)
	})

	t.Run("Styled", func(t *testing.T) {
		stdout, _, err := runCLI(t, "show", "--db", path, "--as-of", "2024-05-15", h.ID)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Meditate")
		assert.Contains(t, stdout, "1 day")
	})

	t.Run("Unknown Habit", func(t *testing.T) {
		_, _, err := runCLI(t, "show", "--db", path, "missing")
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Requires Habit ID", func(t *testing.T) {
		_, _, err := runCLI(t, "show", "--db", path)
		assert.Error(t, err)
	})
}
