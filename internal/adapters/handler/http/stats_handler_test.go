package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
)

func TestGetHabitStats(t *testing.T) {
	env := setupRouter()

	weekdays, err := domain.ParseScheduleMask("0111110")
	require.NoError(t, err)

	// Mon 13, Tue 14 and Wed 15 May 2024, plus Fri 10 before a missed Thu 9.
	h := env.seed(t, "user-1", "Work out", weekdays,
		"2024-05-15", "2024-05-14T08:00:00Z", "2024-05-13", "2024-05-10", "garbage", "2024-05-13")

	t.Run("Success: Defaults To Today In Configured Zone", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/habits/"+h.ID+"/stats", "user-1", "")
		require.Equal(t, http.StatusOK, w.Code)

		stats := decode[domain.HabitStats](t, w)
		assert.Equal(t, 4, stats.CurrentStreak)
		assert.Equal(t, 4, stats.BestStreak)
		assert.Equal(t, 13, stats.CompletionRate)
		assert.Equal(t, 4, stats.TotalDays)
		assert.Equal(t, [7]int{0, 1, 1, 1, 0, 1, 0}, stats.LastWeekCompletion)
	})

	t.Run("Success: Explicit as_of", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/habits/"+h.ID+"/stats?as_of=2024-05-12", "user-1", "")
		require.Equal(t, http.StatusOK, w.Code)

		stats := decode[domain.HabitStats](t, w)
		assert.Equal(t, 1, stats.CurrentStreak, "weekend is skipped back to Friday")
		assert.Equal(t, 4, stats.BestStreak)
		assert.Equal(t, [7]int{0, 0, 0, 0, 0, 1, 0}, stats.LastWeekCompletion)
	})

	t.Run("JSON Field Names", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/habits/"+h.ID+"/stats", "user-1", "")
		require.Equal(t, http.StatusOK, w.Code)
		for _, field := range []string{"currentStreak", "bestStreak", "completionRate", "totalDays", "lastWeekCompletion"} {
			assert.Contains(t, w.Body.String(), `"`+field+`"`)
		}
	})

	t.Run("Fail: 400 Bad as_of", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/habits/"+h.ID+"/stats?as_of=15/05/2024", "user-1", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 404 Other User", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/habits/"+h.ID+"/stats", "user-2", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fail: 401 Without User", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/v1/habits/"+h.ID+"/stats", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestComputeStats(t *testing.T) {
	env := setupRouter()

	t.Run("Success: Every Day Schedule", func(t *testing.T) {
		body := `{
            "completedDates": ["2024-05-13", "2024-05-14", "2024-05-15"],
            "schedule": [true, true, true, true, true, true, true],
            "asOf": "2024-05-15"
        }`
		w := env.do(http.MethodPost, "/api/v1/stats/compute", "user-1", body)
		require.Equal(t, http.StatusOK, w.Code)

		stats := decode[domain.HabitStats](t, w)
		assert.Equal(t, 3, stats.CurrentStreak)
		assert.Equal(t, 3, stats.BestStreak)
		assert.Equal(t, 10, stats.CompletionRate)
		assert.Equal(t, 3, stats.TotalDays)
	})

	t.Run("Success: Empty Log", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/stats/compute", "user-1",
			`{"completedDates": [], "schedule": [true, true, true, true, true, true, true]}`)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, domain.HabitStats{}, decode[domain.HabitStats](t, w))
	})

	t.Run("Fail: 400 Schedule Of Wrong Length", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/stats/compute", "user-1",
			`{"completedDates": ["2024-05-15"], "schedule": [true, true]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "schedule")
	})

	t.Run("Fail: 400 Missing Schedule", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/stats/compute", "user-1", `{"completedDates": ["2024-05-15"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 Bad asOf", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/v1/stats/compute", "user-1",
			`{"schedule": [true, true, true, true, true, true, true], "asOf": "tomorrow"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
