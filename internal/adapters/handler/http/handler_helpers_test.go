package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/services"
)

type recordingQueue struct {
	ids []string
}

func (q *recordingQueue) Enqueue(habitID string) {
	q.ids = append(q.ids, habitID)
}

// 2024-05-15 is a Wednesday.
var fixedNow = func() time.Time {
	return time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)
}

type testEnv struct {
	router *gin.Engine
	repo   *repository.InMemoryHabitRepository
	queue  *recordingQueue
}

func setupRouter() *testEnv {
	gin.SetMode(gin.TestMode)

	repo := repository.NewInMemoryHabitRepository()
	queue := &recordingQueue{}

	habitHandler := adapterHTTP.NewHabitHandler(services.NewHabitService(repo, queue))
	statsHandler := adapterHTTP.NewStatsHandler(services.NewStatsService(repo, nil, time.UTC, fixedNow))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(middleware.ContextUserIDKey, userID)
		}
		c.Next()
	})

	api := r.Group("/api/v1")
	habitHandler.RegisterRoutes(api)
	statsHandler.RegisterRoutes(api)

	return &testEnv{router: r, repo: repo, queue: queue}
}

func (e *testEnv) seed(t *testing.T, userID, name string, schedule domain.ScheduleMask, dates ...string) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, name, "", schedule)
	require.NoError(t, err)
	h.CompletedDates = dates
	require.NoError(t, e.repo.Create(context.Background(), h))
	return h
}

func (e *testEnv) do(method, path, userID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
