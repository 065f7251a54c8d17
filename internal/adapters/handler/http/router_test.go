package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, *services.TokenService, *repository.InMemoryHabitRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewInMemoryHabitRepository()
	tokens := services.NewTokenService("router-secret", "router-test", time.Hour)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler: adapterHTTP.NewHabitHandler(services.NewHabitService(repo, &recordingQueue{})),
		StatsHandler: adapterHTTP.NewStatsHandler(services.NewStatsService(repo, nil, time.UTC, fixedNow)),
		Tokens:       tokens,
		StartTime:    time.Now(),
	})
	return router, tokens, repo
}

func TestRouter_Health(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"in-memory"`)
	assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/api/v1/habits", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_SwaggerDoc(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/habits/{id}/stats")
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	router, tokens, repo := newTestRouter(t)

	h, err := domain.NewHabit("user-7", "Floss", "", domain.EveryDay)
	require.NoError(t, err)
	h.CompletedDates = []string{"2024-05-14", "2024-05-15"}
	require.NoError(t, repo.Create(t.Context(), h))

	t.Run("Fail: 401 Without Token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/habits/"+h.ID+"/stats", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Success: Bearer Token Resolves User", func(t *testing.T) {
		token, err := tokens.GenerateToken("user-7")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/habits/"+h.ID+"/stats?as_of=2024-05-15", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"currentStreak":2`)
	})
}
