package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/services"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

type computeRequest struct {
	CompletedDates []string `json:"completedDates"`
	Schedule       []bool   `json:"schedule" binding:"required"`
	AsOf           string   `json:"asOf"`
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/habits/:id/stats", h.GetHabitStats)
	r.POST("/stats/compute", h.Compute)
}

func parseAsOf(raw string) (domain.CalendarDay, error) {
	if raw == "" {
		return domain.CalendarDay{}, nil
	}
	return domain.ParseCalendarDay(raw)
}

// GetHabitStats godoc
// @Summary  Streaks, 30-day completion rate and last-week histogram for one habit
// @Tags     stats
// @Produce  json
// @Security BearerAuth
// @Param    id    path  string true  "Habit ID"
// @Param    as_of query string false "Evaluate as of this date (YYYY-MM-DD); defaults to today"
// @Success  200 {object} domain.HabitStats
// @Failure  400 {object} errorResponse
// @Failure  404 {object} errorResponse
// @Router   /habits/{id}/stats [get]
func (h *StatsHandler) GetHabitStats(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	asOf, err := parseAsOf(c.Query("as_of"))
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.svc.GetHabitStats(c.Request.Context(), domain.StatsInput{
		HabitID: c.Param("id"),
		UserID:  userID,
		AsOf:    asOf,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Compute godoc
// @Summary  Compute statistics for a caller-supplied completion log and schedule
// @Tags     stats
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body computeRequest true "Snapshot to evaluate"
// @Success  200 {object} domain.HabitStats
// @Failure  400 {object} errorResponse
// @Router   /stats/compute [post]
func (h *StatsHandler) Compute(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.svc.Compute(domain.ComputeInput{
		CompletedDates: req.CompletedDates,
		Schedule:       req.Schedule,
		AsOf:           asOf,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
