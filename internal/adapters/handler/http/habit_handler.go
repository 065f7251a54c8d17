package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/services"
)

type HabitHandler struct {
	svc *services.HabitService
}

func NewHabitHandler(svc *services.HabitService) *HabitHandler {
	return &HabitHandler{
		svc: svc,
	}
}

type updateHabitRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Schedule    []bool            `json:"schedule"`
	Pinned      *bool             `json:"pinned"`
	Notes       map[string]string `json:"notes"`
	Version     int               `json:"version"`
}

type completionRequest struct {
	Date      string `json:"date" binding:"required"`
	Completed *bool  `json:"completed"`
	Version   int    `json:"version"`
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.GET("", h.List)
		habits.GET("/sync", h.Sync)
		habits.GET("/:id", h.Get)
		habits.PUT("/:id", h.Update)
		habits.PUT("/:id/completion", h.SetCompletion)
	}
}

// List godoc
// @Summary  List the caller's habits, pinned first
// @Tags     habits
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} domain.Habit
// @Router   /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Get godoc
// @Summary  Fetch one habit
// @Tags     habits
// @Produce  json
// @Security BearerAuth
// @Param    id path string true "Habit ID"
// @Success  200 {object} domain.Habit
// @Failure  404 {object} errorResponse
// @Router   /habits/{id} [get]
func (h *HabitHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	habit, err := h.svc.GetByID(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// Sync godoc
// @Summary  Habits changed since last_sync
// @Tags     habits
// @Produce  json
// @Security BearerAuth
// @Param    last_sync query string false "RFC3339 timestamp"
// @Success  200 {object} map[string]interface{}
// @Failure  400 {object} errorResponse
// @Router   /habits/sync [get]
func (h *HabitHandler) Sync(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var lastSync time.Time
	if raw := c.Query("last_sync"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid last_sync format, use RFC3339"})
			return
		}
		lastSync = parsed
	}

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changes":   deltas,
		"timestamp": time.Now().UTC(),
	})
}

// Update godoc
// @Summary  Edit a habit's name, description, schedule, pin or notes
// @Tags     habits
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string             true "Habit ID"
// @Param    body body updateHabitRequest true "Fields to change"
// @Success  200 {object} domain.Habit
// @Failure  400 {object} errorResponse
// @Failure  404 {object} errorResponse
// @Failure  409 {object} errorResponse
// @Router   /habits/{id} [put]
func (h *HabitHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	habit, err := h.svc.Update(c.Request.Context(), services.UpdateHabitInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Schedule:    req.Schedule,
		Pinned:      req.Pinned,
		Notes:       req.Notes,
		Version:     req.Version,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}

// SetCompletion godoc
// @Summary  Mark a day done, not done, or toggle it when completed is omitted
// @Tags     habits
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string            true "Habit ID"
// @Param    body body completionRequest true "Day to change"
// @Success  200 {object} domain.Habit
// @Failure  400 {object} errorResponse
// @Failure  404 {object} errorResponse
// @Failure  409 {object} errorResponse
// @Router   /habits/{id}/completion [put]
func (h *HabitHandler) SetCompletion(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	habit, err := h.svc.SetCompletion(c.Request.Context(), services.CompletionInput{
		HabitID:   c.Param("id"),
		UserID:    userID,
		Date:      req.Date,
		Completed: req.Completed,
		Version:   req.Version,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, habit)
}
