package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/lawdesk/internal/application/service"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

// ListStages handles GET /api/v1/stages
func (h *Handlers) ListStages(c *gin.Context) {
	stages, err := h.stages.ListStages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stages)
}

// GetStage handles GET /api/v1/stages/:id
func (h *Handlers) GetStage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	stage, err := h.stages.GetStage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stage)
}

// CreateStage handles POST /api/v1/stages
func (h *Handlers) CreateStage(c *gin.Context) {
	var input service.StageInput
	if !bindJSON(c, &input) {
		return
	}

	stage, err := h.stages.CreateStage(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, stage)
}

// UpdateStage handles PUT /api/v1/stages/:id
func (h *Handlers) UpdateStage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input service.StageInput
	if !bindJSON(c, &input) {
		return
	}

	stage, err := h.stages.UpdateStage(c.Request.Context(), id, input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stage)
}

// DeleteStage handles DELETE /api/v1/stages/:id
func (h *Handlers) DeleteStage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.stages.DeleteStage(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// ListUsers handles GET /api/v1/users?role=
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context(), entity.Role(c.Query("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// CreateUser handles POST /api/v1/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var input service.CreateUserInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

// CurrentUser handles GET /api/v1/users/me
func (h *Handlers) CurrentUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// ListNotifications handles GET /api/v1/notifications?limit=
func (h *Handlers) ListNotifications(c *gin.Context) {
	limit := defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperror.Validation("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	notifications, err := h.notifications.ListForUser(c.Request.Context(), actorFrom(c).ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, notifications)
}

// MarkNotificationSent handles POST /api/v1/notifications/:id/sent. Only the
// delivery side, acting as an administrator, drains the outbox.
func (h *Handlers) MarkNotificationSent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if !actorFrom(c).IsAdmin() {
		respondError(c, apperror.Forbidden("only administrators can mark notifications sent"))
		return
	}

	if err := h.notifications.MarkSent(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "status": entity.NotificationStatusSent})
}
