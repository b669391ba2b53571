package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/lawdesk/internal/application/service"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	workflow      service.WorkflowService
	stages        service.StageService
	users         service.UserService
	notifications service.NotificationService
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, logger Logger) *Handlers {
	return &Handlers{
		workflow:      services.Workflow,
		stages:        services.Stages,
		users:         services.Users,
		notifications: services.Notifications,
		logger:        logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ListTasksRequest represents query parameters for listing tasks
type ListTasksRequest struct {
	Status         string `form:"status"`
	ApprovalStatus string `form:"approval_status"`
	DepartmentID   int64  `form:"department_id"`
	AssignedTo     int64  `form:"assigned_to"`
	CreatedBy      int64  `form:"created_by"`
	StageID        int64  `form:"stage_id"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
}

// MoveToStageRequest is the body of POST /tasks/:id/stage
type MoveToStageRequest struct {
	StageID int64 `json:"stage_id"`
}

// FollowUpRequest is the body of POST /tasks/:id/follow-ups
type FollowUpRequest struct {
	Notes string `json:"notes"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	respond(c, http.StatusOK, response)
}

// CreateTask handles POST /api/v1/tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var input service.CreateTaskInput
	if !bindJSON(c, &input) {
		return
	}

	task, err := h.workflow.CreateTask(c.Request.Context(), input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, task)
}

// ListTasks handles GET /api/v1/tasks
func (h *Handlers) ListTasks(c *gin.Context) {
	var req ListTasksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		respondError(c, apperror.Wrap(err, apperror.CodeValidation, "invalid query parameters"))
		return
	}

	// Set defaults
	if req.Limit == 0 {
		req.Limit = defaultPageSize
	}
	if req.Limit > maxPageSize {
		req.Limit = maxPageSize
	}

	tasks, err := h.workflow.ListTasks(c.Request.Context(), entity.TaskFilter{
		Status:         entity.TaskStatus(req.Status),
		ApprovalStatus: entity.ApprovalStatus(req.ApprovalStatus),
		DepartmentID:   req.DepartmentID,
		AssignedTo:     req.AssignedTo,
		CreatedBy:      req.CreatedBy,
		StageID:        req.StageID,
		Limit:          req.Limit,
		Offset:         req.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tasks)
}

// GetTask handles GET /api/v1/tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.workflow.GetTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// UpdateTask handles PATCH /api/v1/tasks/:id
func (h *Handlers) UpdateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch service.TaskPatch
	if !bindJSON(c, &patch) {
		return
	}

	task, err := h.workflow.UpdateTask(c.Request.Context(), id, patch, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/v1/tasks/:id
func (h *Handlers) DeleteTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workflow.DeleteTask(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

type approveFunc func(c *gin.Context, id int64, actor entity.Actor) (*entity.Task, error)

func (h *Handlers) approve(c *gin.Context, fn approveFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := fn(c, id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// ApproveAdmin handles POST /api/v1/tasks/:id/approvals/admin
func (h *Handlers) ApproveAdmin(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, actor entity.Actor) (*entity.Task, error) {
		return h.workflow.ApproveAdmin(c.Request.Context(), id, actor)
	})
}

// ApproveMainLawyer handles POST /api/v1/tasks/:id/approvals/main-lawyer
func (h *Handlers) ApproveMainLawyer(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, actor entity.Actor) (*entity.Task, error) {
		return h.workflow.ApproveMainLawyer(c.Request.Context(), id, actor)
	})
}

// ApproveAssignedLawyer handles POST /api/v1/tasks/:id/approvals/assigned-lawyer
func (h *Handlers) ApproveAssignedLawyer(c *gin.Context) {
	h.approve(c, func(c *gin.Context, id int64, actor entity.Actor) (*entity.Task, error) {
		return h.workflow.ApproveAssignedLawyer(c.Request.Context(), id, actor)
	})
}

// ListPendingAdminApprovals handles GET /api/v1/approvals/pending-admin
func (h *Handlers) ListPendingAdminApprovals(c *gin.Context) {
	tasks, err := h.workflow.ListPendingAdminApprovals(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tasks)
}

// MoveToStage handles POST /api/v1/tasks/:id/stage
func (h *Handlers) MoveToStage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req MoveToStageRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.workflow.MoveToStage(c.Request.Context(), id, req.StageID, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// RecordFollowUp handles POST /api/v1/tasks/:id/follow-ups
func (h *Handlers) RecordFollowUp(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req FollowUpRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.workflow.RecordFollowUp(c.Request.Context(), id, req.Notes, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// ListActivity handles GET /api/v1/tasks/:id/activity
func (h *Handlers) ListActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	entries, err := h.workflow.ListActivity(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, entries)
}
