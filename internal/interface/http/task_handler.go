package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/taskflow/taskflow-api/internal/application"
	"github.com/taskflow/taskflow-api/internal/domain/entity"
	"github.com/taskflow/taskflow-api/internal/interface/middleware"
	"github.com/taskflow/taskflow-api/pkg/response"
	"github.com/taskflow/taskflow-api/pkg/validation"
)

// TaskHandler exposes the task resource. Every route runs behind the auth
// middleware; handlers read the session email from the context and leave
// identity-to-user resolution to the service.
type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=PENDING COMPLETED"`
}

type patchTaskRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING COMPLETED"`
}

func sessionEmail(c *gin.Context) (string, bool) {
	email := c.GetString(middleware.CtxUserEmailKey)
	if email == "" {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return email, true
}

// fail maps service errors onto the wire taxonomy. Anything unexpected
// collapses to an opaque 500; the detail goes to the log only.
func (h *TaskHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "User not found")
	case errors.Is(err, application.ErrTaskNotFound):
		response.Error(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, application.ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "Valid status is required")
	default:
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("task request failed")
		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}

// List GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		return
	}
	tasks, err := h.Svc.List(c.Request.Context(), email)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks)
}

// Create POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), email, application.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, t)
}

// Get GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		return
	}
	t, err := h.Svc.Get(c.Request.Context(), email, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, t)
}

// Update PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	in := application.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := entity.TaskStatus(*req.Status)
		in.Status = &status
	}
	t, err := h.Svc.Update(c.Request.Context(), email, c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, t)
}

// UpdateStatus PATCH /api/tasks/:id
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		return
	}
	var req patchTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Valid status is required")
		return
	}
	t, err := h.Svc.UpdateStatus(c.Request.Context(), email, c.Param("id"), entity.TaskStatus(req.Status))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, t)
}

// Delete DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	email, ok := sessionEmail(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), email, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	response.Message(c, "Task deleted successfully")
}
