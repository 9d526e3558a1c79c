package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/models"
	"github.com/taskpulse-dev/taskpulse/internal/services"
	"github.com/taskpulse-dev/taskpulse/internal/types"
	"github.com/taskpulse-dev/taskpulse/internal/utils"
)

type TaskService interface {
	List(ctx context.Context, identity types.Identity) ([]models.Task, error)
	Create(ctx context.Context, identity types.Identity, in services.CreateTaskInput) (*models.Task, error)
	Update(ctx context.Context, identity types.Identity, taskID string, patch services.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, identity types.Identity, taskID string) error
}

type CreateTaskRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AssigneeID  string  `json:"assigneeId"`
	DueDate     *string `json:"dueDate"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
}

type UpdateTaskRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Priority    *string `json:"priority"`
	Status      *string `json:"status"`
}

type TaskHandler struct {
	tasks  TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks TaskService, logger *zap.Logger) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{tasks: tasks, logger: logger}
}

func (h *TaskHandler) ListTasks(ctx *gin.Context) {
	identity, err := utils.GetCurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	tasks, err := h.tasks.List(ctx.Request.Context(), identity)

	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(ctx *gin.Context) {
	identity, err := utils.GetCurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body CreateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, "Invalid request")
		return
	}

	dueDate, err := parseDueDate(body.DueDate)

	if err != nil {
		badRequest(ctx, "Invalid due date")
		return
	}

	task, err := h.tasks.Create(ctx.Request.Context(), identity, services.CreateTaskInput{
		Name:        body.Name,
		Description: body.Description,
		AssigneeID:  body.AssigneeID,
		DueDate:     dueDate,
		Priority:    body.Priority,
		Status:      body.Status,
	})

	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(ctx *gin.Context) {
	identity, err := utils.GetCurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		badRequest(ctx, "Invalid request")
		return
	}

	dueDate, err := parseDueDate(body.DueDate)

	if err != nil {
		badRequest(ctx, "Invalid due date")
		return
	}

	task, err := h.tasks.Update(ctx.Request.Context(), identity, ctx.Param("id"), services.TaskPatch{
		Name:        body.Name,
		Description: body.Description,
		DueDate:     dueDate,
		Priority:    body.Priority,
		Status:      body.Status,
	})

	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(ctx *gin.Context) {
	identity, err := utils.GetCurrentIdentity(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if err := h.tasks.Delete(ctx.Request.Context(), identity, ctx.Param("id")); err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// parseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}

	value := strings.TrimSpace(*raw)

	if value == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}

	_, err := time.Parse(time.RFC3339Nano, value)
	return nil, err
}
