package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taskpulse-dev/taskpulse/internal/models"
	"github.com/taskpulse-dev/taskpulse/internal/repository"
	"github.com/taskpulse-dev/taskpulse/internal/types"
)

const avatarBaseURL = "https://i.pravatar.cc/150"

type TaskServiceOptions struct {
	// StrictAssigneeWorkspace treats assignees from another workspace as missing.
	StrictAssigneeWorkspace bool
	// RestrictMemberUpdates limits Members to tasks assigned to them.
	RestrictMemberUpdates bool
}

type CreateTaskInput struct {
	Name        string
	Description string
	AssigneeID  string
	DueDate     *time.Time
	Priority    string
	Status      string
}

// TaskPatch holds the fields a caller may change. Nil means untouched.
type TaskPatch struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	Priority    *string
	Status      *string
}

func (p TaskPatch) changes() map[string]any {
	changes := make(map[string]any)
	if p.Name != nil {
		changes["name"] = *p.Name
	}
	if p.Description != nil {
		changes["description"] = *p.Description
	}
	if p.DueDate != nil {
		changes["due_date"] = *p.DueDate
	}
	if p.Priority != nil {
		changes["priority"] = *p.Priority
	}
	if p.Status != nil {
		changes["status"] = *p.Status
	}
	return changes
}

type TaskService struct {
	tasks    repository.TaskRepository
	users    repository.UserRepository
	notifier Notifier
	opts     TaskServiceOptions
	logger   *zap.Logger
	now      func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, notifier Notifier, opts TaskServiceOptions, logger *zap.Logger) *TaskService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &TaskService{
		tasks:    tasks,
		users:    users,
		notifier: notifier,
		opts:     opts,
		logger:   orNop(logger),
		now:      time.Now,
	}
}

// List returns the tasks visible to identity, newest first. Admins see the
// whole workspace, Members only their own assignments.
func (s *TaskService) List(ctx context.Context, identity types.Identity) ([]models.Task, error) {
	filter := repository.TaskFilter{WorkspaceName: identity.WorkspaceName}
	if !identity.IsAdmin() {
		filter.Assignee = identity.ID
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, internalError("list tasks", err)
	}

	s.logger.Debug("tasks listed",
		zap.String("user_id", identity.ID),
		zap.String("role", identity.Role),
		zap.String("workspace", identity.WorkspaceName),
		zap.Int("count", len(tasks)),
	)
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, identity types.Identity, in CreateTaskInput) (*models.Task, error) {
	assigneeID := strings.TrimSpace(in.AssigneeID)
	if assigneeID == "" {
		assigneeID = identity.ID
	}

	assignee, err := s.users.FindByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssigneeNotFound
		}
		return nil, internalError("lookup assignee", err)
	}
	if s.opts.StrictAssigneeWorkspace && types.WorkspaceKey(assignee.WorkspaceName) != types.WorkspaceKey(identity.WorkspaceName) {
		s.logger.Warn("rejected cross-workspace assignee",
			zap.String("user_id", identity.ID),
			zap.String("assignee_id", assignee.ID),
		)
		return nil, ErrAssigneeNotFound
	}

	status := in.Status
	if status == "" {
		status = types.StatusPending
	}

	task := &models.Task{
		Name:          in.Name,
		Description:   in.Description,
		Assignee:      assignee.ID,
		AssigneeName:  assignee.Name,
		AssigneeEmail: assignee.Email,
		Avatar:        avatarURL(assignee.Email),
		WorkspaceName: identity.WorkspaceName,
		DueDate:       in.DueDate,
		Priority:      in.Priority,
		Status:        status,
		CreatedBy:     identity.ID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, internalError("create task", err)
	}

	audit(s.logger, "task.created", "task_id", task.ID, "user_id", identity.ID, "workspace", task.WorkspaceName)
	s.notify(ctx, *task, EventCreated)
	return task, nil
}

// Update applies patch to a task in the caller's workspace. A task in another
// workspace is indistinguishable from a missing one.
func (s *TaskService) Update(ctx context.Context, identity types.Identity, taskID string, patch TaskPatch) (*models.Task, error) {
	scope := repository.TaskScope{ID: taskID, WorkspaceName: identity.WorkspaceName}
	if s.opts.RestrictMemberUpdates && !identity.IsAdmin() {
		scope.Assignee = identity.ID
	}

	task, err := s.tasks.Update(ctx, scope, patch.changes())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, internalError("update task", err)
	}

	audit(s.logger, "task.updated", "task_id", task.ID, "user_id", identity.ID, "workspace", task.WorkspaceName)
	s.notify(ctx, *task, EventUpdated)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, identity types.Identity, taskID string) error {
	task, err := s.tasks.Delete(ctx, repository.TaskScope{ID: taskID, WorkspaceName: identity.WorkspaceName})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return internalError("delete task", err)
	}

	audit(s.logger, "task.deleted", "task_id", task.ID, "user_id", identity.ID, "workspace", task.WorkspaceName)
	s.notify(ctx, *task, EventDeleted)
	return nil
}

// notify never fails the mutation it follows.
func (s *TaskService) notify(ctx context.Context, task models.Task, event EventType) {
	if err := s.notifier.Notify(ctx, NewTaskEvent(task, event, s.now())); err != nil {
		s.logger.Warn("task notification failed",
			zap.String("task_id", task.ID),
			zap.String("event_type", string(event)),
			zap.Error(err),
		)
	}
}

func avatarURL(email string) string {
	return fmt.Sprintf("%s?u=%s", avatarBaseURL, url.QueryEscape(email))
}
