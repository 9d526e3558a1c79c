package repository

import (
	"context"
	"errors"

	"github.com/taskpulse-dev/taskpulse/internal/models"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateWorkspace = errors.New("workspace already claimed")
)

// UserRepository persists users and workspace claims.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByWorkspace matches the workspace name case-insensitively and
	// literally; the input is never interpreted as a pattern.
	FindByWorkspace(ctx context.Context, workspaceName string) (*models.User, error)
	ListByWorkspace(ctx context.Context, workspaceName string) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	// CreateOwner atomically stores an Admin together with its workspace claim.
	CreateOwner(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (*models.User, error)
}

// ProfileChanges selects the profile fields to overwrite. Nil leaves a field
// untouched.
type ProfileChanges struct {
	Name     *string
	JobTitle *string
}

// TaskScope selects a single task inside a tenant. Assignee is optional.
type TaskScope struct {
	ID            string
	WorkspaceName string
	Assignee      string
}

// TaskFilter selects tasks for listing. Assignee is optional.
type TaskFilter struct {
	WorkspaceName string
	Assignee      string
}

// TaskRepository persists workspace-scoped tasks.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, scope TaskScope, changes map[string]any) (*models.Task, error)
	Delete(ctx context.Context, scope TaskScope) (*models.Task, error)
}

// DeliveryRepository records outbound notification attempts.
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
}
