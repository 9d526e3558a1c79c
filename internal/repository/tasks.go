package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taskpulse-dev/taskpulse/internal/models"
)

var _ TaskRepository = (*GormTaskRepo)(nil)

type GormTaskRepo struct {
	db *gorm.DB
}

func NewGormTaskRepo(db *gorm.DB) *GormTaskRepo {
	return &GormTaskRepo{db: db}
}

// List returns matching tasks, newest first.
func (r *GormTaskRepo) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Where("workspace_name = ?", filter.WorkspaceName)
	if filter.Assignee != "" {
		query = query.Where("assignee = ?", filter.Assignee)
	}

	tasks := []models.Task{}
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *GormTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Update applies changes to the task selected by scope in a single statement.
// ErrNotFound is returned when the scope matches nothing.
func (r *GormTaskRepo) Update(ctx context.Context, scope TaskScope, changes map[string]any) (*models.Task, error) {
	values := make(map[string]any, len(changes)+1)
	for column, value := range changes {
		values[column] = value
	}
	values["updated_at"] = time.Now()

	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := scoped(tx.Model(&models.Task{}), scope).Updates(values)
		if result.Error != nil {
			return fmt.Errorf("update task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := scoped(tx, scope).First(&task).Error; err != nil {
			return notFound(err, "reload task")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes the task selected by scope and returns it.
func (r *GormTaskRepo) Delete(ctx context.Context, scope TaskScope) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scoped(tx, scope).First(&task).Error; err != nil {
			return notFound(err, "find task")
		}
		result := tx.Where("id = ? AND workspace_name = ?", task.ID, task.WorkspaceName).Delete(&models.Task{})
		if result.Error != nil {
			return fmt.Errorf("delete task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func scoped(tx *gorm.DB, scope TaskScope) *gorm.DB {
	tx = tx.Where("id = ? AND workspace_name = ?", scope.ID, scope.WorkspaceName)
	if scope.Assignee != "" {
		tx = tx.Where("assignee = ?", scope.Assignee)
	}
	return tx
}
