package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taskpulse-dev/taskpulse/internal/models"
	"github.com/taskpulse-dev/taskpulse/internal/types"
)

var _ UserRepository = (*GormUserRepo)(nil)

type GormUserRepo struct {
	db *gorm.DB
}

func NewGormUserRepo(db *gorm.DB) *GormUserRepo {
	return &GormUserRepo{db: db}
}

func (r *GormUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err, "find user by id")
	}
	return &user, nil
}

func (r *GormUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", types.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, notFound(err, "find user by email")
	}
	return &user, nil
}

func (r *GormUserRepo) FindByWorkspace(ctx context.Context, workspaceName string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("workspace_key = ?", types.WorkspaceKey(workspaceName)).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		return nil, notFound(err, "find user by workspace")
	}
	return &user, nil
}

func (r *GormUserRepo) ListByWorkspace(ctx context.Context, workspaceName string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("workspace_key = ?", types.WorkspaceKey(workspaceName)).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list workspace users: %w", err)
	}
	return users, nil
}

func (r *GormUserRepo) Create(ctx context.Context, user *models.User) error {
	return createUser(r.db.WithContext(ctx), user)
}

func (r *GormUserRepo) CreateOwner(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, user); err != nil {
			return err
		}

		workspace := models.Workspace{
			Key:     user.WorkspaceKey,
			Name:    user.WorkspaceName,
			OwnerID: user.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&workspace).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateWorkspace
			}
			return fmt.Errorf("create workspace: %w", err)
		}
		return nil
	})
}

// UpdateProfile writes only the fields set in changes.
func (r *GormUserRepo) UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (*models.User, error) {
	db := r.db.WithContext(ctx)

	values := map[string]any{"updated_at": time.Now()}
	if changes.Name != nil {
		values["name"] = *changes.Name
	}
	if changes.JobTitle != nil {
		values["job_title"] = *changes.JobTitle
	}

	result := db.Model(&models.User{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return nil, fmt.Errorf("update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func createUser(tx *gorm.DB, user *models.User) error {
	user.Email = types.NormalizeEmail(user.Email)
	user.WorkspaceKey = types.WorkspaceKey(user.WorkspaceName)

	if err := tx.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
