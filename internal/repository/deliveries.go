package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskpulse-dev/taskpulse/internal/models"
)

var _ DeliveryRepository = (*GormDeliveryRepo)(nil)

type GormDeliveryRepo struct {
	db *gorm.DB
}

func NewGormDeliveryRepo(db *gorm.DB) *GormDeliveryRepo {
	return &GormDeliveryRepo{db: db}
}

func (r *GormDeliveryRepo) Create(ctx context.Context, delivery *models.Delivery) error {
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}
