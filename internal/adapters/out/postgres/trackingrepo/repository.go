// Package trackingrepo stores the append-only GPS history of driver tasks.
package trackingrepo

import (
	"context"

	"fulfillment/internal/core/domain/model/tracking"

	"gorm.io/gorm"
)

type GormTrackingLogRepository struct {
	db *gorm.DB
}

func NewGormTrackingLogRepository(db *gorm.DB) *GormTrackingLogRepository {
	return &GormTrackingLogRepository{db: db}
}

func (r *GormTrackingLogRepository) Add(ctx context.Context, log *tracking.Log) error {
	if err := log.Validate(); err != nil {
		return err
	}

	dto := fromDomain(log)
	return r.db.WithContext(ctx).Create(&dto).Error
}
