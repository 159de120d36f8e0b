// Package taskrepo implements ports.TaskRepository on top of GORM.
package taskrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/adapters/out/postgres/pgerrs"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormTaskRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormTaskRepository(db *gorm.DB, tracker aggregateTracker) *GormTaskRepository {
	return &GormTaskRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormTaskRepository) Add(ctx context.Context, aggregate *task.DriverTask) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerrs.Conflict(err, "task", "order already has an active task")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes status and proof of delivery. Position columns are owned by
// UpdatePositionIfNewer and ClaimPingSlot and are left untouched.
func (r *GormTaskRepository) Update(ctx context.Context, aggregate *task.DriverTask) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&DriverTaskDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"status":        dto.Status,
			"pod_photo":     dto.PodPhoto,
			"pod_signature": dto.PodSignature,
			"pod_notes":     dto.PodNotes,
			"delivered_at":  dto.DeliveredAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("task", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormTaskRepository) Get(ctx context.Context, id kernel.UUID) (*task.DriverTask, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DriverTaskDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("task", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormTaskRepository) GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*task.DriverTask, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []DriverTaskDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("order_id = ? AND status <> ?", orderID.Bytes(), DeliveredStatusValue).
		Order("created_at DESC").
		Limit(1).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, nil
	}

	return toDomain(dtos[0])
}

func (r *GormTaskRepository) ClaimPingSlot(
	ctx context.Context,
	taskID kernel.UUID,
	receivedAt time.Time,
	minInterval time.Duration,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&DriverTaskDTO{}).
		Where("id = ? AND status <> ? AND (last_ping_received_at IS NULL OR last_ping_received_at <= ?)",
			taskID.Bytes(), DeliveredStatusValue, receivedAt.Add(-minInterval)).
		Update("last_ping_received_at", receivedAt)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *GormTaskRepository) UpdatePositionIfNewer(
	ctx context.Context,
	taskID kernel.UUID,
	point kernel.GeoPoint,
	recordedAt time.Time,
) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&DriverTaskDTO{}).
		Where("id = ? AND status <> ? AND (last_ping_at IS NULL OR last_ping_at < ?)",
			taskID.Bytes(), DeliveredStatusValue, recordedAt).
		Updates(map[string]any{
			"last_lat":     point.Lat(),
			"last_lng":     point.Lng(),
			"last_ping_at": recordedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}
