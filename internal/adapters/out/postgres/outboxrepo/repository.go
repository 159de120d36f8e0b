// Package outboxrepo persists the notification outbox.
package outboxrepo

import (
	"context"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Add(ctx context.Context, message *notification.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(message)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListPending locks the returned rows with SKIP LOCKED so that two relays
// running at once pick disjoint batches.
func (r *GormOutboxRepository) ListPending(ctx context.Context, limit int, maxAttempts int) ([]*notification.Message, error) {
	var dtos []OutboxMessageDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Options: clause.LockingOptionsSkipLocked}).
		Where("published_at IS NULL AND attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*notification.Message, 0, len(dtos))
	for _, dto := range dtos {
		m, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, nil
}

func (r *GormOutboxRepository) Update(ctx context.Context, message *notification.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&OutboxMessageDTO{}).
		Where("id = ?", message.ID().Bytes()).
		Updates(map[string]any{
			"attempts":     message.Attempts(),
			"last_error":   message.LastError(),
			"published_at": message.PublishedAt(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("notification", message.ID().String())
	}
	return nil
}
