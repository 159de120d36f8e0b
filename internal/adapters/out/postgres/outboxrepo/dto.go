package outboxrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OutboxMessageDTO struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Kind        string         `gorm:"type:varchar(32);not null"`
	OrderID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	OrderNumber string         `gorm:"type:varchar(64);not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null"`
	Attempts    int            `gorm:"not null;default:0"`
	LastError   string         `gorm:"type:text"`
	CreatedAt   time.Time      `gorm:"not null;index:idx_outbox_pending,priority:2"`
	PublishedAt *time.Time     `gorm:"index:idx_outbox_pending,priority:1"`
}

func (OutboxMessageDTO) TableName() string {
	return "notification_outbox"
}

func fromDomain(m *notification.Message) (OutboxMessageDTO, error) {
	payload, err := json.Marshal(m.Payload())
	if err != nil {
		return OutboxMessageDTO{}, err
	}

	return OutboxMessageDTO{
		ID:          m.ID().Bytes(),
		Kind:        string(m.Kind()),
		OrderID:     m.OrderID().Bytes(),
		OrderNumber: m.OrderNumber(),
		Payload:     datatypes.JSON(payload),
		Attempts:    m.Attempts(),
		LastError:   m.LastError(),
		CreatedAt:   m.CreatedAt(),
		PublishedAt: m.PublishedAt(),
	}, nil
}

func toDomain(dto OutboxMessageDTO) (*notification.Message, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	payload := map[string]any{}
	if len(dto.Payload) > 0 {
		if err = json.Unmarshal(dto.Payload, &payload); err != nil {
			return nil, err
		}
	}

	return notification.RestoreMessage(notification.RestoreParams{
		ID:          id,
		Kind:        notification.Kind(dto.Kind),
		OrderID:     orderID,
		OrderNumber: dto.OrderNumber,
		Payload:     payload,
		CreatedAt:   dto.CreatedAt,
		Attempts:    dto.Attempts,
		LastError:   dto.LastError,
		PublishedAt: dto.PublishedAt,
	})
}
