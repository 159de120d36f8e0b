package trackingrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/tracking"

	"github.com/google/uuid"
)

type TrackingLogDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskID     uuid.UUID `gorm:"type:uuid;not null;index:idx_tracking_logs_task_recorded,priority:1"`
	Lat        float64   `gorm:"not null"`
	Lng        float64   `gorm:"not null"`
	Accuracy   *float64
	Speed      *float64
	Heading    *float64
	RecordedAt time.Time `gorm:"not null;index:idx_tracking_logs_task_recorded,priority:2,sort:desc"`
	ReceivedAt time.Time `gorm:"not null;autoCreateTime"`
}

func (TrackingLogDTO) TableName() string {
	return "tracking_logs"
}

func fromDomain(log *tracking.Log) TrackingLogDTO {
	return TrackingLogDTO{
		ID:         log.ID().Bytes(),
		TaskID:     log.TaskID().Bytes(),
		Lat:        log.Point().Lat(),
		Lng:        log.Point().Lng(),
		Accuracy:   log.Accuracy(),
		Speed:      log.Speed(),
		Heading:    log.Heading(),
		RecordedAt: log.RecordedAt(),
	}
}
