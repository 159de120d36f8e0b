package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/tracking"
)

// TrackingLogRepository appends GPS samples. There is no update or delete.
type TrackingLogRepository interface {
	Add(ctx context.Context, log *tracking.Log) error
}
