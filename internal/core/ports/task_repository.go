package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/task"
)

// TaskRepository defines the persistence contract for driver tasks.
type TaskRepository interface {
	// Add persists a new task. A second non-delivered task for the same order
	// fails with ConflictError.
	Add(ctx context.Context, aggregate *task.DriverTask) error

	// Update persists status and proof-of-delivery changes. The cached position
	// is not written here, see UpdatePositionIfNewer.
	Update(ctx context.Context, aggregate *task.DriverTask) error

	// Get loads a task by id. Returns ObjectNotFoundError if missing.
	Get(ctx context.Context, id kernel.UUID) (*task.DriverTask, error)

	// GetActiveByOrder returns the order's non-delivered task, or nil if there is none.
	GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*task.DriverTask, error)

	// ClaimPingSlot atomically records receivedAt as the task's last accepted
	// ping if the task is not delivered and at least minInterval has passed
	// since the previous one. It returns false when the ping must be dropped.
	ClaimPingSlot(ctx context.Context, taskID kernel.UUID, receivedAt time.Time, minInterval time.Duration) (bool, error)

	// UpdatePositionIfNewer replaces the cached position only when recordedAt is
	// strictly newer than the cached timestamp. It returns whether the cache changed.
	UpdatePositionIfNewer(ctx context.Context, taskID kernel.UUID, point kernel.GeoPoint, recordedAt time.Time) (bool, error)
}
