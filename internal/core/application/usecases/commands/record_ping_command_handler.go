package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/tracking"
)

// DefaultMinPingInterval is the server-side floor between accepted pings of one task.
const DefaultMinPingInterval = 10 * time.Second

// PingResult tells the driver client whether its sample was kept.
type PingResult struct {
	Accepted bool
	// PositionUpdated is false for accepted samples older than the cached position.
	PositionUpdated bool
}

// RecordPingCommandHandler ingests GPS samples.
//
// Checks run in this order: task ownership (Unauthorized), task still active
// (TerminalState), then the per-task throttle. Throttled pings are dropped
// silently with Accepted=false. Accepted pings are always appended to the
// history; the cached position only moves forward in time.
type RecordPingCommandHandler struct {
	uowFactory  PingUoWFactory
	minInterval time.Duration
}

func NewRecordPingCommandHandler(uowFactory PingUoWFactory, minInterval time.Duration) RecordPingCommandHandler {
	if minInterval < 0 {
		minInterval = DefaultMinPingInterval
	}
	return RecordPingCommandHandler{
		uowFactory:  uowFactory,
		minInterval: minInterval,
	}
}

func (h RecordPingCommandHandler) Handle(ctx context.Context, cmd RecordPingCommand) (PingResult, error) {
	if err := cmd.Validate(); err != nil {
		return PingResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PingResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()
	t, err := taskRepo.Get(ctx, cmd.TaskID())
	if err != nil {
		return PingResult{}, err
	}
	if err = t.EnsureOwnedBy(cmd.DriverID()); err != nil {
		return PingResult{}, err
	}
	if err = t.EnsureActive(); err != nil {
		return PingResult{}, err
	}

	receivedAt := time.Now().UTC()
	entry, err := tracking.NewLog(kernel.NewUUID(), t.ID(), cmd.Point(), cmd.Sample(), receivedAt)
	if err != nil {
		return PingResult{}, err
	}

	claimed, err := taskRepo.ClaimPingSlot(ctx, t.ID(), receivedAt, h.minInterval)
	if err != nil {
		return PingResult{}, err
	}
	if !claimed {
		return PingResult{}, nil
	}

	if err = uow.TrackingLogRepository().Add(ctx, entry); err != nil {
		return PingResult{}, err
	}

	updated, err := t.UpdatePosition(entry.Point(), entry.RecordedAt())
	if err != nil {
		return PingResult{}, err
	}
	if updated {
		// Another ping may have moved the cache since the task was read.
		updated, err = taskRepo.UpdatePositionIfNewer(ctx, t.ID(), entry.Point(), entry.RecordedAt())
		if err != nil {
			return PingResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return PingResult{}, err
	}

	return PingResult{Accepted: true, PositionUpdated: updated}, nil
}
