package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/pkg/guard"
)

var ErrRecordPingCommandIsNotConstructed = errors.New(
	"RecordPingCommand must be created via NewRecordPingCommand constructor",
)

// RecordPingCommand is one GPS sample from a driver's device.
type RecordPingCommand struct { //nolint:recvcheck //using for validation
	taskID   kernel.UUID
	driverID kernel.UUID
	point    kernel.GeoPoint
	sample   tracking.Sample

	guard guard.ConstructorGuard
}

func NewRecordPingCommand(taskID, driverID kernel.UUID, lat, lng float64, sample tracking.Sample) (RecordPingCommand, error) {
	point, pointErr := kernel.NewGeoPoint(lat, lng)
	if err := errors.Join(taskID.Validate(), driverID.Validate(), pointErr); err != nil {
		return RecordPingCommand{}, err
	}

	return RecordPingCommand{
		taskID:   taskID,
		driverID: driverID,
		point:    point,
		sample:   sample,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RecordPingCommand) Validate() error {
	return c.guard.Validate(ErrRecordPingCommandIsNotConstructed)
}

func (c RecordPingCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c RecordPingCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c RecordPingCommand) Point() kernel.GeoPoint {
	return c.point
}

func (c RecordPingCommand) Sample() tracking.Sample {
	return c.sample
}
