package tracking

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrLogIsNotConstructed is returned for a Log that did not come from NewLog.
var ErrLogIsNotConstructed = errors.New("Log must be created via NewLog constructor")

// MaxClockSkew bounds how far into the future a device timestamp may be.
// Later timestamps are clamped to the receive time.
const MaxClockSkew = time.Minute

// Log is one immutable GPS sample of a driver task. Together the rows of a task
// are the authoritative position history; nothing updates or deletes them.
type Log struct {
	id         kernel.UUID
	taskID     kernel.UUID
	point      kernel.GeoPoint
	accuracy   *float64
	speed      *float64
	heading    *float64
	recordedAt time.Time

	isConstructed bool
}

// Sample is the optional telemetry reported alongside a position.
type Sample struct {
	Accuracy *float64
	Speed    *float64
	Heading  *float64
	// RecordedAt is the device clock; zero means "use receive time".
	RecordedAt time.Time
}

// NewLog validates a sample and fixes its timestamp.
//
// Parameters:
//   - id: identifier of the log row
//   - taskID: task the sample belongs to
//   - point: validated position
//   - sample: optional accuracy (m, >= 0), speed (m/s, >= 0), heading (deg, 0..360) and device time
//   - receivedAt: server receive time used when the device time is missing or too far ahead
func NewLog(id, taskID kernel.UUID, point kernel.GeoPoint, sample Sample, receivedAt time.Time) (*Log, error) {
	l := &Log{isConstructed: true}

	if err := errors.Join(
		id.Validate(),
		taskID.Validate(),
		point.Validate(),
		nonNegative("accuracy", sample.Accuracy),
		nonNegative("speed", sample.Speed),
		heading(sample.Heading),
	); err != nil {
		return nil, err
	}
	if receivedAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("received at")
	}

	recordedAt := sample.RecordedAt
	if recordedAt.IsZero() || recordedAt.After(receivedAt.Add(MaxClockSkew)) {
		recordedAt = receivedAt
	}

	l.id = id
	l.taskID = taskID
	l.point = point
	l.accuracy = sample.Accuracy
	l.speed = sample.Speed
	l.heading = sample.Heading
	l.recordedAt = recordedAt.UTC()
	return l, nil
}

func (l *Log) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLogIsNotConstructed
	}
	return nil
}

func (l *Log) ID() kernel.UUID {
	return l.id
}

func (l *Log) TaskID() kernel.UUID {
	return l.taskID
}

func (l *Log) Point() kernel.GeoPoint {
	return l.point
}

func (l *Log) Accuracy() *float64 {
	return l.accuracy
}

func (l *Log) Speed() *float64 {
	return l.speed
}

func (l *Log) Heading() *float64 {
	return l.heading
}

func (l *Log) RecordedAt() time.Time {
	return l.recordedAt
}

func nonNegative(name string, v *float64) error {
	if v != nil && *v < 0 {
		return errs.NewValueIsOutOfRangeError(name, *v, 0, "+inf")
	}
	return nil
}

func heading(v *float64) error {
	if v != nil && (*v < 0 || *v > 360) {
		return errs.NewValueIsOutOfRangeError("heading", *v, 0, 360)
	}
	return nil
}
