package taskrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/task"

	"github.com/google/uuid"
)

// DeliveredStatusValue is the stored value of task.Delivered, used by the
// partial unique index that allows a single active task per order.
const DeliveredStatusValue = int(task.Delivered)

type DriverTaskDTO struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID    `gorm:"type:uuid;not null;index"`
	DriverID      uuid.UUID    `gorm:"type:uuid;not null;index"`
	Recipient     RecipientDTO `gorm:"embedded;embeddedPrefix:recipient_"`
	ScheduledDate *time.Time
	Status        int `gorm:"not null"`

	LastLat            *float64
	LastLng            *float64
	LastPingAt         *time.Time
	LastPingReceivedAt *time.Time

	PodPhoto     string `gorm:"type:text"`
	PodSignature string `gorm:"type:text"`
	PodNotes     string `gorm:"type:text"`
	DeliveredAt  *time.Time

	CreatedAt time.Time `gorm:"not null"`
}

func (DriverTaskDTO) TableName() string {
	return "driver_tasks"
}

type RecipientDTO struct {
	Name    string `gorm:"type:varchar(255)"`
	Phone   string `gorm:"type:varchar(32)"`
	Address string `gorm:"type:text"`
}

func fromDomain(aggregate *task.DriverTask) DriverTaskDTO {
	dto := DriverTaskDTO{
		ID:       aggregate.ID().Bytes(),
		OrderID:  aggregate.OrderID().Bytes(),
		DriverID: aggregate.DriverID().Bytes(),
		Recipient: RecipientDTO{
			Name:    aggregate.Recipient().Name(),
			Phone:   aggregate.Recipient().Phone(),
			Address: aggregate.Recipient().Address(),
		},
		ScheduledDate: aggregate.ScheduledDate(),
		Status:        int(aggregate.Status()),
		LastPingAt:    aggregate.LastPingAt(),
		DeliveredAt:   aggregate.DeliveredAt(),
		CreatedAt:     aggregate.CreatedAt(),
	}

	if p := aggregate.LastPosition(); p != nil {
		lat, lng := p.Lat(), p.Lng()
		dto.LastLat = &lat
		dto.LastLng = &lng
	}

	if pod := aggregate.Proof(); pod != nil {
		dto.PodPhoto = pod.Photo()
		dto.PodSignature = pod.Signature()
		dto.PodNotes = pod.Notes()
	}

	return dto
}

func toDomain(dto DriverTaskDTO) (*task.DriverTask, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	driverID, err := kernel.UUIDFromBytes(dto.DriverID[:])
	if err != nil {
		return nil, err
	}

	recipient, err := kernel.NewRecipient(dto.Recipient.Name, dto.Recipient.Phone, dto.Recipient.Address)
	if err != nil {
		return nil, err
	}

	var position *kernel.GeoPoint
	if dto.LastLat != nil && dto.LastLng != nil {
		p, posErr := kernel.NewGeoPoint(*dto.LastLat, *dto.LastLng)
		if posErr != nil {
			return nil, posErr
		}
		position = &p
	}

	var proof *task.ProofOfDelivery
	if dto.PodPhoto != "" {
		pod, podErr := task.NewProofOfDelivery(dto.PodPhoto, dto.PodSignature, dto.PodNotes)
		if podErr != nil {
			return nil, podErr
		}
		proof = &pod
	}

	return task.RestoreDriverTask(task.RestoreParams{
		ID:            id,
		OrderID:       orderID,
		DriverID:      driverID,
		Recipient:     recipient,
		ScheduledDate: dto.ScheduledDate,
		Status:        task.Status(dto.Status),
		LastPosition:  position,
		LastPingAt:    dto.LastPingAt,
		Proof:         proof,
		DeliveredAt:   dto.DeliveredAt,
		CreatedAt:     dto.CreatedAt,
	})
}
