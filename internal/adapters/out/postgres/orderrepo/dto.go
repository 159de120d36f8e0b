package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

type OrderDTO struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Number            string       `gorm:"type:varchar(64);not null;uniqueIndex:ux_orders_number"`
	CustomerID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	Recipient         RecipientDTO `gorm:"embedded;embeddedPrefix:recipient_"`
	TotalAmount       int64        `gorm:"not null"`
	Status            int          `gorm:"not null;index:idx_orders_awaiting_payment,priority:1"`
	PaymentStatus     int          `gorm:"not null;index:idx_orders_awaiting_payment,priority:2"`
	PaymentReference  string       `gorm:"type:varchar(128)"`
	PaymentMethod     string       `gorm:"type:varchar(64)"`
	PaymentProof      string       `gorm:"type:text"`
	PaidAt            *time.Time
	ShippingVendor    string  `gorm:"type:varchar(64)"`
	TrackingNumber    *string `gorm:"type:varchar(128);uniqueIndex:ux_orders_tracking_number"`
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
	ReminderSent      bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"not null;index:idx_orders_awaiting_payment,priority:4"`
	// LastSweptAt belongs to the reconciliation sweep, not to the aggregate.
	LastSweptAt *time.Time `gorm:"index:idx_orders_awaiting_payment,priority:3"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type RecipientDTO struct {
	Name    string `gorm:"type:varchar(255)"`
	Phone   string `gorm:"type:varchar(32)"`
	Address string `gorm:"type:text"`
}

func fromDomain(aggregate *order.Order) OrderDTO {
	var trackingNumber *string
	if tn := aggregate.TrackingNumber(); tn != "" {
		trackingNumber = &tn
	}

	return OrderDTO{
		ID:         aggregate.ID().Bytes(),
		Number:     aggregate.Number(),
		CustomerID: aggregate.CustomerID().Bytes(),
		Recipient: RecipientDTO{
			Name:    aggregate.Recipient().Name(),
			Phone:   aggregate.Recipient().Phone(),
			Address: aggregate.Recipient().Address(),
		},
		TotalAmount:       aggregate.TotalAmount(),
		Status:            int(aggregate.Status()),
		PaymentStatus:     int(aggregate.PaymentStatus()),
		PaymentReference:  aggregate.PaymentReference(),
		PaymentMethod:     aggregate.PaymentMethod(),
		PaymentProof:      aggregate.PaymentProof(),
		PaidAt:            aggregate.PaidAt(),
		ShippingVendor:    aggregate.ShippingVendor(),
		TrackingNumber:    trackingNumber,
		EstimatedDelivery: aggregate.EstimatedDelivery(),
		ActualDelivery:    aggregate.ActualDelivery(),
		ReminderSent:      aggregate.ReminderSent(),
		CreatedAt:         aggregate.CreatedAt(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	recipient, err := kernel.NewRecipient(dto.Recipient.Name, dto.Recipient.Phone, dto.Recipient.Address)
	if err != nil {
		return nil, err
	}

	var trackingNumber string
	if dto.TrackingNumber != nil {
		trackingNumber = *dto.TrackingNumber
	}

	return order.RestoreOrder(order.RestoreParams{
		ID:                id,
		Number:            dto.Number,
		CustomerID:        customerID,
		TotalAmount:       dto.TotalAmount,
		Recipient:         recipient,
		Status:            order.Status(dto.Status),
		PaymentStatus:     order.PaymentStatus(dto.PaymentStatus),
		PaymentReference:  dto.PaymentReference,
		PaymentMethod:     dto.PaymentMethod,
		PaymentProof:      dto.PaymentProof,
		PaidAt:            dto.PaidAt,
		ShippingVendor:    dto.ShippingVendor,
		TrackingNumber:    trackingNumber,
		EstimatedDelivery: dto.EstimatedDelivery,
		ActualDelivery:    dto.ActualDelivery,
		ReminderSent:      dto.ReminderSent,
		CreatedAt:         dto.CreatedAt,
	})
}
