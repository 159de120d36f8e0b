// Package queries contains read-only operations. They read PostgreSQL directly
// through GORM and never load aggregates.
package queries

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrTrackOrderQueryIsNotConstructed = errors.New(
	"TrackOrderQuery must be created via NewTrackOrderQuery constructor",
)

// Display messages of the tracking view.
const (
	MessageNotYetAssigned      = "not yet assigned"
	MessageLocationUnavailable = "location temporarily unavailable"
	MessageOnTheWay            = "driver is on the way"
	MessageDelivered           = "delivered"
)

// TrackOrderQuery looks an order up by its order number or its carrier
// tracking number.
//
// Example:
//
//	query, _ := NewTrackOrderQuery("ORD-1001")
//	view, err := handler.Handle(ctx, query)
//	if view.Driver == nil {
//	    fmt.Println(view.Message) // "not yet assigned"
//	}
type TrackOrderQuery struct {
	identifier string

	guard guard.ConstructorGuard
}

func NewTrackOrderQuery(identifier string) (TrackOrderQuery, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return TrackOrderQuery{}, errs.NewValueIsRequiredError("order identifier")
	}

	return TrackOrderQuery{identifier: identifier, guard: guard.NewConstructorGuard()}, nil
}

func (q TrackOrderQuery) Validate() error {
	return q.guard.Validate(ErrTrackOrderQueryIsNotConstructed)
}

func (q TrackOrderQuery) Identifier() string {
	return q.identifier
}

// TrackOrderQueryResponse is the customer-facing tracking view.
type TrackOrderQueryResponse struct {
	Order           TrackedOrder
	Driver          *TrackedDriver
	DeliveryAddress string
	Message         string
}

type TrackedOrder struct {
	ID                kernel.UUID
	Number            string
	Status            string
	PaymentStatus     string
	ShippingVendor    string
	TrackingNumber    string
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
}

// TrackedDriver describes the task currently carrying the order.
// Position is nil when no location could be resolved.
type TrackedDriver struct {
	TaskID     kernel.UUID
	TaskStatus string
	Name       string
	Phone      string
	Position   *TrackedPosition
}

type TrackedPosition struct {
	Lat        float64
	Lng        float64
	LastUpdate time.Time
}
