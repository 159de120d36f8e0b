package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackOrderQueryHandler builds the tracking view from orders, driver_tasks,
// drivers and tracking_logs.
//
// The latest tracking_logs row wins over the position cached on the task: a
// crash between appending the log and updating the cache leaves the log ahead.
// Once the order is found, failing to resolve its driver or position degrades
// the view instead of failing it.
type TrackOrderQueryHandler struct {
	db *gorm.DB
}

func NewTrackOrderQueryHandler(db *gorm.DB) TrackOrderQueryHandler {
	return TrackOrderQueryHandler{db: db}
}

// Handle returns ObjectNotFoundError when neither an order number nor a
// tracking number matches.
func (h TrackOrderQueryHandler) Handle(ctx context.Context, query TrackOrderQuery) (TrackOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return TrackOrderQueryResponse{}, err
	}

	resp, err := h.loadOrder(ctx, query.Identifier())
	if err != nil {
		return TrackOrderQueryResponse{}, err
	}

	found, err := h.loadDriver(ctx, &resp)
	if err != nil {
		resp.Driver = nil
		resp.Message = MessageLocationUnavailable
		return resp, nil
	}
	if !found {
		resp.Message = MessageNotYetAssigned
		return resp, nil
	}

	position, err := h.loadPosition(ctx, resp.Driver.TaskID)
	resp.Driver.Position = position

	switch {
	case resp.Order.Status == order.Delivered.String():
		resp.Message = MessageDelivered
	case err != nil || position == nil:
		resp.Driver.Position = nil
		resp.Message = MessageLocationUnavailable
	default:
		resp.Message = MessageOnTheWay
	}

	return resp, nil
}

func (h TrackOrderQueryHandler) loadOrder(ctx context.Context, identifier string) (TrackOrderQueryResponse, error) {
	var (
		id                                uuid.UUID
		number, vendor, recipientAddress  string
		trackingNumber                    sql.NullString
		status, paymentStatus             int
		estimatedDelivery, actualDelivery sql.NullTime
	)

	err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			number,
			status,
			payment_status,
			shipping_vendor,
			tracking_number,
			estimated_delivery,
			actual_delivery,
			recipient_address
		FROM orders
		WHERE number = ? OR tracking_number = ?
		ORDER BY (number = ?) DESC
		LIMIT 1
	`, identifier, identifier, identifier).Row().Scan(
		&id,
		&number,
		&status,
		&paymentStatus,
		&vendor,
		&trackingNumber,
		&estimatedDelivery,
		&actualDelivery,
		&recipientAddress,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return TrackOrderQueryResponse{}, errs.NewObjectNotFoundError("order", identifier)
	}
	if err != nil {
		return TrackOrderQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return TrackOrderQueryResponse{}, err
	}

	return TrackOrderQueryResponse{
		Order: TrackedOrder{
			ID:                orderID,
			Number:            number,
			Status:            order.Status(status).String(),
			PaymentStatus:     order.PaymentStatus(paymentStatus).String(),
			ShippingVendor:    vendor,
			TrackingNumber:    trackingNumber.String,
			EstimatedDelivery: timePtr(estimatedDelivery),
			ActualDelivery:    timePtr(actualDelivery),
		},
		DeliveryAddress: recipientAddress,
	}, nil
}

// loadDriver picks the order's active task, or its most recent delivered one.
func (h TrackOrderQueryHandler) loadDriver(ctx context.Context, resp *TrackOrderQueryResponse) (bool, error) {
	var (
		taskID      uuid.UUID
		status      int
		name, phone sql.NullString
		address     string
	)

	err := h.db.WithContext(ctx).Raw(`
		SELECT
			t.id,
			t.status,
			t.recipient_address,
			d.name,
			d.phone
		FROM driver_tasks t
		LEFT JOIN drivers d ON d.id = t.driver_id
		WHERE t.order_id = ?
		ORDER BY (t.status <> ?) DESC, t.created_at DESC
		LIMIT 1
	`, resp.Order.ID.Bytes(), int(task.Delivered)).Row().Scan(
		&taskID,
		&status,
		&address,
		&name,
		&phone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	id, err := kernel.UUIDFromBytes(taskID[:])
	if err != nil {
		return false, err
	}

	resp.Driver = &TrackedDriver{
		TaskID:     id,
		TaskStatus: task.Status(status).String(),
		Name:       name.String,
		Phone:      phone.String,
	}
	if address != "" {
		resp.DeliveryAddress = address
	}
	return true, nil
}

// loadPosition prefers the newest history row and falls back to the task cache.
func (h TrackOrderQueryHandler) loadPosition(ctx context.Context, taskID kernel.UUID) (*TrackedPosition, error) {
	var (
		lat, lng   sql.NullFloat64
		lastUpdate sql.NullTime
	)

	err := h.db.WithContext(ctx).Raw(`
		SELECT lat, lng, recorded_at
		FROM tracking_logs
		WHERE task_id = ?
		ORDER BY recorded_at DESC
		LIMIT 1
	`, taskID.Bytes()).Row().Scan(&lat, &lng, &lastUpdate)
	if err == nil {
		return &TrackedPosition{Lat: lat.Float64, Lng: lng.Float64, LastUpdate: lastUpdate.Time.UTC()}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = h.db.WithContext(ctx).Raw(`
		SELECT last_lat, last_lng, last_ping_at
		FROM driver_tasks
		WHERE id = ?
	`, taskID.Bytes()).Row().Scan(&lat, &lng, &lastUpdate)
	if err != nil {
		return nil, err
	}
	if !lat.Valid || !lng.Valid || !lastUpdate.Valid {
		return nil, nil
	}

	return &TrackedPosition{Lat: lat.Float64, Lng: lng.Float64, LastUpdate: lastUpdate.Time.UTC()}, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
