// Package api holds the HTTP contract of the fulfillment service: the
// embedded OpenAPI document, the request/response types it describes and the
// echo glue that binds path parameters before calling a ServerInterface.
package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var openapiDoc []byte

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Recipient struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type CreateOrderRequest struct {
	Number            string     `json:"number"`
	CustomerId        uuid.UUID  `json:"customerId"` //nolint:revive // contract field name
	TotalAmount       int64      `json:"totalAmount"`
	Recipient         Recipient  `json:"recipient"`
	ShippingVendor    *string    `json:"shippingVendor,omitempty"`
	TrackingNumber    *string    `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
}

type CreatedOrder struct {
	Id     uuid.UUID `json:"id"` //nolint:revive // contract field name
	Number string    `json:"number"`
}

// PaymentWebhook is what the gateway posts. Its content is a hint only.
type PaymentWebhook struct {
	OrderId string  `json:"order_id"` //nolint:revive // contract field name
	Amount  int64   `json:"amount"`
	Status  string  `json:"status"`
	Project *string `json:"project,omitempty"`
}

type PaymentState struct {
	OrderNumber   string  `json:"orderNumber"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
	GatewayStatus *string `json:"gatewayStatus,omitempty"`
	Changed       bool    `json:"changed"`
}

type PaymentProofRequest struct {
	Proof string `json:"proof"`
}

type PaymentProofResponse struct {
	PaymentStatus string `json:"paymentStatus"`
}

type PaymentReviewRequest struct {
	Approve   bool    `json:"approve"`
	Reference *string `json:"reference,omitempty"`
}

type DispatchRequest struct {
	OrderId       uuid.UUID  `json:"orderId"`  //nolint:revive // contract field name
	DriverId      uuid.UUID  `json:"driverId"` //nolint:revive // contract field name
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
}

type DispatchResponse struct {
	TaskId uuid.UUID `json:"taskId"` //nolint:revive // contract field name
}

type AdvanceRequest struct {
	TaskId uuid.UUID `json:"taskId"` //nolint:revive // contract field name
	Status string    `json:"status"`
}

type TaskProgress struct {
	TaskStatus  string `json:"taskStatus"`
	OrderStatus string `json:"orderStatus"`
}

type CompleteRequest struct {
	TaskId    uuid.UUID `json:"taskId"` //nolint:revive // contract field name
	Photo     string    `json:"photo"`
	Signature *string   `json:"signature,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

type DeliveryEvidence struct {
	Photo       string    `json:"photo"`
	Signature   *string   `json:"signature,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	DeliveredAt time.Time `json:"deliveredAt"`
	OrderStatus string    `json:"orderStatus"`
	Changed     bool      `json:"changed"`
}

type PingRequest struct {
	TaskId    uuid.UUID  `json:"taskId"` //nolint:revive // contract field name
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Heading   *float64   `json:"heading,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type PingResponse struct {
	Accepted bool `json:"accepted"`
}

type TrackedOrder struct {
	Id                uuid.UUID  `json:"id"` //nolint:revive // contract field name
	Number            string     `json:"number"`
	Status            string     `json:"status"`
	PaymentStatus     string     `json:"paymentStatus"`
	ShippingVendor    *string    `json:"shippingVendor,omitempty"`
	TrackingNumber    *string    `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time `json:"actualDelivery,omitempty"`
}

type TrackedDriver struct {
	TaskId     uuid.UUID  `json:"taskId"` //nolint:revive // contract field name
	TaskStatus string     `json:"taskStatus"`
	Name       *string    `json:"name,omitempty"`
	Phone      *string    `json:"phone,omitempty"`
	Lat        *float64   `json:"lat,omitempty"`
	Lng        *float64   `json:"lng,omitempty"`
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`
}

type Tracking struct {
	Order           TrackedOrder   `json:"order"`
	Driver          *TrackedDriver `json:"driver"`
	DeliveryAddress string         `json:"deliveryAddress"`
	Message         string         `json:"message"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context) error
	// (POST /api/v1/payments/webhook)
	ReceivePaymentWebhook(ctx echo.Context) error
	// (POST /api/v1/orders/{orderNumber}/payment/check)
	CheckPayment(ctx echo.Context, orderNumber string) error
	// (POST /api/v1/orders/{orderNumber}/payment/proof)
	SubmitPaymentProof(ctx echo.Context, orderNumber string) error
	// (POST /api/v1/admin/orders/{orderId}/payment/review)
	ReviewPayment(ctx echo.Context, orderId uuid.UUID) error //nolint:revive // contract parameter name
	// (POST /api/v1/admin/dispatch)
	DispatchTask(ctx echo.Context) error
	// (POST /api/v1/driver/advance)
	AdvanceTask(ctx echo.Context) error
	// (POST /api/v1/driver/complete)
	CompleteTask(ctx echo.Context) error
	// (POST /api/v1/driver/pings)
	RecordPing(ctx echo.Context) error
	// (GET /api/v1/track/{orderIdentifier})
	TrackOrder(ctx echo.Context, orderIdentifier string) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

func (w *ServerInterfaceWrapper) ReceivePaymentWebhook(ctx echo.Context) error {
	return w.Handler.ReceivePaymentWebhook(ctx)
}

func (w *ServerInterfaceWrapper) CheckPayment(ctx echo.Context) error {
	var orderNumber string
	if err := bindPath(ctx, "orderNumber", &orderNumber); err != nil {
		return err
	}
	return w.Handler.CheckPayment(ctx, orderNumber)
}

func (w *ServerInterfaceWrapper) SubmitPaymentProof(ctx echo.Context) error {
	var orderNumber string
	if err := bindPath(ctx, "orderNumber", &orderNumber); err != nil {
		return err
	}
	return w.Handler.SubmitPaymentProof(ctx, orderNumber)
}

func (w *ServerInterfaceWrapper) ReviewPayment(ctx echo.Context) error {
	var orderID uuid.UUID
	if err := bindPath(ctx, "orderId", &orderID); err != nil {
		return err
	}
	return w.Handler.ReviewPayment(ctx, orderID)
}

func (w *ServerInterfaceWrapper) DispatchTask(ctx echo.Context) error {
	return w.Handler.DispatchTask(ctx)
}

func (w *ServerInterfaceWrapper) AdvanceTask(ctx echo.Context) error {
	return w.Handler.AdvanceTask(ctx)
}

func (w *ServerInterfaceWrapper) CompleteTask(ctx echo.Context) error {
	return w.Handler.CompleteTask(ctx)
}

func (w *ServerInterfaceWrapper) RecordPing(ctx echo.Context) error {
	return w.Handler.RecordPing(ctx)
}

func (w *ServerInterfaceWrapper) TrackOrder(ctx echo.Context) error {
	var orderIdentifier string
	if err := bindPath(ctx, "orderIdentifier", &orderIdentifier); err != nil {
		return err
	}
	return w.Handler.TrackOrder(ctx, orderIdentifier)
}

func bindPath(ctx echo.Context, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return nil
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter. Route-level
// middleware is looked up by operation id.
func RegisterHandlers(router EchoRouter, si ServerInterface, m map[string][]echo.MiddlewareFunc) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.POST("/api/v1/orders", w.CreateOrder, m["CreateOrder"]...)
	router.POST("/api/v1/payments/webhook", w.ReceivePaymentWebhook, m["ReceivePaymentWebhook"]...)
	router.POST("/api/v1/orders/:orderNumber/payment/check", w.CheckPayment, m["CheckPayment"]...)
	router.POST("/api/v1/orders/:orderNumber/payment/proof", w.SubmitPaymentProof, m["SubmitPaymentProof"]...)
	router.POST("/api/v1/admin/orders/:orderId/payment/review", w.ReviewPayment, m["ReviewPayment"]...)
	router.POST("/api/v1/admin/dispatch", w.DispatchTask, m["DispatchTask"]...)
	router.POST("/api/v1/driver/advance", w.AdvanceTask, m["AdvanceTask"]...)
	router.POST("/api/v1/driver/complete", w.CompleteTask, m["CompleteTask"]...)
	router.POST("/api/v1/driver/pings", w.RecordPing, m["RecordPing"]...)
	router.GET("/api/v1/track/:orderIdentifier", w.TrackOrder, m["TrackOrder"]...)
}

// GetSwagger parses and validates the embedded OpenAPI document.
func GetSwagger() (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openapiDoc)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

type swaggerDoc struct {
	doc string
}

func (d swaggerDoc) ReadDoc() string {
	return d.doc
}

var registerDocOnce sync.Once

// RegisterDoc publishes doc to the swag registry read by the /swagger UI.
// Only the first call registers.
func RegisterDoc(doc *openapi3.T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode openapi document: %w", err)
	}

	registerDocOnce.Do(func() {
		swag.Register(swag.Name, swaggerDoc{doc: string(raw)})
	})
	return nil
}
