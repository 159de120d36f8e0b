package http

import (
	"context"
	"log/slog"
	"net/http"

	"fulfillment/internal/adapters/in/http/api"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/domain/model/task"
	"fulfillment/internal/core/domain/model/tracking"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Use cases the server calls. The command and query handlers satisfy them.
type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}
	PaymentReconciler interface {
		Handle(ctx context.Context, cmd commands.ReconcilePaymentCommand) (commands.ReconcilePaymentResult, error)
	}
	PaymentProofSubmitter interface {
		Handle(ctx context.Context, cmd commands.SubmitPaymentProofCommand) (order.PaymentStatus, error)
	}
	PaymentReviewer interface {
		Handle(ctx context.Context, cmd commands.ReviewPaymentCommand) (commands.ReconcilePaymentResult, error)
	}
	TaskDispatcher interface {
		Handle(ctx context.Context, cmd commands.DispatchTaskCommand) (kernel.UUID, error)
	}
	TaskAdvancer interface {
		Handle(ctx context.Context, cmd commands.AdvanceTaskCommand) (commands.TaskProgress, error)
	}
	TaskCompleter interface {
		Handle(ctx context.Context, cmd commands.CompleteTaskCommand) (commands.Delivery, error)
	}
	PingRecorder interface {
		Handle(ctx context.Context, cmd commands.RecordPingCommand) (commands.PingResult, error)
	}
	OrderTracker interface {
		Handle(ctx context.Context, query queries.TrackOrderQuery) (queries.TrackOrderQueryResponse, error)
	}
)

// Handlers groups the use cases served over HTTP.
type Handlers struct {
	CreateOrder        OrderCreator
	ReconcilePayment   PaymentReconciler
	SubmitPaymentProof PaymentProofSubmitter
	ReviewPayment      PaymentReviewer
	DispatchTask       TaskDispatcher
	AdvanceTask        TaskAdvancer
	CompleteTask       TaskCompleter
	RecordPing         PingRecorder
	TrackOrder         OrderTracker
}

// Server implements api.ServerInterface on top of the application use cases.
// It only translates: parsing, command construction and error mapping.
type Server struct {
	handlers Handlers
	// project, when set, must match the project named by webhook payloads.
	project string
	logger  *slog.Logger
}

func NewServer(handlers Handlers, project string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		handlers: handlers,
		project:  project,
		logger:   logger.With("component", "http_server"),
	}
}

var _ api.ServerInterface = (*Server)(nil)

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body api.CreateOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	recipient, err := kernel.NewRecipient(body.Recipient.Name, body.Recipient.Phone, body.Recipient.Address)
	if err != nil {
		return s.respondError(ctx, err)
	}
	customerID, err := idFrom("customer id", body.CustomerId)
	if err != nil {
		return s.respondError(ctx, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, body.Number, customerID, body.TotalAmount, recipient)
	if err != nil {
		return s.respondError(ctx, err)
	}
	cmd = cmd.WithShipment(deref(body.ShippingVendor), deref(body.TrackingNumber), body.EstimatedDelivery)

	if err = s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, api.CreatedOrder{Id: orderID.Bytes(), Number: cmd.OrderNumber()})
}

// ReceivePaymentWebhook handles POST /api/v1/payments/webhook. The payload
// only names the order; the outcome always comes from re-verification.
func (s *Server) ReceivePaymentWebhook(ctx echo.Context) error {
	var body api.PaymentWebhook
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid_request", "Invalid request body")
	}
	if s.project != "" && body.Project != nil && *body.Project != s.project {
		return writeError(ctx, http.StatusBadRequest, "invalid_request", "unknown project")
	}

	return s.reconcile(ctx, payment.Event{
		OrderNumber: body.OrderId,
		Amount:      body.Amount,
		Status:      payment.ParseGatewayStatus(body.Status),
		Source:      payment.SourceWebhook,
	})
}

// CheckPayment handles POST /api/v1/orders/{orderNumber}/payment/check.
func (s *Server) CheckPayment(ctx echo.Context, orderNumber string) error {
	return s.reconcile(ctx, payment.Event{OrderNumber: orderNumber, Source: payment.SourcePoll})
}

func (s *Server) reconcile(ctx echo.Context, event payment.Event) error {
	cmd, err := commands.NewReconcilePaymentCommand(event)
	if err != nil {
		return s.respondError(ctx, err)
	}

	result, err := s.handlers.ReconcilePayment.Handle(ctx.Request().Context(), cmd)
	metrics.ReconciliationsTotal.WithLabelValues(string(event.Source), reconcileOutcome(result, err)).Inc()
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, paymentState(result))
}

// SubmitPaymentProof handles POST /api/v1/orders/{orderNumber}/payment/proof.
func (s *Server) SubmitPaymentProof(ctx echo.Context, orderNumber string) error {
	var body api.PaymentProofRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	cmd, err := commands.NewSubmitPaymentProofCommand(orderNumber, body.Proof)
	if err != nil {
		return s.respondError(ctx, err)
	}

	status, err := s.handlers.SubmitPaymentProof.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, api.PaymentProofResponse{PaymentStatus: status.String()})
}

// ReviewPayment handles POST /api/v1/admin/orders/{orderId}/payment/review.
func (s *Server) ReviewPayment(ctx echo.Context, orderID uuid.UUID) error {
	var body api.PaymentReviewRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	id, err := idFrom("order id", orderID)
	if err != nil {
		return s.respondError(ctx, err)
	}
	cmd, err := commands.NewReviewPaymentCommand(id, body.Approve, deref(body.Reference))
	if err != nil {
		return s.respondError(ctx, err)
	}

	result, err := s.handlers.ReviewPayment.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, paymentState(result))
}

// DispatchTask handles POST /api/v1/admin/dispatch.
func (s *Server) DispatchTask(ctx echo.Context) error {
	var body api.DispatchRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	orderID, err := idFrom("order id", body.OrderId)
	if err != nil {
		return s.respondError(ctx, err)
	}
	driverID, err := idFrom("driver id", body.DriverId)
	if err != nil {
		return s.respondError(ctx, err)
	}

	cmd, err := commands.NewDispatchTaskCommand(orderID, driverID, body.ScheduledDate)
	if err != nil {
		return s.respondError(ctx, err)
	}

	taskID, err := s.handlers.DispatchTask.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, api.DispatchResponse{TaskId: taskID.Bytes()})
}

// AdvanceTask handles POST /api/v1/driver/advance.
func (s *Server) AdvanceTask(ctx echo.Context) error {
	var body api.AdvanceRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	actor, taskID, err := s.driverAndTask(ctx, body.TaskId)
	if err != nil {
		return s.respondError(ctx, err)
	}
	target, err := task.ParseStatus(body.Status)
	if err != nil {
		return s.respondError(ctx, err)
	}

	cmd, err := commands.NewAdvanceTaskCommand(taskID, actor.ID, target)
	if err != nil {
		return s.respondError(ctx, err)
	}

	progress, err := s.handlers.AdvanceTask.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, api.TaskProgress{
		TaskStatus:  progress.TaskStatus.String(),
		OrderStatus: progress.OrderStatus.String(),
	})
}

// CompleteTask handles POST /api/v1/driver/complete.
func (s *Server) CompleteTask(ctx echo.Context) error {
	var body api.CompleteRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	actor, taskID, err := s.driverAndTask(ctx, body.TaskId)
	if err != nil {
		return s.respondError(ctx, err)
	}

	cmd, err := commands.NewCompleteTaskCommand(taskID, actor.ID, body.Photo, deref(body.Signature), deref(body.Notes))
	if err != nil {
		return s.respondError(ctx, err)
	}

	delivery, err := s.handlers.CompleteTask.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, api.DeliveryEvidence{
		Photo:       delivery.Proof.Photo(),
		Signature:   optional(delivery.Proof.Signature()),
		Notes:       optional(delivery.Proof.Notes()),
		DeliveredAt: delivery.DeliveredAt,
		OrderStatus: delivery.OrderStatus.String(),
		Changed:     delivery.Changed,
	})
}

// RecordPing handles POST /api/v1/driver/pings. Throttled samples are
// answered with accepted=false, not an error.
func (s *Server) RecordPing(ctx echo.Context) error {
	var body api.PingRequest
	if err := ctx.Bind(&body); err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid_request", "Invalid request body")
	}

	actor, taskID, err := s.driverAndTask(ctx, body.TaskId)
	if err != nil {
		return s.respondError(ctx, err)
	}

	sample := tracking.Sample{
		Accuracy: body.Accuracy,
		Speed:    body.Speed,
		Heading:  body.Heading,
	}
	if body.Timestamp != nil {
		sample.RecordedAt = body.Timestamp.UTC()
	}

	cmd, err := commands.NewRecordPingCommand(taskID, actor.ID, body.Lat, body.Lng, sample)
	if err != nil {
		metrics.PingsTotal.WithLabelValues("rejected").Inc()
		return s.respondError(ctx, err)
	}

	result, err := s.handlers.RecordPing.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		metrics.PingsTotal.WithLabelValues("rejected").Inc()
		return s.respondError(ctx, err)
	}
	if result.Accepted {
		metrics.PingsTotal.WithLabelValues("accepted").Inc()
	} else {
		metrics.PingsTotal.WithLabelValues("throttled").Inc()
	}

	return ctx.JSON(http.StatusOK, api.PingResponse{Accepted: result.Accepted})
}

// TrackOrder handles GET /api/v1/track/{orderIdentifier}.
func (s *Server) TrackOrder(ctx echo.Context, orderIdentifier string) error {
	query, err := queries.NewTrackOrderQuery(orderIdentifier)
	if err != nil {
		return s.respondError(ctx, err)
	}

	view, err := s.handlers.TrackOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, trackingView(view))
}

func (s *Server) driverAndTask(ctx echo.Context, rawTaskID uuid.UUID) (Actor, kernel.UUID, error) {
	actor, ok := ActorFrom(ctx)
	if !ok {
		return Actor{}, kernel.UUID{}, errUnauthenticated
	}
	taskID, err := idFrom("task id", rawTaskID)
	if err != nil {
		return Actor{}, kernel.UUID{}, err
	}
	return actor, taskID, nil
}

func paymentState(r commands.ReconcilePaymentResult) api.PaymentState {
	state := api.PaymentState{
		OrderNumber:   r.OrderNumber,
		Status:        r.Status.String(),
		PaymentStatus: r.PaymentStatus.String(),
		Changed:       r.Changed,
	}
	if r.GatewayStatus != "" {
		gs := string(r.GatewayStatus)
		state.GatewayStatus = &gs
	}
	return state
}

func reconcileOutcome(r commands.ReconcilePaymentResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case r.Changed:
		return "changed"
	default:
		return "unchanged"
	}
}

func trackingView(v queries.TrackOrderQueryResponse) api.Tracking {
	out := api.Tracking{
		Order: api.TrackedOrder{
			Id:                v.Order.ID.Bytes(),
			Number:            v.Order.Number,
			Status:            v.Order.Status,
			PaymentStatus:     v.Order.PaymentStatus,
			ShippingVendor:    optional(v.Order.ShippingVendor),
			TrackingNumber:    optional(v.Order.TrackingNumber),
			EstimatedDelivery: v.Order.EstimatedDelivery,
			ActualDelivery:    v.Order.ActualDelivery,
		},
		DeliveryAddress: v.DeliveryAddress,
		Message:         v.Message,
	}

	if v.Driver != nil {
		d := &api.TrackedDriver{
			TaskId:     v.Driver.TaskID.Bytes(),
			TaskStatus: v.Driver.TaskStatus,
			Name:       optional(v.Driver.Name),
			Phone:      optional(v.Driver.Phone),
		}
		if p := v.Driver.Position; p != nil {
			lat, lng, at := p.Lat, p.Lng, p.LastUpdate
			d.Lat, d.Lng, d.LastUpdate = &lat, &lng, &at
		}
		out.Driver = d
	}

	return out
}

func idFrom(name string, raw uuid.UUID) (kernel.UUID, error) {
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
