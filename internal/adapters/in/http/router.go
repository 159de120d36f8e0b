package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"fulfillment/internal/adapters/in/http/api"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// NewRouter builds the echo instance serving the API, /health, /metrics and
// the Swagger UI. Every API route except the payment webhook requires a
// bearer token with one of the listed roles.
func NewRouter(server api.ServerInterface, auth *Authenticator, logger *slog.Logger) (*echo.Echo, error) {
	doc, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}
	if err = api.RegisterDoc(doc); err != nil {
		return nil, err
	}
	validator, err := RequestValidator(doc)
	if err != nil {
		return nil, fmt.Errorf("build request validator: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	accessLog := logger.With("component", "http_access")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			accessLog.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	}))
	e.Use(Metrics())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	customer := auth.Require(RoleCustomer, RoleAdmin)
	admin := auth.Require(RoleAdmin)
	driver := auth.Require(RoleDriver)
	anyone := auth.Require()

	// The validator only guards documented operations and runs before auth.
	api.RegisterHandlers(e, server, map[string][]echo.MiddlewareFunc{
		"CreateOrder":           {validator, customer},
		"ReceivePaymentWebhook": {validator},
		"CheckPayment":          {validator, customer},
		"SubmitPaymentProof":    {validator, customer},
		"ReviewPayment":         {validator, admin},
		"DispatchTask":          {validator, admin},
		"AdvanceTask":           {validator, driver},
		"CompleteTask":          {validator, driver},
		"RecordPing":            {validator, driver},
		"TrackOrder":            {validator, anyone},
	})

	return e, nil
}
