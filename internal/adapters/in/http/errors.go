package http

import (
	"errors"
	"net/http"
	"strconv"

	"fulfillment/internal/adapters/in/http/api"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// retryAfterSeconds is sent with 503 answers caused by the payment gateway.
const retryAfterSeconds = 30

func writeError(c echo.Context, status int, code, message string) error {
	return c.JSON(status, api.Error{Code: code, Message: message})
}

// respondError maps the error taxonomy onto HTTP. Unknown errors are logged
// and hidden behind a generic 500.
func (s *Server) respondError(c echo.Context, err error) error {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		return writeError(c, status, code, "internal error")
	}
	if status == http.StatusServiceUnavailable {
		c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	return writeError(c, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, errs.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, errs.ErrTerminalState):
		return http.StatusConflict, "terminal_state"
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusForbidden, "unauthorized"
	case errors.Is(err, errs.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable, "gateway_unavailable"
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
