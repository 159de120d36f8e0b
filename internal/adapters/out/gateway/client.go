// Package gateway is the HTTP client of the payment processor's transaction
// detail endpoint, the only source trusted for payment outcomes.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"
)

const (
	DefaultTimeout = 12 * time.Second

	detailPath      = "/api/transactiondetail"
	maxResponseSize = 1 << 20
)

type Config struct {
	BaseURL string
	Project string
	APIKey  string
	Timeout time.Duration
}

// Client calls GET {BaseURL}/api/transactiondetail.
type Client struct {
	base    *url.URL
	project string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errs.NewValueIsRequiredError("gateway base url")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("gateway base url", err)
	}
	if cfg.Project == "" {
		return nil, errs.NewValueIsRequiredError("gateway project")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:    base,
		project: cfg.Project,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With("component", "payment_gateway"),
	}, nil
}

type detailResponse struct {
	Transaction struct {
		OrderID       string `json:"order_id"`
		Amount        int64  `json:"amount"`
		Status        string `json:"status"`
		PaymentMethod string `json:"payment_method"`
		Reference     string `json:"reference"`
		CompletedAt   string `json:"completed_at"`
	} `json:"transaction"`
}

// Verify asks the gateway for the current state of the order's payment.
// Transport failures, timeouts, 429 and 5xx answers are GatewayUnavailableError.
// A 404 or a transaction for another order means the gateway has no payment
// for the order/amount pair. Other 4xx answers (bad project or API key) are
// plain errors and are not worth retrying.
func (c *Client) Verify(ctx context.Context, orderNumber string, amount int64) (payment.Verification, error) {
	started := time.Now()
	v, err := c.verify(ctx, orderNumber, amount)
	metrics.GatewayRequestDuration.WithLabelValues(outcome(err)).Observe(time.Since(started).Seconds())
	if err != nil {
		c.logger.WarnContext(ctx, "verification failed",
			"order_number", orderNumber,
			"error", err,
		)
		return payment.Verification{}, err
	}

	c.logger.DebugContext(ctx, "verification received",
		"order_number", orderNumber,
		"status", string(v.Status),
	)
	return v, nil
}

func (c *Client) verify(ctx context.Context, orderNumber string, amount int64) (payment.Verification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.detailURL(orderNumber, amount), nil)
	if err != nil {
		return payment.Verification{}, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return payment.Verification{}, errs.NewGatewayUnavailableErrorWithCause("verify payment", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return payment.Verification{}, errs.NewGatewayUnavailableErrorWithCause("verify payment", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return payment.Verification{}, errs.NewObjectNotFoundError("payment", orderNumber)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return payment.Verification{}, errs.NewGatewayUnavailableErrorWithCause("verify payment",
			fmt.Errorf("gateway answered %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return payment.Verification{}, fmt.Errorf("gateway answered %d: %s", resp.StatusCode, truncate(body))
	}

	var detail detailResponse
	if err = json.Unmarshal(body, &detail); err != nil {
		return payment.Verification{}, errs.NewGatewayUnavailableErrorWithCause("decode gateway response", err)
	}

	tx := detail.Transaction
	if tx.OrderID == "" {
		return payment.Verification{}, errs.NewObjectNotFoundError("payment", orderNumber)
	}
	if tx.OrderID != orderNumber {
		return payment.Verification{}, errs.NewObjectNotFoundErrorWithCause("payment", orderNumber,
			fmt.Errorf("gateway answered for order %q", tx.OrderID))
	}

	v := payment.Verification{
		OrderNumber: tx.OrderID,
		Amount:      tx.Amount,
		Status:      payment.ParseGatewayStatus(tx.Status),
		Reference:   tx.Reference,
		Method:      tx.PaymentMethod,
	}
	if v.Reference == "" {
		v.Reference = tx.OrderID
	}
	if tx.CompletedAt != "" {
		if at, perr := time.Parse(time.RFC3339, tx.CompletedAt); perr == nil {
			at = at.UTC()
			v.CompletedAt = &at
		}
	}

	return v, nil
}

func (c *Client) detailURL(orderNumber string, amount int64) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + detailPath

	q := url.Values{}
	q.Set("project", c.project)
	q.Set("amount", strconv.FormatInt(amount, 10))
	q.Set("order_id", orderNumber)
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	return u.String()
}

func outcome(err error) string {
	var unavailable *errs.GatewayUnavailableError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &unavailable):
		return "unavailable"
	case errors.Is(err, errs.ErrObjectNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
