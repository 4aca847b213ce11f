// Package client implements port.AdminStore over the remote tontine data
// API. Every call goes through a bulkhead and a circuit breaker; reads are
// additionally retried with exponential backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/resilience"
	"github.com/tontinehub/tontine-admin-bfa/internal/port"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const serviceName = "data-api"

var tracer = otel.Tracer("client")

var _ port.AdminStore = (*DataClient)(nil)

// DataClient talks to the tontine data API.
type DataClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewDataClient creates a new DataClient.
func NewDataClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *DataClient {
	return &DataClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:        cfg,
		logger:     logger,
	}
}

// call describes one round trip to the data API.
type call struct {
	op       string // span name suffix
	method   string
	path     string
	resource string // for ErrNotFound
	id       string
	body     any
	out      any
}

// do executes c with tracing, bulkhead, circuit breaker and, for GETs,
// retry. Errors come back as domain error types.
func (d *DataClient) do(ctx context.Context, c call) error {
	ctx, span := tracer.Start(ctx, "DataClient."+c.op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", c.method),
		attribute.String("http.route", c.path),
	)

	err := d.bulkhead.Do(ctx, func() error {
		_, err := d.cb.Execute(func() (any, error) {
			if c.method == http.MethodGet {
				return nil, resilience.RetryWithBackoff(ctx, d.cfg, func() error {
					return d.roundTrip(ctx, c)
				})
			}
			return nil, resilience.StripPermanent(d.roundTrip(ctx, c))
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		return d.translate(c, err)
	}
	return nil
}

func (d *DataClient) roundTrip(ctx context.Context, c call) error {
	var body io.Reader
	if c.body != nil {
		buf, err := json.Marshal(c.body)
		if err != nil {
			return resilience.Permanent(fmt.Errorf("marshaling request: %w", err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, d.baseURL+c.path, body)
	if err != nil {
		return resilience.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Error("data api: request failed",
			zap.String("method", c.method),
			zap.String("path", c.path),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.logger.Warn("data api: non-2xx response",
			zap.String("method", c.method),
			zap.String("path", c.path),
			zap.Int("status", resp.StatusCode),
		)
	} else {
		d.logger.Debug("data api: request OK",
			zap.String("method", c.method),
			zap.String("path", c.path),
			zap.Int("status", resp.StatusCode),
		)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resilience.Permanent(&domain.ErrNotFound{Resource: c.resource, ID: c.id})
	case resp.StatusCode == http.StatusConflict:
		return resilience.Permanent(&domain.ErrConflict{Message: remoteMessage(resp.Body, "conflict")})
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return resilience.Permanent(&domain.ErrValidation{Field: "request", Message: remoteMessage(resp.Body, "rejected by data API")})
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return resilience.Permanent(fmt.Errorf("data API returned status %d", resp.StatusCode))
	case resp.StatusCode >= 300:
		return fmt.Errorf("data API returned status %d", resp.StatusCode)
	}

	if c.out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(c.out); err != nil {
		return resilience.Permanent(fmt.Errorf("decoding %s response: %w", c.op, err))
	}
	return nil
}

func (d *DataClient) translate(c call, err error) error {
	if resilience.IsCallerError(err) {
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: serviceName}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.ErrTimeout{Operation: c.op}
	}
	return &domain.ErrExternalService{Service: serviceName, Err: err}
}

// remoteMessage extracts {"message": "..."} from an error body.
func remoteMessage(r io.Reader, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 4096)).Decode(&payload); err != nil {
		return fallback
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != "" {
		return payload.Error
	}
	return fallback
}
