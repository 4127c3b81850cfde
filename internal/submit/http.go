package submit

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/logger"
)

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Endpoint string
	Timeout  time.Duration
	Retries  int
	Version  string
}

// HTTPTransport posts payloads as JSON.
type HTTPTransport struct {
	client   *resty.Client
	endpoint string
}

// errorBody is the failure shape of the intake endpoint.
type errorBody struct {
	Error string `json:"error"`
}

// NewHTTPTransport builds a transport for cfg.
func NewHTTPTransport(cfg HTTPConfig) *HTTPTransport {
	return &HTTPTransport{
		client:   NewClient(cfg.Timeout, cfg.Retries, cfg.Version),
		endpoint: cfg.Endpoint,
	}
}

// NewClient returns a JSON resty client that logs through the package
// logger and retries only faults where the lead certainly was not stored.
func NewClient(timeout time.Duration, retries int, version string) *resty.Client {
	if version == "" {
		version = "dev"
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "leadform/"+version).
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetLogger(logger.Printf{})

	client.AddRetryCondition(retryCondition)
	return client
}

// retryCondition retries failed dials and gateway failures. Any other
// error may come after the endpoint stored the lead, and a resend would hit
// its duplicate check, so those are final.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		var opErr *net.OpError
		return errors.As(err, &opErr) && opErr.Op == "dial"
	}
	if r == nil {
		return false
	}
	switch r.StatusCode() {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Send posts p to the endpoint. Any non-2xx answer is a *TransportError.
func (t *HTTPTransport) Send(ctx context.Context, p form.Payload) error {
	var body errorBody
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(p).
		SetError(&body).
		Post(t.endpoint)
	if err != nil {
		te := &TransportError{Err: err}
		if resp != nil && resp.StatusCode() != 0 {
			te.Status = resp.StatusCode()
		}
		return te
	}

	if resp.IsSuccess() {
		logger.Debug("Endpoint accepted lead: %s", resp.Status())
		return nil
	}

	return &TransportError{
		Status:  resp.StatusCode(),
		Message: strings.TrimSpace(body.Error),
	}
}
