package submit

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrasite/leadform/internal/form"
)

func samplePayload() form.Payload {
	return form.Payload{
		Services:      []string{"landing"},
		Description:   validDescription,
		Budget:        "30-50k",
		Name:          "Anna",
		ContactMethod: form.ContactTelegram,
		Telegram:      "@anna_k",
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPTransport_Success(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submit-form", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "leadform/test", r.Header.Get("User-Agent"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{Endpoint: srv.URL + "/submit-form", Timeout: 5 * time.Second, Version: "test"})
	require.NoError(t, tr.Send(context.Background(), samplePayload()))

	assert.Equal(t, "@anna_k", got["telegram"])
	assert.Equal(t, "telegram", got["contact_method"])
	assert.NotContains(t, got, "email")
	assert.NotContains(t, got, "phone")
	assert.Len(t, got, 6)
}

func TestHTTPTransport_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": " Duplicate request, please wait "})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{Endpoint: srv.URL, Timeout: 5 * time.Second, Retries: 2})
	err := tr.Send(context.Background(), samplePayload())

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadRequest, te.Status)
	assert.Equal(t, "Duplicate request, please wait", te.Message)
	assert.Equal(t, "Duplicate request, please wait", FailureMessage(err))
}

func TestHTTPTransport_NonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{Endpoint: srv.URL, Timeout: 5 * time.Second})
	err := tr.Send(context.Background(), samplePayload())

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusInternalServerError, te.Status)
	assert.Empty(t, te.Message)
	assert.Equal(t, MsgFailure, FailureMessage(err))
}

func TestHTTPTransport_RetriesGatewayErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{Endpoint: srv.URL, Timeout: 5 * time.Second, Retries: 2})
	require.NoError(t, tr.Send(context.Background(), samplePayload()))
	assert.EqualValues(t, 2, calls.Load())
}

func TestHTTPTransport_DoesNotRetryRejections(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad"})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{Endpoint: srv.URL, Timeout: 5 * time.Second, Retries: 3})
	require.Error(t, tr.Send(context.Background(), samplePayload()))
	assert.EqualValues(t, 1, calls.Load())
}

func TestHTTPTransport_NetworkFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	tr := NewHTTPTransport(HTTPConfig{Endpoint: url, Timeout: time.Second})
	err := tr.Send(context.Background(), samplePayload())

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
	assert.NotNil(t, errors.Unwrap(te))
	assert.Equal(t, MsgFailure, FailureMessage(err))
}

func TestHTTPTransport_DoesNotRetryAfterTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	tr := NewHTTPTransport(HTTPConfig{Endpoint: srv.URL, Timeout: 100 * time.Millisecond, Retries: 2})
	require.Error(t, tr.Send(context.Background(), samplePayload()))
	assert.EqualValues(t, 1, calls.Load())
}

func TestRetryCondition(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "refused dial", err: &url.Error{Op: "Post", URL: "http://x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}}, want: true},
		{name: "read after send", err: &url.Error{Op: "Post", URL: "http://x", Err: &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset")}}, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
		{name: "other", err: errors.New("EOF"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryCondition(nil, tt.err))
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	assert.Equal(t, "submit failed with status 400: dup", (&TransportError{Status: 400, Message: "dup"}).Error())
	assert.Equal(t, "submit failed with status 502", (&TransportError{Status: 502}).Error())
	assert.Equal(t, "submit failed: eof", (&TransportError{Err: errors.New("eof")}).Error())
	assert.Equal(t, "submit failed", (&TransportError{}).Error())
}
