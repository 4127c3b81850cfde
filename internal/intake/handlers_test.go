package intake

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/leads"
	"github.com/terrasite/leadform/internal/nats"
	"github.com/terrasite/leadform/internal/submit"
)

type fakeService struct {
	processErr error
	listErr    error
	got        []form.Payload
	stored     []leads.Lead
	panics     bool
}

func (f *fakeService) Process(_ context.Context, p form.Payload) (leads.Lead, error) {
	if f.panics {
		panic("boom")
	}
	f.got = append(f.got, p)
	if f.processErr != nil {
		return leads.Lead{}, f.processErr
	}
	l := leads.Lead{ID: "lead1", Timestamp: time.Now(), Payload: p}
	f.stored = append(f.stored, l)
	return l, nil
}

func (f *fakeService) List(context.Context) ([]leads.Lead, error) {
	return f.stored, f.listErr
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func serve(h *Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(rec, req)
	return rec
}

const validBody = `{"services":["landing-page"],"description":"Landing page for a dental clinic with online booking","budget":"50-150k","name":"Anna","contact_method":"telegram","telegram":"@anna_k"}`

func TestSubmitForm(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		processErr error
		wantStatus int
		wantResp   SubmitResponse
	}{
		{
			name:       "accepted",
			body:       validBody,
			wantStatus: http.StatusOK,
			wantResp:   SubmitResponse{Success: true, Message: leads.MsgAccepted},
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantResp:   SubmitResponse{Error: MsgInvalidJSON},
		},
		{
			name:       "rejected",
			body:       validBody,
			processErr: &leads.RejectedError{Reason: leads.MsgDuplicate},
			wantStatus: http.StatusBadRequest,
			wantResp:   SubmitResponse{Error: leads.MsgDuplicate},
		},
		{
			name:       "internal failure",
			body:       validBody,
			processErr: errors.New("stream unavailable"),
			wantStatus: http.StatusInternalServerError,
			wantResp:   SubmitResponse{Error: MsgInternal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{processErr: tt.processErr}
			rec := serve(NewHandler(svc, ""), http.MethodPost, "/submit-form", tt.body, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantResp, decode[SubmitResponse](t, rec))
		})
	}
}

func TestSubmitForm_DecodesPayload(t *testing.T) {
	svc := &fakeService{}
	rec := serve(NewHandler(svc, ""), http.MethodPost, "/submit-form", validBody, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, svc.got, 1)
	assert.Equal(t, form.ContactTelegram, svc.got[0].ContactMethod)
	assert.Equal(t, "@anna_k", svc.got[0].Telegram)
	assert.Equal(t, []string{"landing-page"}, svc.got[0].Services)
}

func TestSubmitForm_WrongMethod(t *testing.T) {
	rec := serve(NewHandler(&fakeService{}, ""), http.MethodGet, "/submit-form", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAdminLeads(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, "s3cret")

	rec := serve(h, http.MethodGet, "/admin/leads", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodGet, "/admin/leads", "", http.Header{AdminKeyHeader: {"wrong"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodGet, "/admin/leads", "", http.Header{AdminKeyHeader: {"s3cret"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	serve(h, http.MethodPost, "/submit-form", validBody, nil)
	rec = serve(h, http.MethodGet, "/admin/leads", "", http.Header{AdminKeyHeader: {"s3cret"}})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]leads.Lead](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "lead1", got[0].ID)
	assert.Equal(t, "Anna", got[0].Name)
}

func TestAdminLeads_OpenWithoutKey(t *testing.T) {
	rec := serve(NewHandler(&fakeService{}, ""), http.MethodGet, "/admin/leads", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminLeads_ListFailure(t *testing.T) {
	rec := serve(NewHandler(&fakeService{listErr: errors.New("down")}, ""), http.MethodGet, "/admin/leads", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	h := NewHandler(&fakeService{}, "")
	at := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return at }

	rec := serve(h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Timestamp.Equal(at))
}

func TestCORS_Preflight(t *testing.T) {
	rec := serve(NewHandler(&fakeService{}, ""), http.MethodOptions, "/submit-form", "",
		http.Header{"Origin": {"https://terrasite.example"}})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://terrasite.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), AdminKeyHeader)
}

func TestRecover(t *testing.T) {
	rec := serve(NewHandler(&fakeService{panics: true}, ""), http.MethodPost, "/submit-form", validBody, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, MsgInternal, decode[SubmitResponse](t, rec).Error)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, leads.Lead) error { return nil }

// TestEndToEnd posts through the wizard's HTTP transport into a real
// intake server backed by an embedded JetStream store.
func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	e, err := nats.Open(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	svc := leads.NewService(leads.NewStore(e.JS, e.Stream), nopNotifier{}, time.Minute)
	srv := httptest.NewServer(NewRouter(NewHandler(svc, "")))
	t.Cleanup(srv.Close)

	transport := submit.NewHTTPTransport(submit.HTTPConfig{
		Endpoint: srv.URL + "/submit-form",
		Timeout:  5 * time.Second,
	})

	p := form.Payload{
		Services:      []string{"online-store"},
		Description:   "Online store for handmade ceramics with delivery across the country",
		Budget:        "150-300k",
		Name:          "Oleg",
		ContactMethod: form.ContactEmail,
		Email:         "oleg@example.com",
	}
	require.NoError(t, transport.Send(ctx, p))

	err = transport.Send(ctx, p)
	var te *submit.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusBadRequest, te.Status)
	assert.Equal(t, leads.MsgDuplicate, submit.FailureMessage(err))

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "oleg@example.com", stored[0].Email)
}
