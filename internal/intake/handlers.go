package intake

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/leads"
	"github.com/terrasite/leadform/internal/logger"
)

// Response texts.
const (
	MsgInvalidJSON = "Invalid request body"
	MsgInternal    = "Internal server error"
	MsgForbidden   = "Invalid admin key"
)

// AdminKeyHeader carries the admin key on /admin requests.
const AdminKeyHeader = "X-Admin-Key"

// LeadService is what the handlers need from leads.Service.
type LeadService interface {
	Process(ctx context.Context, p form.Payload) (leads.Lead, error)
	List(ctx context.Context) ([]leads.Lead, error)
}

// SubmitResponse is the body of every /submit-form answer.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler serves the intake endpoints.
type Handler struct {
	svc      LeadService
	adminKey string
	now      func() time.Time
}

// NewHandler creates a Handler. An empty adminKey leaves /admin open.
func NewHandler(svc LeadService, adminKey string) *Handler {
	return &Handler{svc: svc, adminKey: adminKey, now: time.Now}
}

// SubmitForm handles POST /submit-form
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var p form.Payload
	if err := ParseJSONBody(w, r, &p); err != nil {
		logger.Debug("Rejected body: %v", err)
		ErrorResponse(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	lead, err := h.svc.Process(r.Context(), p)
	if err != nil {
		if reason, ok := leads.IsRejected(err); ok {
			ErrorResponse(w, http.StatusBadRequest, reason)
			return
		}
		logger.Error("Failed to process submission: %v", err)
		ErrorResponse(w, http.StatusInternalServerError, MsgInternal)
		return
	}

	logger.Info("New lead processed: %s (%s)", lead.Name, lead.ContactSummary())
	JSONResponse(w, http.StatusOK, SubmitResponse{Success: true, Message: leads.MsgAccepted})
}

// AdminLeads handles GET /admin/leads
func (h *Handler) AdminLeads(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		ErrorResponse(w, http.StatusForbidden, MsgForbidden)
		return
	}

	all, err := h.svc.List(r.Context())
	if err != nil {
		logger.Error("Failed to list leads: %v", err)
		ErrorResponse(w, http.StatusInternalServerError, MsgInternal)
		return
	}
	if all == nil {
		all = []leads.Lead{}
	}
	JSONResponse(w, http.StatusOK, all)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	JSONResponse(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: h.now()})
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.adminKey == "" {
		return true
	}
	got := r.Header.Get(AdminKeyHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.adminKey)) == 1
}
