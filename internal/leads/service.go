package leads

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/logger"
)

// DefaultDuplicateWindow is how long a contact is blocked after a lead.
const DefaultDuplicateWindow = 5 * time.Minute

// Rejection texts returned to the submitter.
const (
	MsgUnknownMethod = "Choose a contact method"
	MsgDuplicate     = "A request with these contact details was sent recently"
	MsgAccepted      = "Request sent successfully"
)

// RejectedError is a submission refused for a reason the submitter can fix.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

func reject(reason string) error {
	return &RejectedError{Reason: reason}
}

// IsRejected reports whether err is a RejectedError and returns its reason.
func IsRejected(err error) (string, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}

// Notifier announces a new lead.
type Notifier interface {
	Notify(ctx context.Context, lead Lead) error
}

// Service accepts submissions: it checks the contact method, rejects
// duplicates, stores the lead and sends a notification.
type Service struct {
	repo     Repository
	notifier Notifier
	window   time.Duration
	now      func() time.Time
	policy   *bluemonday.Policy

	// Serializes the duplicate check with the insert.
	mu sync.Mutex
}

// NewService creates a Service. A non-positive window uses DefaultDuplicateWindow.
func NewService(repo Repository, notifier Notifier, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		window:   window,
		now:      time.Now,
		policy:   bluemonday.StrictPolicy(),
	}
}

// SetClock replaces the time source. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Process validates and stores p. Refusals are *RejectedError; anything
// else is an internal failure. A failed notification is logged and
// recorded but does not fail the submission.
func (s *Service) Process(ctx context.Context, p form.Payload) (Lead, error) {
	p = s.sanitize(p)
	if err := checkContact(p); err != nil {
		return Lead{}, err
	}

	s.mu.Lock()
	dup, err := s.isDuplicate(ctx, p)
	if err != nil {
		s.mu.Unlock()
		return Lead{}, fmt.Errorf("duplicate check: %w", err)
	}
	if dup {
		s.mu.Unlock()
		logger.Info("Rejected duplicate %s lead", p.ContactMethod)
		return Lead{}, reject(MsgDuplicate)
	}
	lead, err := s.repo.Add(ctx, p, s.now())
	s.mu.Unlock()
	if err != nil {
		return Lead{}, fmt.Errorf("store lead: %w", err)
	}

	logger.Info("Stored lead %s: %s (%s)", lead.ID, lead.Name, contactSummary(lead.Payload))

	notifyErr := s.notifier.Notify(ctx, lead)
	if notifyErr != nil {
		logger.Error("Notification for lead %s failed: %v", lead.ID, notifyErr)
	}
	if err := s.repo.MarkNotified(ctx, lead, s.now(), notifyErr); err != nil {
		logger.Warn("Could not record notification for lead %s: %v", lead.ID, err)
	}
	return lead, nil
}

// List returns every lead, oldest first.
func (s *Service) List(ctx context.Context) ([]Lead, error) {
	return s.repo.List(ctx)
}

// checkContact requires a known method and its contact value.
func checkContact(p form.Payload) error {
	switch p.ContactMethod {
	case form.ContactWhatsApp:
		if p.Phone == "" {
			return reject("Enter your WhatsApp number")
		}
	case form.ContactTelegram:
		if p.Telegram == "" {
			return reject("Enter your Telegram username")
		}
	case form.ContactPhone:
		if p.PhoneNumber == "" || p.CallTime == "" {
			return reject("Enter a phone number and a time to call")
		}
	case form.ContactEmail:
		if p.Email == "" {
			return reject("Enter your email address")
		}
	default:
		return reject(MsgUnknownMethod)
	}
	return nil
}

// isDuplicate reports whether a lead with the same method and contact
// value (case-insensitive, trimmed) arrived within the window.
func (s *Service) isDuplicate(ctx context.Context, p form.Payload) (bool, error) {
	value := normalizeContact(p.ContactValue())
	if value == "" {
		return false, nil
	}

	existing, err := s.repo.ByMethod(ctx, p.ContactMethod)
	if err != nil {
		return false, err
	}

	now := s.now()
	for _, l := range existing {
		if now.Sub(l.Timestamp) >= s.window {
			continue
		}
		if l.ContactMethod == p.ContactMethod && normalizeContact(l.ContactValue()) == value {
			return true, nil
		}
	}
	return false, nil
}

func normalizeContact(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// maxSanitizePasses bounds the sanitize/unescape loop.
const maxSanitizePasses = 4

// clean strips markup from v and returns plain text. Entities are decoded
// and the result sanitized again until it stops changing, so encoded markup
// cannot come back as live markup. If it never settles, the escaped form
// is kept.
func (s *Service) clean(v string) string {
	for range maxSanitizePasses {
		sanitized := s.policy.Sanitize(v)
		next := html.UnescapeString(sanitized)
		if next == v {
			return strings.TrimSpace(next)
		}
		v = next
	}
	return strings.TrimSpace(s.policy.Sanitize(v))
}

// sanitize strips markup from every free-text field.
func (s *Service) sanitize(p form.Payload) form.Payload {
	clean := s.clean
	services := make([]string, 0, len(p.Services))
	for _, svc := range p.Services {
		if v := clean(svc); v != "" {
			services = append(services, v)
		}
	}
	if len(services) == 0 {
		services = nil
	}
	p.Services = services
	p.Description = clean(p.Description)
	p.Budget = clean(p.Budget)
	p.Name = clean(p.Name)
	p.ContactMethod = form.ContactMethod(clean(string(p.ContactMethod)))
	p.Phone = clean(p.Phone)
	p.Telegram = clean(p.Telegram)
	p.PhoneNumber = clean(p.PhoneNumber)
	p.CallTime = clean(p.CallTime)
	p.Email = clean(p.Email)
	return p
}

// contactSummary renders the contact line used in logs and notifications.
func contactSummary(p form.Payload) string {
	switch p.ContactMethod {
	case form.ContactPhone:
		return fmt.Sprintf("%s: %s at %s", p.ContactMethod.Label(), p.PhoneNumber, p.CallTime)
	default:
		return fmt.Sprintf("%s: %s", p.ContactMethod.Label(), p.ContactValue())
	}
}

// ContactSummary is the human-readable contact line of a lead.
func (l Lead) ContactSummary() string {
	return contactSummary(l.Payload)
}
