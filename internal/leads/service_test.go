package leads

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrasite/leadform/internal/form"
)

type recordingNotifier struct {
	mu    sync.Mutex
	leads []Lead
	err   error
}

func (r *recordingNotifier) Notify(_ context.Context, lead Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, lead)
	return r.err
}

func newTestService(t *testing.T, notifier Notifier) (*Service, *Store, *time.Time) {
	t.Helper()
	store := openStore(t)
	svc := NewService(store, notifier, 5*time.Minute)
	now := base
	svc.SetClock(func() time.Time { return now })
	return svc, store, &now
}

func TestService_Process(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc, store, _ := newTestService(t, notifier)

	lead, err := svc.Process(ctx, telegramLead("@anna_k"))
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
	assert.True(t, lead.Timestamp.Equal(base))

	require.Len(t, notifier.leads, 1)
	assert.Equal(t, lead.ID, notifier.leads[0].ID)

	stored, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].NotifiedAt)
}

func TestService_RejectsMissingContact(t *testing.T) {
	tests := []struct {
		name    string
		payload form.Payload
		reason  string
	}{
		{
			name:    "no method",
			payload: form.Payload{Name: "Anna"},
			reason:  MsgUnknownMethod,
		},
		{
			name:    "unknown method",
			payload: form.Payload{Name: "Anna", ContactMethod: "pigeon"},
			reason:  MsgUnknownMethod,
		},
		{
			name:    "whatsapp without phone",
			payload: form.Payload{ContactMethod: form.ContactWhatsApp, Telegram: "@anna_k"},
			reason:  "Enter your WhatsApp number",
		},
		{
			name:    "telegram without handle",
			payload: form.Payload{ContactMethod: form.ContactTelegram},
			reason:  "Enter your Telegram username",
		},
		{
			name:    "phone without call time",
			payload: form.Payload{ContactMethod: form.ContactPhone, PhoneNumber: "+79991234567"},
			reason:  "Enter a phone number and a time to call",
		},
		{
			name:    "email that is only markup",
			payload: form.Payload{ContactMethod: form.ContactEmail, Email: "<b></b>"},
			reason:  "Enter your email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &recordingNotifier{}
			svc := NewService(&memRepo{}, notifier, time.Minute)

			_, err := svc.Process(context.Background(), tt.payload)
			reason, ok := IsRejected(err)
			require.True(t, ok, "expected rejection, got %v", err)
			assert.Equal(t, tt.reason, reason)
			assert.Empty(t, notifier.leads)
		})
	}
}

func TestService_DuplicateWindow(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc, store, now := newTestService(t, notifier)

	_, err := svc.Process(ctx, telegramLead("@Anna_K"))
	require.NoError(t, err)

	// Same contact, different case and padding, inside the window.
	*now = base.Add(4 * time.Minute)
	_, err = svc.Process(ctx, telegramLead("  @anna_k "))
	reason, ok := IsRejected(err)
	require.True(t, ok)
	assert.Equal(t, MsgDuplicate, reason)

	// Another contact is fine.
	_, err = svc.Process(ctx, telegramLead("@boris_b"))
	require.NoError(t, err)

	// Same value under another method is not a duplicate.
	_, err = svc.Process(ctx, emailLead("@anna_k@example.com"))
	require.NoError(t, err)

	// The window has passed.
	*now = base.Add(5 * time.Minute)
	_, err = svc.Process(ctx, telegramLead("@anna_k"))
	require.NoError(t, err)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Len(t, notifier.leads, 4)
}

func TestService_NotificationFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc, store, _ := newTestService(t, notifier)

	lead, err := svc.Process(ctx, emailLead("oleg@example.com"))
	require.NoError(t, err)

	stored, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, lead.ID, stored[0].ID)
	assert.Nil(t, stored[0].NotifiedAt)
}

func TestService_Sanitizes(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, &recordingNotifier{}, time.Minute)

	p := telegramLead("@anna_k")
	p.Name = "Anna <script>alert(1)</script>"
	p.Description = "Shop for <b>tea & coffee</b>"
	p.Services = []string{"<i></i>", "seo"}

	lead, err := svc.Process(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "Anna", lead.Name)
	assert.Equal(t, "Shop for tea & coffee", lead.Description)
	assert.Equal(t, []string{"seo"}, lead.Services)
}

func TestService_SanitizesEncodedMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "encoded script", in: "&lt;script&gt;alert(1)&lt;/script&gt; Anna", want: "Anna"},
		{name: "double encoded tag", in: "&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;", want: "bold"},
		{name: "ampersand", in: "Tea &amp; coffee", want: "Tea & coffee"},
		{name: "comparison", in: "Budget 5 &lt; 10", want: "Budget 5 < 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{}
			svc := NewService(repo, &recordingNotifier{}, time.Minute)

			p := telegramLead("@anna_k")
			p.Name = tt.in
			p.Description = tt.in

			lead, err := svc.Process(context.Background(), p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lead.Name)
			assert.Equal(t, tt.want, lead.Description)
		})
	}
}

func TestService_StoreFailure(t *testing.T) {
	repo := &memRepo{addErr: errors.New("stream unavailable")}
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, time.Minute)

	_, err := svc.Process(context.Background(), telegramLead("@anna_k"))
	require.Error(t, err)
	_, rejected := IsRejected(err)
	assert.False(t, rejected)
	assert.Empty(t, notifier.leads)
}

func TestLead_ContactSummary(t *testing.T) {
	l := Lead{Payload: form.Payload{ContactMethod: form.ContactPhone, PhoneNumber: "+79991234567", CallTime: "after 18:00"}}
	assert.Equal(t, "Phone call: +79991234567 at after 18:00", l.ContactSummary())

	l = Lead{Payload: form.Payload{ContactMethod: form.ContactTelegram, Telegram: "@anna_k"}}
	assert.Equal(t, "Telegram: @anna_k", l.ContactSummary())
}

// memRepo is an in-memory Repository.
type memRepo struct {
	leads  []Lead
	addErr error
}

func (m *memRepo) Add(_ context.Context, p form.Payload, at time.Time) (Lead, error) {
	if m.addErr != nil {
		return Lead{}, m.addErr
	}
	l := Lead{ID: time.Now().Format(time.RFC3339Nano), Timestamp: at, Payload: p}
	m.leads = append(m.leads, l)
	return l, nil
}

func (m *memRepo) MarkNotified(context.Context, Lead, time.Time, error) error { return nil }

func (m *memRepo) List(context.Context) ([]Lead, error) { return m.leads, nil }

func (m *memRepo) ByMethod(_ context.Context, method form.ContactMethod) ([]Lead, error) {
	var out []Lead
	for _, l := range m.leads {
		if l.ContactMethod == method {
			out = append(out, l)
		}
	}
	return out, nil
}
