package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Subject pattern constants and helpers
const (
	streamName = "leadform_leads"

	// subjectRoot prefixes every lead subject: leads.{method}.{type}
	subjectRoot = "leads"

	// Retention of stored leads.
	retention = 365 * 24 * time.Hour

	// Event types
	EventTypeLead   = "lead"
	EventTypeNotify = "notify"
)

// SubjectAll matches every lead event.
const SubjectAll = subjectRoot + ".>"

// SubjectForMethod returns the wildcard subject for all events of leads
// that chose one contact method.
// Example: "leads.telegram.>"
func SubjectForMethod(method string) string {
	return fmt.Sprintf("%s.%s.>", subjectRoot, method)
}

// SubjectForEvent returns the specific subject for an event type.
// Example: "leads.telegram.lead"
func SubjectForEvent(method, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", subjectRoot, method, eventType)
}

// SetupStream creates or updates the JetStream stream for lead events.
// Subject pattern: leads.> matches all contact methods and event types.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{SubjectAll},
		Storage:  jetstream.FileStorage,
		MaxAge:   retention,
	})
}
