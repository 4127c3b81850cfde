package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"

	"github.com/terrasite/leadform/internal/form"
	"github.com/terrasite/leadform/internal/logger"
	"github.com/terrasite/leadform/internal/nats"
)

// Repository persists leads.
type Repository interface {
	Add(ctx context.Context, p form.Payload, at time.Time) (Lead, error)
	MarkNotified(ctx context.Context, lead Lead, at time.Time, notifyErr error) error
	List(ctx context.Context) ([]Lead, error)
	ByMethod(ctx context.Context, method form.ContactMethod) ([]Lead, error)
}

// Store is a Repository backed by the JetStream lead stream.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore creates a Store over an already set up stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// PublishEvent appends an event to the lead log on
// leads.{method}.{type}.
func (s *Store) PublishEvent(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.Method, event.Type)
	logger.Debug("Publishing event: lead=%s type=%s action=%s", event.ID, event.Type, event.Action)

	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}
	return ack, nil
}

// Add stores a new lead with a fresh ID.
func (s *Store) Add(ctx context.Context, p form.Payload, at time.Time) (Lead, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return Lead{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	lead := Lead{ID: xid.New().String(), Timestamp: at, Payload: p}
	_, err = s.PublishEvent(ctx, Event{
		ID:        lead.ID,
		Timestamp: at,
		Method:    string(p.ContactMethod),
		Type:      nats.EventTypeLead,
		Action:    ActionAdd,
		Data:      data,
	})
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// MarkNotified records the outcome of a notification attempt.
func (s *Store) MarkNotified(ctx context.Context, lead Lead, at time.Time, notifyErr error) error {
	event := Event{
		ID:        lead.ID,
		Timestamp: at,
		Method:    string(lead.ContactMethod),
		Type:      nats.EventTypeNotify,
		Action:    ActionSent,
	}
	if notifyErr != nil {
		event.Action = ActionFailed
		event.Data, _ = json.Marshal(map[string]string{"error": notifyErr.Error()})
	}
	_, err := s.PublishEvent(ctx, event)
	return err
}

// List returns every stored lead, oldest first.
func (s *Store) List(ctx context.Context) ([]Lead, error) {
	return s.load(ctx, nats.SubjectAll)
}

// ByMethod returns the leads that chose method, oldest first.
func (s *Store) ByMethod(ctx context.Context, method form.ContactMethod) ([]Lead, error) {
	return s.load(ctx, nats.SubjectForMethod(string(method)))
}

// load reduces every event on subject into a State.
func (s *Store) load(ctx context.Context, subject string) ([]Lead, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject:     subject,
		DeliverPolicy:     jetstream.DeliverAllPolicy,
		AckPolicy:         jetstream.AckNonePolicy,
		InactiveThreshold: time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	pending := consumer.CachedInfo().NumPending

	state := newState()
	const batchSize = 1000
	malformed := 0
	for pending > 0 {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch events: %w", err)
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				malformed++
				continue
			}
			state.Apply(event)
		}
		if count == 0 || uint64(count) >= pending {
			break
		}
		pending -= uint64(count)
	}

	if malformed > 0 {
		logger.Warn("Skipped %d malformed lead events", malformed)
	}

	out := make([]Lead, 0, len(state.Leads))
	for _, l := range state.Leads {
		out = append(out, *l)
	}
	return out, nil
}
