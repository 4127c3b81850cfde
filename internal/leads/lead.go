// Package leads stores submitted leads as JetStream events and processes
// new submissions for the intake endpoint.
package leads

import (
	"encoding/json"
	"time"

	"github.com/terrasite/leadform/internal/form"
)

// Lead is a stored submission.
type Lead struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	form.Payload
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}

// ContactValue returns the lead's value for its chosen contact method.
func (l Lead) ContactValue() string {
	return l.Payload.ContactValue()
}

// Event is one entry of the lead event log.
type Event struct {
	ID        string          `json:"id"`        // Lead ID
	Timestamp time.Time       `json:"timestamp"` // When the event occurred
	Method    string          `json:"method"`    // Contact method, part of the subject
	Type      string          `json:"type"`      // lead or notify
	Action    string          `json:"action"`    // add, sent, failed
	Data      json.RawMessage `json:"data,omitempty"`
}

// Event actions.
const (
	ActionAdd    = "add"
	ActionSent   = "sent"
	ActionFailed = "failed"
)

// State is the set of leads reconstructed from events, in arrival order.
type State struct {
	Leads []*Lead
	index map[string]*Lead
}

func newState() *State {
	return &State{index: make(map[string]*Lead)}
}

// Apply reduces one event into the state.
func (st *State) Apply(event Event) {
	switch event.Action {
	case ActionAdd:
		if _, exists := st.index[event.ID]; exists {
			return
		}
		var p form.Payload
		if err := json.Unmarshal(event.Data, &p); err != nil {
			return
		}
		lead := &Lead{ID: event.ID, Timestamp: event.Timestamp, Payload: p}
		st.Leads = append(st.Leads, lead)
		st.index[event.ID] = lead

	case ActionSent:
		if lead, ok := st.index[event.ID]; ok {
			at := event.Timestamp
			lead.NotifiedAt = &at
		}
	}
}
