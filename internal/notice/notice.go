// Package notice provides a single-slot, auto-expiring notification board.
package notice

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notice stays visible unless replaced.
const DefaultTTL = 5 * time.Second

// Kind selects how a notice is styled.
type Kind int

const (
	KindError Kind = iota
	KindSuccess
	KindInfo
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindSuccess:
		return "success"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notice is one message shown on the board.
type Notice struct {
	Kind      Kind
	Text      string
	Seq       uint64
	ExpiresAt time.Time
}

// Board holds at most one notice. Showing a new notice replaces the
// current one, and every notice carries a sequence number so that the
// expiry of a replaced notice is ignored.
type Board struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	seq     uint64
	current *Notice
}

// NewBoard creates an empty board. A non-positive ttl falls back to DefaultTTL.
func NewBoard(ttl time.Duration) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Board{ttl: ttl, now: time.Now}
}

// SetClock replaces the time source. Used by tests.
func (b *Board) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

// TTL returns the lifetime of each notice.
func (b *Board) TTL() time.Duration {
	return b.ttl
}

// Show replaces the current notice and returns its sequence number.
func (b *Board) Show(kind Kind, text string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.current = &Notice{
		Kind:      kind,
		Text:      text,
		Seq:       b.seq,
		ExpiresAt: b.now().Add(b.ttl),
	}
	return b.seq
}

// Error shows an error notice.
func (b *Board) Error(text string) uint64 { return b.Show(KindError, text) }

// Success shows a success notice.
func (b *Board) Success(text string) uint64 { return b.Show(KindSuccess, text) }

// Info shows an informational notice.
func (b *Board) Info(text string) uint64 { return b.Show(KindInfo, text) }

// Expire removes the notice with the given sequence number. It reports
// false when that notice was already replaced or dismissed.
func (b *Board) Expire(seq uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil || b.current.Seq != seq {
		return false
	}
	b.current = nil
	return true
}

// Dismiss removes whatever notice is showing.
func (b *Board) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}

// Current returns the visible notice, if any. A notice past its expiry
// time is treated as gone even if Expire was never called.
func (b *Board) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notice{}, false
	}
	if !b.now().Before(b.current.ExpiresAt) {
		b.current = nil
		return Notice{}, false
	}
	return *b.current, true
}
