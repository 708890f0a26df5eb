// ABOUTME: Single-slot transient notification surface.
// ABOUTME: A push replaces the visible message and re-arms its expiry.

package notify

import (
	"sync"
	"time"
)

// DefaultDuration is how long a message stays visible.
const DefaultDuration = 3 * time.Second

// Notifier holds at most one message at a time.
type Notifier struct {
	mu       sync.Mutex
	msg      string
	expires  time.Time
	duration time.Duration
	now      func() time.Time
}

// New creates a notifier. A non-positive duration uses DefaultDuration.
func New(duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Notifier{duration: duration, now: time.Now}
}

// SetClock replaces the time source, for tests.
func (n *Notifier) SetClock(now func() time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.now = now
}

// Push shows msg, replacing any pending message and its timer.
func (n *Notifier) Push(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msg = msg
	n.expires = n.now().Add(n.duration)
}

// Current returns the visible message, or "" once it has expired.
func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.msg == "" {
		return ""
	}
	if !n.now().Before(n.expires) {
		n.msg = ""
		return ""
	}
	return n.msg
}

// Remaining reports how long the current message stays visible.
func (n *Notifier) Remaining() time.Duration {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.msg == "" {
		return 0
	}
	d := n.expires.Sub(n.now())
	if d < 0 {
		return 0
	}
	return d
}

// Dismiss clears the message immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msg = ""
}

// Duration returns the configured display duration.
func (n *Notifier) Duration() time.Duration {
	return n.duration
}
