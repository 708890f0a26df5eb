// ABOUTME: Per-browser sessions, each owning its own app shell.
// ABOUTME: Sessions are keyed by a uuid cookie and evicted after an idle TTL.

package admin

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/joinlab/internal/shell"
)

// SessionCookie is the cookie that carries the session id.
const SessionCookie = "joinlab_session"

type sessionKey struct{}

type session struct {
	shell    *shell.Shell
	lastSeen time.Time
}

// Sessions maps session ids to shells.
type Sessions struct {
	newShell func() *shell.Shell
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessions creates a store that builds a shell with newShell for every
// new browser.
func NewSessions(ttl time.Duration, newShell func() *shell.Shell) *Sessions {
	return &Sessions{
		newShell: newShell,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Lookup returns the shell for id and marks it used. Expired sessions are
// not returned.
func (s *Sessions) Lookup(id string) (*shell.Shell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess.shell, true
}

// Create starts a new session and returns its id.
func (s *Sessions) Create() (string, *shell.Shell) {
	id := uuid.NewString()
	sh := s.newShell()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.sessions[id] = &session{shell: sh, lastSeen: s.now()}
	return id, sh
}

// Sweep drops every session idle for longer than the TTL and returns how
// many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Sessions) sweepLocked() int {
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Middleware attaches the caller's shell to the request context, starting
// a session when the cookie is missing or stale.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sh *shell.Shell
		if c, err := r.Cookie(SessionCookie); err == nil {
			sh, _ = s.Lookup(c.Value)
		}
		if sh == nil {
			var id string
			id, sh = s.Create()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sh)))
	})
}

// ShellFromContext returns the shell attached by Middleware.
func ShellFromContext(ctx context.Context) *shell.Shell {
	sh, _ := ctx.Value(sessionKey{}).(*shell.Shell)
	return sh
}
