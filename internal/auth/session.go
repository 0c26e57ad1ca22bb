package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionStore persists identities under opaque session ids.
type SessionStore interface {
	// Get returns the identity stored under id. ok is false when the session
	// does not exist or has expired.
	Get(ctx context.Context, id string) (identity Identity, ok bool, err error)
	Save(ctx context.Context, id string, identity Identity, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a SessionStore kept in process memory. Sessions do not
// survive a restart and are not shared between replicas.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

type memorySession struct {
	identity Identity
	expires  time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: map[string]memorySession{},
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (Identity, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return Identity{}, false, nil
	}
	if !m.now().Before(s.expires) {
		delete(m.sessions, id)
		return Identity{}, false, nil
	}
	return s.identity, true, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, identity Identity, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = memorySession{identity: identity, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sessions ties a SessionStore to the session cookie.
type Sessions struct {
	Store      SessionStore
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Load is an http middleware that resolves the session cookie and, when it
// names a live session, adds the Identity to the request context.
// A store failure is logged and the request continues anonymously.
func (s *Sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, ok, err := s.Store.Get(r.Context(), cookie.Value)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("session lookup failed")
		}
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithIdentity(r.Context(), identity)
		zerolog.Ctx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("user", identity.Login)
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Start creates a session for identity and sets its cookie on w.
func (s *Sessions) Start(w http.ResponseWriter, r *http.Request, identity Identity) error {
	id := uuid.NewString()
	if err := s.Store.Save(r.Context(), id, identity, s.TTL); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// End deletes the current session, if any, and expires its cookie.
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(s.CookieName)
	if err == nil && cookie.Value != "" {
		if err := s.Store.Delete(r.Context(), cookie.Value); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
