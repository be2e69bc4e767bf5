package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go-jobmatch-web/internal/domain"
)

var ErrInvalidRole = errors.New("session: unknown user type")

// Holder is the credential for one request. It is loaded once from the
// cookies and is safe for the concurrent backend calls a request may fan out.
type Holder struct {
	store *CookieStore
	w     http.ResponseWriter

	mu          sync.RWMutex
	current     domain.Session
	invalidated bool

	once         sync.Once
	onInvalidate func(domain.Session)
}

func (s *CookieStore) Begin(w http.ResponseWriter, r *http.Request) *Holder {
	return &Holder{store: s, w: w, current: s.Read(r)}
}

// OnInvalidate registers a callback run once when a 401 clears the session.
func (h *Holder) OnInvalidate(fn func(domain.Session)) {
	h.onInvalidate = fn
}

func (h *Holder) Session() domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

func (h *Holder) Token() string {
	return h.Session().Token
}

func (h *Holder) Save(sess domain.Session) error {
	if !sess.Role.Valid() {
		return ErrInvalidRole
	}
	h.mu.Lock()
	h.current = sess
	h.invalidated = false
	h.mu.Unlock()
	h.store.Write(h.w, sess)
	return nil
}

func (h *Holder) Clear() {
	h.mu.Lock()
	h.current = domain.Session{}
	h.mu.Unlock()
	h.store.Erase(h.w)
}

// Invalidate clears the credential after an unauthorized response. Only the
// first call in a request has any effect.
func (h *Holder) Invalidate() {
	h.once.Do(func() {
		h.mu.Lock()
		previous := h.current
		h.current = domain.Session{}
		h.invalidated = true
		h.mu.Unlock()

		h.store.Erase(h.w)
		if h.onInvalidate != nil {
			h.onInvalidate(previous)
		}
	})
}

func (h *Holder) Invalidated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.invalidated
}

func WithHolder(ctx context.Context, h *Holder) context.Context {
	return context.WithValue(ctx, domain.KeySession, h)
}

func FromContext(ctx context.Context) *Holder {
	h, _ := ctx.Value(domain.KeySession).(*Holder)
	return h
}

// ContextStore exposes the request's Holder as a domain.SessionStore.
type ContextStore struct{}

func (ContextStore) Load(ctx context.Context) domain.Session {
	if h := FromContext(ctx); h != nil {
		return h.Session()
	}
	return domain.Session{}
}

func (ContextStore) Save(ctx context.Context, sess domain.Session) error {
	h := FromContext(ctx)
	if h == nil {
		return errors.New("session: no holder in context")
	}
	return h.Save(sess)
}

func (ContextStore) Clear(ctx context.Context) {
	if h := FromContext(ctx); h != nil {
		h.Clear()
	}
}
