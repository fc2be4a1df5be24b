package memory

import (
	"context"
	"sync"
	"time"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

// CheckoutSessionStore keeps checkout sessions in process memory. Sessions
// are transient by design: losing them on restart only abandons a payment
// intent on the gateway, which expires on its own.
type CheckoutSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.CheckoutSession
	byUser   map[string]string
}

// NewCheckoutSessionStore creates an empty session store.
func NewCheckoutSessionStore() *CheckoutSessionStore {
	return &CheckoutSessionStore{
		sessions: make(map[string]*domain.CheckoutSession),
		byUser:   make(map[string]string),
	}
}

// Claim installs the session for its user unless a live session already
// exists. The check and the install happen under one lock, so concurrent
// initializations for the same user resolve to a single stored session.
func (s *CheckoutSessionStore) Claim(_ context.Context, session *domain.CheckoutSession) (*domain.CheckoutSession, bool, error) {
	if session.UserID == "" {
		return nil, false, apperrors.InvalidInput("session user id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byUser[session.UserID]; ok {
		existing := s.sessions[id]
		if existing != nil && !existing.IsTerminal() && !existing.IsExpired() {
			return clone(existing), false, nil
		}
		delete(s.sessions, id)
		delete(s.byUser, session.UserID)
	}

	s.sessions[session.ID] = clone(session)
	s.byUser[session.UserID] = session.ID
	return clone(session), true, nil
}

// GetByID retrieves a session by its ID.
func (s *CheckoutSessionStore) GetByID(_ context.Context, id string) (*domain.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("checkout session", id)
	}
	return clone(session), nil
}

// Update replaces a stored session.
func (s *CheckoutSessionStore) Update(_ context.Context, session *domain.CheckoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return apperrors.NotFound("checkout session", session.ID)
	}
	session.UpdatedAt = time.Now().UTC()
	s.sessions[session.ID] = clone(session)
	return nil
}

// Delete discards a session and frees the user's slot.
func (s *CheckoutSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil
	}
	delete(s.sessions, id)
	if s.byUser[session.UserID] == id {
		delete(s.byUser, session.UserID)
	}
	return nil
}

// Sweep drops expired sessions. Called periodically from the app loop.
func (s *CheckoutSessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int
	for id, session := range s.sessions {
		if session.IsExpired() {
			delete(s.sessions, id)
			if s.byUser[session.UserID] == id {
				delete(s.byUser, session.UserID)
			}
			removed++
		}
	}
	return removed
}

func clone(s *domain.CheckoutSession) *domain.CheckoutSession {
	c := *s
	c.Items = make([]domain.CheckoutItem, len(s.Items))
	copy(c.Items, s.Items)
	return &c
}
