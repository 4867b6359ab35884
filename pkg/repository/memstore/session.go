package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/models"
)

type cachedUser struct {
	who     auth.Identity
	expires time.Time
}

// Sessions is the in-process counterpart of the Redis session cache.
type Sessions struct {
	mu      sync.Mutex
	ttl     time.Duration
	users   map[string]cachedUser
	revoked map[string]time.Time
	now     func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:     ttl,
		users:   make(map[string]cachedUser),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *Sessions) CacheUser(_ context.Context, who auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[who.UserID.Hex()] = cachedUser{who: who, expires: s.now().Add(s.ttl)}
	return nil
}

// GetUserCache returns models.ErrNotFound on a miss or an expired entry.
func (s *Sessions) GetUserCache(_ context.Context, userID string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.users[userID]
	if !ok || !s.now().Before(c.expires) {
		delete(s.users, userID)
		return nil, models.ErrNotFound
	}
	who := c.who
	return &who, nil
}

func (s *Sessions) InvalidateUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}

func (s *Sessions) RevokeToken(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = s.now().Add(ttl)
	return nil
}

func (s *Sessions) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
