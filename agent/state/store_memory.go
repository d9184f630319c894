package state

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. Entries are stored encoded so
// callers never share a *Session with the cache.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore expires sessions ttl after their last save. Zero keeps them
// until deleted, as WithTTL(0) does for the Redis stores.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryStore{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}
	x, found := s.cache.Get(sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}
	return decodeSession(x.([]byte))
}

func (s *MemoryStore) Save(_ context.Context, st *Session) error {
	payload, err := encodeSession(st)
	if err != nil {
		return err
	}
	s.cache.Set(st.SessionID, payload, cache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}
	s.cache.Delete(sessionID)
	return nil
}
