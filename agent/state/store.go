package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("session id is empty")
)

const (
	defaultStoreKeyPrefix = "banco:session:"
	defaultStoreTTL       = 24 * time.Hour
)

// Store is the persistence contract used by the orchestrator.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, st *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// keyspace names and expires session keys in the Redis-backed stores.
type keyspace struct {
	prefix string
	ttl    time.Duration
}

// StoreOption tunes the keyspace of RedisStore and UpstashRedisStore.
type StoreOption func(*keyspace)

func WithKeyPrefix(prefix string) StoreOption {
	return func(k *keyspace) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			k.prefix = trimmed
		}
	}
}

// WithTTL sets the session expiry. Zero keeps sessions until deleted.
func WithTTL(ttl time.Duration) StoreOption {
	return func(k *keyspace) {
		k.ttl = ttl
	}
}

func newKeyspace(opts []StoreOption) (keyspace, error) {
	k := keyspace{prefix: defaultStoreKeyPrefix, ttl: defaultStoreTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(&k)
		}
	}
	if k.ttl < 0 {
		return keyspace{}, errors.New("ttl must be >= 0")
	}
	return k, nil
}

func (k keyspace) key(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return k.prefix + sessionID, nil
}

// encodeSession stamps UpdatedAt in UTC and serializes the session.
func encodeSession(st *Session) ([]byte, error) {
	if st == nil {
		return nil, ErrNilSession
	}
	if strings.TrimSpace(st.SessionID) == "" {
		return nil, ErrInvalidSession
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = time.Now()
	}
	st.UpdatedAt = st.UpdatedAt.UTC()

	payload, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return payload, nil
}

func decodeSession(raw []byte) (*Session, error) {
	var st Session
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("stored session %q: %w", st.SessionID, err)
	}
	return &st, nil
}
