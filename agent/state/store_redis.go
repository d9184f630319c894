package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string `envconfig:"ADDR" split_words:"true" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD" split_words:"true"`
	DB       int    `envconfig:"DB" split_words:"true" default:"0"`
}

// RedisStore persists sessions in a Redis server over the native protocol.
type RedisStore struct {
	client redis.Cmdable
	keys   keyspace
}

func NewRedisStore(cfg RedisConfig, opts ...StoreOption) (*RedisStore, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, opts...)
}

func NewRedisStoreWithClient(client redis.Cmdable, opts ...StoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	keys, err := newKeyspace(opts)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: client, keys: keys}, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	key, err := s.keys.key(sessionID)
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeSession(raw)
}

func (s *RedisStore) Save(ctx context.Context, st *Session) error {
	payload, err := encodeSession(st)
	if err != nil {
		return err
	}
	key, err := s.keys.key(st.SessionID)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, payload, s.keys.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key, err := s.keys.key(sessionID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
