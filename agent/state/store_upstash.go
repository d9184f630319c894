package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxUpstashReplyBytes = 2 << 20

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// UpstashRedisStore persists sessions through the Upstash Redis REST API,
// one JSON-encoded command per request.
type UpstashRedisStore struct {
	endpoint string
	token    string
	client   *http.Client
	keys     keyspace
}

// upstashReply is the envelope of every REST command response.
type upstashReply struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// UpstashError is returned when the REST API rejects a command.
type UpstashError struct {
	Command    string
	StatusCode int
	Message    string
}

func (e *UpstashError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstash %s: status=%d %s", e.Command, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstash %s: %s", e.Command, e.Message)
}

// NewUpstashRedisStore builds the store. A nil client gets a default one
// bounded by cfg.Timeout.
func NewUpstashRedisStore(cfg UpstashRedisConfig, client *http.Client, opts ...StoreOption) (*UpstashRedisStore, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if endpoint == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid upstash redis url: %w", err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	keys, err := newKeyspace(opts)
	if err != nil {
		return nil, err
	}

	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &UpstashRedisStore{
		endpoint: endpoint,
		token:    token,
		client:   client,
		keys:     keys,
	}, nil
}

func (s *UpstashRedisStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	key, err := s.keys.key(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.command(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, ErrSessionNotFound
	}

	// GET replies with the stored value as a JSON string.
	var stored string
	if err := json.Unmarshal(result, &stored); err != nil {
		return nil, fmt.Errorf("decode upstash value: %w", err)
	}
	return decodeSession([]byte(stored))
}

func (s *UpstashRedisStore) Save(ctx context.Context, st *Session) error {
	payload, err := encodeSession(st)
	if err != nil {
		return err
	}
	key, err := s.keys.key(st.SessionID)
	if err != nil {
		return err
	}

	args := []string{key, string(payload)}
	if s.keys.ttl > 0 {
		args = append(args, "EX", strconv.FormatInt(expirySeconds(s.keys.ttl), 10))
	}
	_, err = s.command(ctx, "SET", args...)
	return err
}

func (s *UpstashRedisStore) Delete(ctx context.Context, sessionID string) error {
	key, err := s.keys.key(sessionID)
	if err != nil {
		return err
	}
	_, err = s.command(ctx, "DEL", key)
	return err
}

// command posts ["NAME", args...] and returns the trimmed result field.
func (s *UpstashRedisStore) command(ctx context.Context, name string, args ...string) (json.RawMessage, error) {
	body, err := json.Marshal(append([]string{name}, args...))
	if err != nil {
		return nil, fmt.Errorf("marshal upstash %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build upstash %s: %w", name, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstash %s: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstashReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("read upstash %s reply: %w", name, err)
	}

	var reply upstashReply
	decodeErr := json.Unmarshal(raw, &reply)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := reply.Error
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, &UpstashError{Command: name, StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode upstash %s reply: %w", name, decodeErr)
	}
	if reply.Error != "" {
		return nil, &UpstashError{Command: name, Message: reply.Error}
	}
	return bytes.TrimSpace(reply.Result), nil
}

// expirySeconds rounds ttl up to whole seconds, minimum one.
func expirySeconds(ttl time.Duration) int64 {
	seconds := int64((ttl + time.Second - 1) / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
