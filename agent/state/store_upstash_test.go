package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// upstashRecorder answers every command with reply and keeps what it saw.
type upstashRecorder struct {
	status   int
	reply    string
	commands [][]string
	auth     []string
}

func (u *upstashRecorder) serve(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var cmd []string
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Errorf("decode command: %v", err)
		}
		u.commands = append(u.commands, cmd)
		u.auth = append(u.auth, r.Header.Get("Authorization"))
		if u.status != 0 {
			w.WriteHeader(u.status)
		}
		fmt.Fprint(w, u.reply)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestUpstashStore(t *testing.T, rec *upstashRecorder, opts ...StoreOption) *UpstashRedisStore {
	t.Helper()

	server := rec.serve(t)
	store, err := NewUpstashRedisStore(UpstashRedisConfig{URL: server.URL + "/", Token: " token "}, server.Client(), opts...)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}
	return store
}

func TestUpstashRedisStoreSaveCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []StoreOption
		wantLen int
		wantEX  string
	}{
		{name: "default ttl", wantLen: 5, wantEX: "86400"},
		{name: "rounds ttl up", opts: []StoreOption{WithTTL(1500 * time.Millisecond)}, wantLen: 5, wantEX: "2"},
		{name: "no ttl", opts: []StoreOption{WithTTL(0)}, wantLen: 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &upstashRecorder{reply: `{"result":"OK"}`}
			store := newTestUpstashStore(t, rec, tt.opts...)

			if err := store.Save(context.Background(), NewSession("session-1", time.Now())); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if len(rec.commands) != 1 {
				t.Fatalf("commands = %d, want 1", len(rec.commands))
			}
			cmd := rec.commands[0]
			if len(cmd) != tt.wantLen {
				t.Fatalf("command = %q, want %d parts", cmd, tt.wantLen)
			}
			if cmd[0] != "SET" || cmd[1] != "banco:session:session-1" {
				t.Fatalf("command head = %q %q, want SET banco:session:session-1", cmd[0], cmd[1])
			}
			if tt.wantEX != "" && (cmd[3] != "EX" || cmd[4] != tt.wantEX) {
				t.Fatalf("expiry = %q %q, want EX %s", cmd[3], cmd[4], tt.wantEX)
			}
			if rec.auth[0] != "Bearer token" {
				t.Fatalf("Authorization = %q, want Bearer token", rec.auth[0])
			}
		})
	}
}

func TestUpstashRedisStoreLoad(t *testing.T) {
	t.Parallel()

	seed := NewSession("session-2", time.Now())
	seed.AppendTurn(RoleUser, "oi", time.Now())
	payload, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	value, err := json.Marshal(string(payload))
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}

	rec := &upstashRecorder{reply: fmt.Sprintf(`{"result":%s}`, value)}
	store := newTestUpstashStore(t, rec, WithKeyPrefix("test:"))

	st, err := store.Load(context.Background(), "session-2")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if st.SessionID != "session-2" || len(st.History) != 1 {
		t.Fatalf("Load() = %+v, want session-2 with one turn", st)
	}
	if got := rec.commands[0]; len(got) != 2 || got[0] != "GET" || got[1] != "test:session-2" {
		t.Fatalf("command = %q, want GET test:session-2", got)
	}
}

func TestUpstashRedisStoreLoadMissingSession(t *testing.T) {
	t.Parallel()

	store := newTestUpstashStore(t, &upstashRecorder{reply: `{"result":null}`})
	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load() error = %v, want ErrSessionNotFound", err)
	}
}

func TestUpstashRedisStoreDelete(t *testing.T) {
	t.Parallel()

	rec := &upstashRecorder{reply: `{"result":1}`}
	store := newTestUpstashStore(t, rec)

	if err := store.Delete(context.Background(), "session-3"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := rec.commands[0]; got[0] != "DEL" || got[1] != "banco:session:session-3" {
		t.Fatalf("command = %q, want DEL banco:session:session-3", got)
	}
	if err := store.Delete(context.Background(), " "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Delete(\" \") error = %v, want ErrInvalidSession", err)
	}
}

func TestUpstashRedisStoreErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		rec        *upstashRecorder
		wantStatus int
		wantMsg    string
	}{
		{
			name:    "command error",
			rec:     &upstashRecorder{reply: `{"error":"WRONGTYPE"}`},
			wantMsg: "WRONGTYPE",
		},
		{
			name:       "http error with envelope",
			rec:        &upstashRecorder{status: http.StatusUnauthorized, reply: `{"error":"WRONGPASS invalid token"}`},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "WRONGPASS invalid token",
		},
		{
			name:       "http error plain body",
			rec:        &upstashRecorder{status: http.StatusBadGateway, reply: "bad gateway"},
			wantStatus: http.StatusBadGateway,
			wantMsg:    "bad gateway",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newTestUpstashStore(t, tt.rec)
			err := store.Delete(context.Background(), "s")

			var upErr *UpstashError
			if !errors.As(err, &upErr) {
				t.Fatalf("Delete() error = %v, want *UpstashError", err)
			}
			if upErr.Command != "DEL" || upErr.StatusCode != tt.wantStatus || upErr.Message != tt.wantMsg {
				t.Fatalf("UpstashError = %+v", upErr)
			}
		})
	}
}

func TestNewUpstashRedisStoreValidatesConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  UpstashRedisConfig
		opts []StoreOption
	}{
		{name: "missing url", cfg: UpstashRedisConfig{Token: "t"}},
		{name: "relative url", cfg: UpstashRedisConfig{URL: "redis-host", Token: "t"}},
		{name: "missing token", cfg: UpstashRedisConfig{URL: "https://x.upstash.io", Token: " "}},
		{name: "negative ttl", cfg: UpstashRedisConfig{URL: "https://x.upstash.io", Token: "t"}, opts: []StoreOption{WithTTL(-time.Minute)}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewUpstashRedisStore(tt.cfg, nil, tt.opts...); err == nil {
				t.Fatal("NewUpstashRedisStore() error = nil, want error")
			}
		})
	}
}
