package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

type fakeStore struct {
	mu       sync.Mutex
	sessions map[string]*statex.Session
	loadErr  error
	saveErr  error
	saves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*statex.Session{}}
}

func (f *fakeStore) Load(ctx context.Context, sessionID string) (*statex.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	st, ok := f.sessions[sessionID]
	if !ok {
		return nil, statex.ErrSessionNotFound
	}
	return cloneSession(st), nil
}

func (f *fakeStore) Save(ctx context.Context, st *statex.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.sessions[st.SessionID] = cloneSession(st)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

// fakeProcessor echoes the text and records how many turns overlap per session.
type fakeProcessor struct {
	mu        sync.Mutex
	inFlight  map[string]int
	maxFlight int
	texts     []string
	reply     string
	err       error
	endOn     string
	delay     time.Duration
}

func (f *fakeProcessor) ProcessMessage(ctx context.Context, st *statex.Session, text string) (string, error) {
	f.mu.Lock()
	if f.inFlight == nil {
		f.inFlight = map[string]int{}
	}
	f.inFlight[st.SessionID]++
	if f.inFlight[st.SessionID] > f.maxFlight {
		f.maxFlight = f.inFlight[st.SessionID]
	}
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight[st.SessionID]--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return "", f.err
	}
	if st.Ended {
		return "", contractx.ErrSessionEnded
	}

	st.AppendTurn(statex.RoleUser, text, time.Now())
	if f.endOn != "" && text == f.endOn {
		st.Ended = true
	}
	if f.reply != "" {
		return f.reply, nil
	}
	return fmt.Sprintf("turn %d: %s", len(st.History), text), nil
}

func TestHandleMessageInvalidInput(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, newFakeStore(), &fakeProcessor{})

	if _, err := o.HandleMessage(context.Background(), "   ", "hello"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("HandleMessage() error = %v, want ErrInvalidSession", err)
	}

	long := strings.Repeat("a", 2001)
	if _, err := o.HandleMessage(context.Background(), "s1", long); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("HandleMessage() error = %v, want ErrInvalidMessage", err)
	}
}

func TestStartCreatesSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	processor := &fakeProcessor{reply: "Olá!"}
	o := newTestOrchestrator(t, store, processor)
	o.newID = func() string { return "fixed-id" }

	result, err := o.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if result.SessionID != "fixed-id" || result.Reply != "Olá!" || result.Ended {
		t.Fatalf("Start() = %+v", result)
	}
	if result.ActiveAgent != statex.AgentTriage {
		t.Fatalf("ActiveAgent = %s, want triage", result.ActiveAgent)
	}
	if len(processor.texts) != 1 || processor.texts[0] != "" {
		t.Fatalf("processor texts = %q, want one empty turn", processor.texts)
	}

	st, err := o.Session(context.Background(), "fixed-id")
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if st.SessionID != "fixed-id" {
		t.Fatalf("Session().SessionID = %q", st.SessionID)
	}
}

func TestHandleMessagePersistsAcrossTurns(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	o := newTestOrchestrator(t, store, &fakeProcessor{})

	first, err := o.HandleMessage(context.Background(), "session-1", "oi")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	second, err := o.HandleMessage(context.Background(), "session-1", "tudo bem?")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	if first.Reply != "turn 1: oi" || second.Reply != "turn 2: tudo bem?" {
		t.Fatalf("replies = %q, %q", first.Reply, second.Reply)
	}
	if store.saves != 2 {
		t.Fatalf("saves = %d, want 2", store.saves)
	}
}

func TestHandleMessageEndedSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	o := newTestOrchestrator(t, store, &fakeProcessor{endOn: "tchau"})

	result, err := o.HandleMessage(context.Background(), "session-2", "tchau")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !result.Ended {
		t.Fatal("Ended = false, want true")
	}

	if _, err := o.HandleMessage(context.Background(), "session-2", "oi"); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("HandleMessage() error = %v, want ErrSessionEnded", err)
	}
}

func TestHandleMessageErrorsPropagate(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("redis down")
	o := newTestOrchestrator(t, &fakeStore{sessions: map[string]*statex.Session{}, loadErr: loadErr}, &fakeProcessor{})
	if _, err := o.HandleMessage(context.Background(), "s", "oi"); !errors.Is(err, loadErr) {
		t.Fatalf("HandleMessage() error = %v, want load error", err)
	}

	saveErr := errors.New("save failed")
	o = newTestOrchestrator(t, &fakeStore{sessions: map[string]*statex.Session{}, saveErr: saveErr}, &fakeProcessor{})
	if _, err := o.HandleMessage(context.Background(), "s", "oi"); !errors.Is(err, saveErr) {
		t.Fatalf("HandleMessage() error = %v, want save error", err)
	}

	turnErr := errors.New("turn failed")
	store := newFakeStore()
	o = newTestOrchestrator(t, store, &fakeProcessor{err: turnErr})
	if _, err := o.HandleMessage(context.Background(), "s", "oi"); !errors.Is(err, turnErr) {
		t.Fatalf("HandleMessage() error = %v, want turn error", err)
	}
	if store.saves != 0 {
		t.Fatalf("saves = %d, want 0 after failed turn", store.saves)
	}
}

func TestHandleMessageRejectsEmptyReply(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, newFakeStore(), &fakeProcessor{reply: "   "})
	if _, err := o.HandleMessage(context.Background(), "s", "oi"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("HandleMessage() error = %v, want ErrValidation", err)
	}
}

func TestHandleMessageSerializesSameSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	processor := &fakeProcessor{delay: 5 * time.Millisecond}
	o := newTestOrchestrator(t, store, processor)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := o.HandleMessage(context.Background(), "shared", fmt.Sprintf("msg-%d", i)); err != nil {
				t.Errorf("HandleMessage() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if processor.maxFlight != 1 {
		t.Fatalf("max concurrent turns = %d, want 1", processor.maxFlight)
	}
	if n := o.lockCount(); n != 0 {
		t.Fatalf("lockCount() = %d after turns finished, want 0", n)
	}
	st, err := o.Session(context.Background(), "shared")
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if len(st.History) != 8 {
		t.Fatalf("len(History) = %d, want 8 (no lost updates)", len(st.History))
	}
}

func TestSessionLocksAreReleased(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t, newFakeStore(), &fakeProcessor{})

	for i := 0; i < 50; i++ {
		if _, err := o.HandleMessage(context.Background(), fmt.Sprintf("visitor-%d", i), "oi"); err != nil {
			t.Fatalf("HandleMessage() error = %v", err)
		}
	}
	if err := o.Reset(context.Background(), "visitor-0"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if n := o.lockCount(); n != 0 {
		t.Fatalf("lockCount() = %d, want 0", n)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	o := newTestOrchestrator(t, store, &fakeProcessor{})

	if _, err := o.HandleMessage(context.Background(), "s", "oi"); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if err := o.Reset(context.Background(), "s"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, err := o.Session(context.Background(), "s"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Session() error = %v, want ErrSessionNotFound", err)
	}
	if err := o.Reset(context.Background(), " "); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("Reset() error = %v, want ErrInvalidSession", err)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, &fakeProcessor{}); err == nil {
		t.Fatal("New(nil store) error = nil")
	}
	if _, err := New(newFakeStore(), nil); err == nil {
		t.Fatal("New(nil processor) error = nil")
	}
}

func newTestOrchestrator(t *testing.T, store statex.Store, processor contractx.TurnProcessor) *Orchestrator {
	t.Helper()
	o, err := New(store, processor)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func cloneSession(in *statex.Session) *statex.Session {
	if in == nil {
		return nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	var out statex.Session
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}
