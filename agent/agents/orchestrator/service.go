package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	nodex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/nodes"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

var (
	ErrInvalidMessage  = nodex.ErrInvalidMessage
	ErrInvalidSession  = nodex.ErrInvalidSession
	ErrSessionNotFound = statex.ErrSessionNotFound
	ErrSessionEnded    = contractx.ErrSessionEnded
)

type TurnResult struct {
	SessionID   string           `json:"session_id"`
	Reply       string           `json:"reply"`
	Ended       bool             `json:"ended"`
	ActiveAgent statex.AgentName `json:"active_agent"`
}

// Orchestrator runs turns for many sessions. Turns on the same session are
// serialized; different sessions proceed independently.
type Orchestrator struct {
	store     statex.Store
	processor contractx.TurnProcessor

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	locksMu sync.Mutex
	locks   map[string]*sessionLock

	now   func() time.Time
	newID func() string
}

func New(store statex.Store, processor contractx.TurnProcessor) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if processor == nil {
		return nil, errors.New("turn processor is required")
	}

	o := &Orchestrator{
		store:     store,
		processor: processor,
		locks:     make(map[string]*sessionLock),
		now:       time.Now,
		newID:     uuid.NewString,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Start opens a new session and returns its greeting.
func (o *Orchestrator) Start(ctx context.Context) (TurnResult, error) {
	id := o.newID()
	result, err := o.HandleMessage(ctx, id, "")
	if err != nil {
		return TurnResult{}, err
	}
	log.Info().Str("session_id", id).Msg("session started")
	return result, nil
}

func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (TurnResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return TurnResult{}, ErrInvalidSession
	}

	unlock := o.lock(sessionID)
	defer unlock()

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return TurnResult{}, err
	}
	if out.Ended {
		log.Info().Str("session_id", sessionID).Msg("session ended")
	}
	return TurnResult{
		SessionID:   out.SessionID,
		Reply:       out.Reply,
		Ended:       out.Ended,
		ActiveAgent: out.ActiveAgent,
	}, nil
}

func (o *Orchestrator) Session(ctx context.Context, sessionID string) (*statex.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	return o.store.Load(ctx, sessionID)
}

// Reset deletes the stored session. A later message on the same id starts
// a fresh one.
func (o *Orchestrator) Reset(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrInvalidSession
	}

	unlock := o.lock(sessionID)
	defer unlock()

	return o.store.Delete(ctx, sessionID)
}

// sessionLock serializes turns of one session. refs counts holders and
// waiters; the entry is dropped when it reaches zero.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (o *Orchestrator) lock(sessionID string) func() {
	o.locksMu.Lock()
	l, ok := o.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		o.locks[sessionID] = l
	}
	l.refs++
	o.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		o.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(o.locks, sessionID)
		}
		o.locksMu.Unlock()
	}
}

func (o *Orchestrator) lockCount() int {
	o.locksMu.Lock()
	defer o.locksMu.Unlock()
	return len(o.locks)
}
