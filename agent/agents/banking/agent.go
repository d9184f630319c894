package banking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

var _ contractx.TurnProcessor = (*Agent)(nil)

type Deps struct {
	Oracle    contractx.LanguageOracle
	Market    contractx.MarketData
	Customers contractx.CustomerStore
	Bands     contractx.ScoreBandStore
	Requests  contractx.RequestLog
	Now       func() time.Time
}

// Agent is the per-turn state machine shared by every session. It keeps no
// session state of its own.
type Agent struct {
	oracle    contractx.LanguageOracle
	market    contractx.MarketData
	customers contractx.CustomerStore
	bands     contractx.ScoreBandStore
	requests  contractx.RequestLog
	now       func() time.Time
}

func New(deps Deps) (*Agent, error) {
	switch {
	case deps.Oracle == nil:
		return nil, fmt.Errorf("%w: language oracle is required", contractx.ErrValidation)
	case deps.Market == nil:
		return nil, fmt.Errorf("%w: market data is required", contractx.ErrValidation)
	case deps.Customers == nil:
		return nil, fmt.Errorf("%w: customer store is required", contractx.ErrValidation)
	case deps.Bands == nil:
		return nil, fmt.Errorf("%w: score band store is required", contractx.ErrValidation)
	case deps.Requests == nil:
		return nil, fmt.Errorf("%w: request log is required", contractx.ErrValidation)
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Agent{
		oracle:    deps.Oracle,
		market:    deps.Market,
		customers: deps.Customers,
		bands:     deps.Bands,
		requests:  deps.Requests,
		now:       now,
	}, nil
}

// Greeting is the opening assistant message of every session.
func Greeting() string {
	return msgGreeting
}

// ProcessMessage advances st by one user turn and returns the reply. The
// caller must serialize calls for the same session.
func (a *Agent) ProcessMessage(ctx context.Context, st *statex.Session, text string) (string, error) {
	if st == nil {
		return "", statex.ErrNilSession
	}
	if st.Ended {
		return "", contractx.ErrSessionEnded
	}

	text = strings.TrimSpace(text)
	if text == "" {
		if len(st.History) == 0 {
			st.AppendTurn(statex.RoleAssistant, msgGreeting, a.now())
			return msgGreeting, nil
		}
		return msgEmptyInput, nil
	}

	st.AppendTurn(statex.RoleUser, text, a.now())

	var reply string
	if WantsToEnd(text) {
		reply = a.finish(st)
	} else {
		reply = a.dispatch(ctx, st, text)
	}

	st.AppendTurn(statex.RoleAssistant, reply, a.now())
	st.Touch(a.now())

	log.Debug().
		Str("session_id", st.SessionID).
		Str("active_agent", string(st.ActiveAgent)).
		Bool("authenticated", st.Authenticated).
		Bool("ended", st.Ended).
		Msg("turn processed")

	return reply, nil
}

func (a *Agent) dispatch(ctx context.Context, st *statex.Session, text string) string {
	switch st.ActiveAgent {
	case statex.AgentCredit:
		return a.handleCredit(ctx, st, text)
	case statex.AgentInterview:
		return a.handleInterview(ctx, st, text)
	case statex.AgentExchange:
		return a.handleExchange(ctx, st, text)
	default:
		return a.handleTriage(ctx, st, text)
	}
}
