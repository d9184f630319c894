package orchestratornode

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

// MaxMessageRunes bounds a single user message.
const MaxMessageRunes = 2000

var (
	ErrInvalidMessage = errors.New("message is too long")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	SessionID   string
	Reply       string
	Ended       bool
	ActiveAgent statex.AgentName
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.Session
	Created bool

	Reply string
}

// ValidateRequest accepts empty text; the turn processor answers it.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
