package banking

import (
	"context"

	"github.com/google/uuid"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

// Conversation drives a single in-process session for the terminal client.
type Conversation struct {
	agent   *Agent
	session *statex.Session
}

func NewConversation(agent *Agent) *Conversation {
	c := &Conversation{agent: agent}
	c.Restart()
	return c
}

// Restart discards the current session and opens a fresh one.
func (c *Conversation) Restart() string {
	c.session = statex.NewSession(uuid.NewString(), c.agent.now())
	c.session.AppendTurn(statex.RoleAssistant, msgGreeting, c.agent.now())
	return msgGreeting
}

func (c *Conversation) ProcessMessage(ctx context.Context, text string) (string, error) {
	return c.agent.ProcessMessage(ctx, c.session, text)
}

func (c *Conversation) Ended() bool {
	return c.session.Ended
}

func (c *Conversation) Session() *statex.Session {
	return c.session
}
