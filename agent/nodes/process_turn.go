package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
)

func ProcessTurn(ctx context.Context, in *GraphState, processor contractx.TurnProcessor) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	before := in.Session.ActiveAgent
	reply, err := processor.ProcessMessage(ctx, in.Session, in.Text)
	if err != nil {
		return nil, err
	}

	if before != in.Session.ActiveAgent {
		log.Info().
			Str("session_id", in.SessionID).
			Str("from", string(before)).
			Str("to", string(in.Session.ActiveAgent)).
			Msg("active agent switched")
	}

	in.Reply = reply
	return in, nil
}
