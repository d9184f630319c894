package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

func LoadOrCreateSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	switch {
	case err == nil:
		in.Session = st
	case errors.Is(err, statex.ErrSessionNotFound):
		in.Session = statex.NewSession(in.SessionID, in.Now)
		in.Created = true
	default:
		return nil, err
	}
	return in, nil
}
