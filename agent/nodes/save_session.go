package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

// ValidateAndSaveSession stamps the turn time and persists the session.
// Ended sessions are saved too so later turns see the ended flag.
func ValidateAndSaveSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	st := in.Session
	st.Touch(in.Now)
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("session %s failed validation: %w", st.SessionID, err)
	}
	if err := store.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save session %s: %w", st.SessionID, err)
	}
	return in, nil
}
