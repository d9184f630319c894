package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: turn produced an empty reply", contractx.ErrValidation)
	}
	return GraphOutput{
		SessionID:   in.SessionID,
		Reply:       reply,
		Ended:       in.Session.Ended,
		ActiveAgent: in.Session.ActiveAgent,
	}, nil
}
