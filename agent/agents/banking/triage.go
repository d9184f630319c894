package banking

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

func (a *Agent) handleTriage(ctx context.Context, st *statex.Session, text string) string {
	if st.Authenticated {
		return a.route(ctx, st, text)
	}

	switch st.Triage.Step {
	case statex.StepAwaitNationalID, "":
		id, ok := ExtractNationalID(text)
		if !ok {
			return msgInvalidNationalID
		}
		st.Triage.NationalID = id
		st.Triage.Step = statex.StepAwaitBirthDate
		return msgAskBirthDate
	case statex.StepAwaitBirthDate:
		date, ok := NormalizeBirthDate(text)
		if !ok {
			return msgInvalidBirthDate
		}
		st.Triage.BirthDate = date
		return a.authenticate(ctx, st)
	default:
		st.ResetIdentity()
		return msgInvalidNationalID
	}
}

func (a *Agent) authenticate(ctx context.Context, st *statex.Session) string {
	id, date := st.Triage.NationalID, st.Triage.BirthDate
	logger := log.With().Str("session_id", st.SessionID).Str("national_id", maskNationalID(id)).Logger()

	customer, err := a.customers.FindByIDAndBirthDate(ctx, id, date)
	if err != nil && !errors.Is(err, contractx.ErrNotFound) {
		logger.Warn().Err(err).Msg("customer lookup failed")
		st.Triage.BirthDate = ""
		return storeErrorMessage(err)
	}

	if customer == nil {
		st.AuthAttempts++
		logger.Info().Int("attempts", st.AuthAttempts).Msg("authentication mismatch")
		if st.AuthAttempts >= statex.MaxAuthAttempts {
			st.Ended = true
			return msgAuthExhausted
		}
		st.ResetIdentity()
		return authFailedMessage(statex.MaxAuthAttempts - st.AuthAttempts)
	}

	st.Authenticate(*customer)
	logger.Info().Msg("customer authenticated")
	return welcomeMessage(customer.Name)
}

// route runs the intent router for an authenticated session sitting at the menu.
func (a *Agent) route(ctx context.Context, st *statex.Session, text string) string {
	if a.isNegative(ctx, questionAnythingElse, text) {
		return a.finish(st)
	}

	out, err := a.oracle.Complete(ctx, contractx.PromptIntent, map[string]any{"message": text})
	if err != nil {
		log.Warn().Err(err).Str("session_id", st.SessionID).Msg("intent oracle failed")
		return msgIntentUnavailable
	}

	switch classifyIntent(out) {
	case intentCredit:
		if err := st.SwitchAgent(statex.AgentCredit); err != nil {
			return msgIntentUnavailable
		}
		return a.enterCredit(ctx, st)
	case intentExchange:
		if err := st.SwitchAgent(statex.AgentExchange); err != nil {
			return msgIntentUnavailable
		}
		return msgExchangeEntry
	default:
		return msgServiceMenu
	}
}

type intent int

const (
	intentOther intent = iota
	intentCredit
	intentExchange
)

func classifyIntent(answer string) intent {
	lower := strings.ToLower(answer)
	switch {
	case containsAny(lower, []string{"credito", "crédito", "credit"}):
		return intentCredit
	case containsAny(lower, []string{"cambio", "câmbio", "moeda", "exchange", "currency"}):
		return intentExchange
	default:
		return intentOther
	}
}

// backToMenu returns control to the intent router with service flags cleared.
func (a *Agent) backToMenu(st *statex.Session) string {
	st.ClearServiceFlags()
	_ = st.SwitchAgent(statex.AgentTriage)
	return msgServiceMenu
}
