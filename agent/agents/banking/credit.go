package banking

import (
	"context"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

var (
	increaseKeywords        = []string{"aumento", "aumentar", "solicitar", "elevar", "novo limite", "increase", "raise", "new limit"}
	currencyHandoffKeywords = []string{"cotação", "cotacao", "cambio", "câmbio", "moeda", "dolar", "dólar", "euro", "libra", "peso"}
	acceptWords             = []string{"sim", "quero", "aceito", "vamos", "pode", "prosseguir", "yes", "want", "accept", "proceed", "ok"}
)

func hasIncreaseIntent(text string) bool {
	return containsAny(normalize(text), increaseKeywords)
}

// enterCredit produces the credit agent's entry reply. An increase request
// with an amount in the latest utterance is evaluated right away.
func (a *Agent) enterCredit(ctx context.Context, st *statex.Session) string {
	last := st.LastUserUtterance()
	if hasIncreaseIntent(last) {
		if amount, ok := extractAmount(last); ok {
			return a.evaluateIncrease(ctx, st, amount)
		}
		return creditEntryMessage(st.Customer.CreditLimit, true)
	}
	return creditEntryMessage(st.Customer.CreditLimit, false)
}

func (a *Agent) handleCredit(ctx context.Context, st *statex.Session, text string) string {
	lower := normalize(text)

	if st.Credit.RequestProcessed {
		if containsAny(lower, currencyHandoffKeywords) {
			st.Credit.RequestProcessed = false
			if err := st.SwitchAgent(statex.AgentExchange); err != nil {
				return msgIntentUnavailable
			}
			return a.handleExchange(ctx, st, text)
		}
		if a.isNegative(ctx, questionAnythingElse, text) {
			return a.finish(st)
		}
	}

	if hasIncreaseIntent(lower) {
		if amount, ok := extractAmount(text); ok {
			return a.evaluateIncrease(ctx, st, amount)
		}
		return msgAskAmount
	}

	if amount, ok := extractAmount(text); ok {
		return a.evaluateIncrease(ctx, st, amount)
	}

	if st.Credit.RequestRejected {
		if a.isNegative(ctx, questionProceedReview, text) {
			st.Credit.RequestRejected = false
			return a.backToMenu(st)
		}
		if containsWord(lower, acceptWords...) {
			return a.startInterview(st)
		}
	}

	return creditStatusMessage(st.Customer.CreditLimit)
}

// evaluateIncrease approves requested when it fits the band ceiling for the
// customer's score. Store faults leave the credit flags untouched.
func (a *Agent) evaluateIncrease(ctx context.Context, st *statex.Session, requested float64) string {
	customer := st.Customer
	logger := log.With().
		Str("session_id", st.SessionID).
		Str("national_id", maskNationalID(customer.NationalID)).
		Float64("requested", requested).
		Logger()

	bands, err := a.bands.AllBands(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("score bands unavailable")
		return requestErrorMessage(err)
	}
	maxApproved, err := MaxApprovedLimit(bands, customer.Score)
	if err != nil {
		logger.Warn().Err(err).Int("score", customer.Score).Msg("no band for score")
		return requestErrorMessage(err)
	}

	req := contractx.IncreaseRequest{
		NationalID:     customer.NationalID,
		RequestedAt:    a.now().UTC(),
		CurrentLimit:   customer.CreditLimit,
		RequestedLimit: requested,
	}

	if requested <= maxApproved {
		if err := a.customers.UpdateLimit(ctx, customer.NationalID, requested); err != nil {
			logger.Warn().Err(err).Msg("limit update failed")
			return requestErrorMessage(err)
		}
		customer.CreditLimit = requested

		req.Status = contractx.RequestApproved
		if err := a.requests.Append(ctx, req); err != nil {
			logger.Warn().Err(err).Msg("request log append failed")
			return requestErrorMessage(err)
		}

		st.Credit.RequestProcessed = true
		st.Credit.RequestRejected = false
		logger.Info().Msg("limit increase approved")
		return approvedMessage(requested)
	}

	req.Status = contractx.RequestRejected
	if err := a.requests.Append(ctx, req); err != nil {
		logger.Warn().Err(err).Msg("request log append failed")
		return requestErrorMessage(err)
	}

	st.Credit.RequestRejected = true
	logger.Info().Float64("max_approved", maxApproved).Msg("limit increase rejected")
	return rejectedMessage(maxApproved)
}
