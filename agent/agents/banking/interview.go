package banking

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

var (
	debtAffirmatives     = []string{"sim", "yes"}
	debtNegativeKeywords = []string{"não", "nao", "nenhuma", "none"}
	debtPositiveKeywords = []string{"tenho", "possuo"}
)

func (a *Agent) startInterview(st *statex.Session) string {
	if err := st.SwitchAgent(statex.AgentInterview); err != nil {
		return msgIntentUnavailable
	}
	st.Interview = statex.InterviewSlots{Step: statex.StepAskIncome}
	return msgInterviewStart
}

// handleInterview fills exactly one slot per turn. Steps only move forward, so
// an answered question cannot be overwritten later in the same interview.
func (a *Agent) handleInterview(ctx context.Context, st *statex.Session, text string) string {
	iv := &st.Interview

	switch iv.Step {
	case statex.StepAskIncome, "":
		v, ok := extractAmount(text)
		if !ok {
			return msgAskIncomeRetry
		}
		iv.MonthlyIncome = &v
		iv.Step = statex.StepAskEmployment
		return msgAskEmployment

	case statex.StepAskEmployment:
		kind, ok := parseEmployment(text)
		if !ok {
			return msgAskEmploymentRetry
		}
		iv.EmploymentType = kind
		iv.Step = statex.StepAskExpenses
		return msgAskExpenses

	case statex.StepAskExpenses:
		v, ok := extractAmount(text)
		if !ok {
			return msgAskExpensesRetry
		}
		iv.FixedExpenses = &v
		iv.Step = statex.StepAskDependents
		return msgAskDependents

	case statex.StepAskDependents:
		dep, ok := parseDependents(text)
		if !ok {
			return msgAskDependentsRetry
		}
		iv.Dependents = dep
		iv.Step = statex.StepAskDebt
		return msgAskDebt

	case statex.StepAskDebt:
		debt, ok := parseDebt(text)
		if !ok {
			return msgAskDebtRetry
		}
		iv.HasDebt = &debt
		return a.completeInterview(ctx, st)
	}

	return msgAskIncomeRetry
}

func (a *Agent) completeInterview(ctx context.Context, st *statex.Session) string {
	in, err := scoreInputFromSlots(st.Interview)
	if err != nil {
		return requestErrorMessage(err)
	}

	oldScore := st.Customer.Score
	newScore := ComputeScore(in)

	if err := a.customers.UpdateScore(ctx, st.Customer.NationalID, newScore); err != nil {
		log.Warn().Err(err).Str("session_id", st.SessionID).Msg("score update failed")
		st.Interview.HasDebt = nil
		return requestErrorMessage(err)
	}
	st.Customer.Score = newScore

	log.Info().
		Str("session_id", st.SessionID).
		Str("national_id", maskNationalID(st.Customer.NationalID)).
		Int("old_score", oldScore).
		Int("new_score", newScore).
		Msg("interview completed")

	st.Interview = statex.InterviewSlots{}
	st.Credit.RequestRejected = false
	_ = st.SwitchAgent(statex.AgentCredit)
	return interviewDoneMessage(oldScore, newScore)
}

// parseEmployment checks options in menu order; digits match anywhere in text.
func parseEmployment(text string) (statex.EmploymentType, bool) {
	lower := normalize(text)
	switch {
	case containsAny(lower, []string{"formal", "clt"}) || strings.Contains(text, "1"):
		return statex.EmploymentFormal, true
	case containsAny(lower, []string{"autônomo", "autonomo", "self", "freelanc"}) || strings.Contains(text, "2"):
		return statex.EmploymentSelfEmployed, true
	case containsAny(lower, []string{"desempregado", "unemployed"}) || strings.Contains(text, "3"):
		return statex.EmploymentUnemployed, true
	}
	return "", false
}

func parseDependents(text string) (string, bool) {
	switch {
	case strings.Contains(text, "0"):
		return statex.DependentsNone, true
	case strings.Contains(text, "1"):
		return statex.DependentsOne, true
	case strings.Contains(text, "2"):
		return statex.DependentsTwo, true
	case strings.Contains(text, "3"), strings.Contains(text, "+"):
		return statex.DependentsThreePlus, true
	}
	return "", false
}

// parseDebt: "sim" wins, then negatives ("não tenho" is a no), then
// "tenho"/"possuo". A bare "no" counts only as the whole reply.
func parseDebt(text string) (bool, bool) {
	lower := normalize(text)
	switch {
	case containsWord(lower, debtAffirmatives...):
		return true, true
	case containsWord(lower, debtNegativeKeywords...), wholeReply(lower, "no"):
		return false, true
	case containsWord(lower, debtPositiveKeywords...):
		return true, true
	}
	return false, false
}
