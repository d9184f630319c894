package banking

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

var terminationKeywords = []string{"tchau", "encerrar", "sair", "finalizar", "desligar", "até logo", "adeus", "goodbye"}

var negativeKeywords = []string{"não", "nao", "nada", "agora não", "deixa pra lá", "deixa pra la", "só isso", "nothing", "not now", "no thanks"}

// WantsToEnd reports whether text asks to close the conversation.
func WantsToEnd(text string) bool {
	lower := normalize(text)
	if lower == "" {
		return false
	}
	return containsAny(lower, terminationKeywords) || containsWord(lower, "bye")
}

func keywordNegative(text string) bool {
	lower := normalize(text)
	return containsAny(lower, negativeKeywords) || wholeReply(lower, "no", "deixa")
}

// isNegative asks the oracle whether text declines question. Oracle faults
// fall back to keyword matching.
func (a *Agent) isNegative(ctx context.Context, question, text string) bool {
	out, err := a.oracle.Complete(ctx, contractx.PromptNegation, map[string]any{
		"context": question,
		"message": text,
	})
	if err != nil {
		log.Warn().Err(err).Msg("negation oracle failed, using keyword fallback")
		return keywordNegative(text)
	}
	answer := strings.ToUpper(out)
	return strings.Contains(answer, "SIM") || strings.Contains(answer, "YES")
}

func (a *Agent) finish(st *statex.Session) string {
	st.Ended = true
	return msgFarewell
}
