package banking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

const quoteSearchResults = 3

var creditHandoffKeywords = []string{"limite", "aumento", "credito", "crédito", "cartão", "credit", "limit"}

var currencySynonyms = []struct {
	name     string
	keywords []string
}{
	{name: "dólar", keywords: []string{"dolar", "dólar", "dollar", "usd"}},
	{name: "euro", keywords: []string{"euro", "eur"}},
	{name: "libra", keywords: []string{"libra", "pound", "gbp"}},
	{name: "peso argentino", keywords: []string{"peso"}},
}

var errNoQuoteResults = errors.New("nenhum resultado encontrado")

// IdentifyCurrency maps a currency name or code in text to its canonical name.
func IdentifyCurrency(text string) (string, bool) {
	lower := normalize(text)
	for _, c := range currencySynonyms {
		if containsAny(lower, c.keywords) {
			return c.name, true
		}
	}
	return "", false
}

func (a *Agent) handleExchange(ctx context.Context, st *statex.Session, text string) string {
	if st.Exchange.QuoteGiven {
		if containsAny(normalize(text), creditHandoffKeywords) {
			st.Exchange.QuoteGiven = false
			if err := st.SwitchAgent(statex.AgentCredit); err != nil {
				return msgIntentUnavailable
			}
			return a.enterCredit(ctx, st)
		}
		if a.isNegative(ctx, questionAnotherCurrency, text) {
			return a.finish(st)
		}
	}

	currency, ok := IdentifyCurrency(text)
	if !ok {
		if !st.Exchange.QuoteGiven {
			return msgAskCurrencyRetry
		}
		currency = strings.TrimSpace(text)
	}

	quote, err := a.lookupQuote(ctx, currency)
	if err != nil {
		log.Warn().Err(err).Str("session_id", st.SessionID).Str("currency", currency).Msg("quote lookup failed")
		return quoteErrorMessage(err)
	}

	st.Exchange.QuoteGiven = true
	return quoteMessage(currency, quote)
}

func (a *Agent) lookupQuote(ctx context.Context, currency string) (string, error) {
	results, err := a.market.Search(ctx, fmt.Sprintf("cotação %s hoje Brasil", currency), quoteSearchResults)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", errNoQuoteResults
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		title := r.Title
		if title == "" {
			title = "N/A"
		}
		parts = append(parts, "Fonte: "+title+"\n"+r.Content)
	}

	return a.oracle.Complete(ctx, contractx.PromptQuote, map[string]any{
		"currency": currency,
		"results":  strings.Join(parts, "\n\n"),
	})
}
