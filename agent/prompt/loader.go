package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/negation.txt
	negationRaw string

	//go:embed template/intent.txt
	intentRaw string

	//go:embed template/quote.txt
	quoteRaw string
)

// PromptSet holds loaded prompt content. Templates use FString placeholders:
// negation takes {context} and {message}, intent takes {message}, quote takes
// {currency} and {results}.
type PromptSet struct {
	System   string
	Negation string
	Intent   string
	Quote    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		System:   strings.TrimSpace(systemRaw),
		Negation: strings.TrimSpace(negationRaw),
		Intent:   strings.TrimSpace(intentRaw),
		Quote:    strings.TrimSpace(quoteRaw),
	}
}

// Template returns the user template registered for name.
func (p PromptSet) Template(name contractx.PromptName) (string, error) {
	var tpl string
	switch name {
	case contractx.PromptNegation:
		tpl = p.Negation
	case contractx.PromptIntent:
		tpl = p.Intent
	case contractx.PromptQuote:
		tpl = p.Quote
	default:
		return "", fmt.Errorf("%w: unknown prompt %q", contractx.ErrPromptMissing, name)
	}
	if strings.TrimSpace(tpl) == "" {
		return "", fmt.Errorf("%w: prompt %q is empty", contractx.ErrPromptMissing, name)
	}
	return tpl, nil
}

func (p PromptSet) Validate() error {
	if strings.TrimSpace(p.System) == "" {
		return fmt.Errorf("%w: system prompt is empty", contractx.ErrPromptMissing)
	}
	for _, name := range []contractx.PromptName{
		contractx.PromptNegation,
		contractx.PromptIntent,
		contractx.PromptQuote,
	} {
		if _, err := p.Template(name); err != nil {
			return err
		}
	}
	return nil
}
