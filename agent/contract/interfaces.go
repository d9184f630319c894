package contract

import (
	"context"

	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

// LanguageOracle renders a named prompt with vars and returns the model's text.
type LanguageOracle interface {
	Complete(ctx context.Context, prompt PromptName, vars map[string]any) (string, error)
}

type MarketData interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// CustomerStore returns ErrNotFound when no record matches.
type CustomerStore interface {
	FindByIDAndBirthDate(ctx context.Context, nationalID, birthDate string) (*statex.Customer, error)
	UpdateLimit(ctx context.Context, nationalID string, limit float64) error
	UpdateScore(ctx context.Context, nationalID string, score int) error
}

// ScoreBandStore returns bands in stored order.
type ScoreBandStore interface {
	AllBands(ctx context.Context) ([]ScoreBand, error)
}

type RequestLog interface {
	Append(ctx context.Context, req IncreaseRequest) error
}

// TurnProcessor advances one session by one user message.
type TurnProcessor interface {
	ProcessMessage(ctx context.Context, st *statex.Session, text string) (string, error)
}
