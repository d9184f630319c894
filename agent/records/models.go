package records

import (
	"time"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
	"github.com/uptrace/bun"
)

type CustomerRow struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	NationalID  string  `bun:"national_id,pk"`
	BirthDate   string  `bun:"birth_date,notnull"`
	Name        string  `bun:"name,notnull"`
	Score       int     `bun:"score,notnull"`
	CreditLimit float64 `bun:"credit_limit,notnull"`
}

func (r CustomerRow) toCustomer() *statex.Customer {
	return &statex.Customer{
		NationalID:  r.NationalID,
		BirthDate:   r.BirthDate,
		Name:        r.Name,
		Score:       r.Score,
		CreditLimit: r.CreditLimit,
	}
}

// ScoreBandRow rows are matched in (position, id) order.
type ScoreBandRow struct {
	bun.BaseModel `bun:"table:score_bands,alias:sb"`

	ID       int64   `bun:"id,pk,autoincrement"`
	Position int     `bun:"position,notnull"`
	ScoreMin int     `bun:"score_min,notnull"`
	ScoreMax int     `bun:"score_max,notnull"`
	MaxLimit float64 `bun:"max_limit,notnull"`
}

type IncreaseRequestRow struct {
	bun.BaseModel `bun:"table:increase_requests,alias:ir"`

	ID             int64     `bun:"id,pk,autoincrement"`
	NationalID     string    `bun:"national_id,notnull"`
	RequestedAt    time.Time `bun:"requested_at,notnull"`
	CurrentLimit   float64   `bun:"current_limit,notnull"`
	RequestedLimit float64   `bun:"requested_limit,notnull"`
	Status         string    `bun:"status,notnull"`
}

func newIncreaseRequestRow(req contractx.IncreaseRequest) *IncreaseRequestRow {
	return &IncreaseRequestRow{
		NationalID:     req.NationalID,
		RequestedAt:    req.RequestedAt.UTC(),
		CurrentLimit:   req.CurrentLimit,
		RequestedLimit: req.RequestedLimit,
		Status:         string(req.Status),
	}
}
