package records

import (
	"context"
	"fmt"
)

// DefaultCustomers are the demo accounts loaded by Seed.
var DefaultCustomers = []CustomerRow{
	{NationalID: "12345678901", BirthDate: "1990-05-15", Name: "João Silva", Score: 650, CreditLimit: 5000},
	{NationalID: "98765432100", BirthDate: "1985-08-22", Name: "Maria Santos", Score: 820, CreditLimit: 10000},
	{NationalID: "11122233344", BirthDate: "1992-03-10", Name: "Pedro Oliveira", Score: 420, CreditLimit: 2000},
	{NationalID: "55566677788", BirthDate: "1988-11-30", Name: "Ana Costa", Score: 300, CreditLimit: 1500},
}

// DefaultScoreBands cover 0..1000 without overlap.
var DefaultScoreBands = []ScoreBandRow{
	{Position: 1, ScoreMin: 0, ScoreMax: 199, MaxLimit: 1000},
	{Position: 2, ScoreMin: 200, ScoreMax: 399, MaxLimit: 2000},
	{Position: 3, ScoreMin: 400, ScoreMax: 599, MaxLimit: 5000},
	{Position: 4, ScoreMin: 600, ScoreMax: 799, MaxLimit: 10000},
	{Position: 5, ScoreMin: 800, ScoreMax: 1000, MaxLimit: 15000},
}

// Seed loads the demo customers and, when the table is empty, the band table.
// Existing customers are left untouched.
func (s *Store) Seed(ctx context.Context) error {
	customers := make([]CustomerRow, len(DefaultCustomers))
	copy(customers, DefaultCustomers)
	if _, err := s.db.NewInsert().
		Model(&customers).
		On("CONFLICT (national_id) DO NOTHING").
		Exec(ctx); err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}

	n, err := s.db.NewSelect().Model((*ScoreBandRow)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count score bands: %w", err)
	}
	if n > 0 {
		return nil
	}

	bands := make([]ScoreBandRow, len(DefaultScoreBands))
	copy(bands, DefaultScoreBands)
	if _, err := s.db.NewInsert().Model(&bands).Exec(ctx); err != nil {
		return fmt.Errorf("seed score bands: %w", err)
	}
	return nil
}
