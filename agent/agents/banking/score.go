package banking

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

const (
	MinScore = 0
	MaxScore = 1000

	incomeWeight = 30
	debtWeight   = 100
)

var employmentWeight = map[statex.EmploymentType]int{
	statex.EmploymentFormal:       300,
	statex.EmploymentSelfEmployed: 200,
	statex.EmploymentUnemployed:   0,
}

var dependentsWeight = map[string]int{
	statex.DependentsNone:      100,
	statex.DependentsOne:       80,
	statex.DependentsTwo:       60,
	statex.DependentsThreePlus: 30,
}

type ScoreInput struct {
	MonthlyIncome  float64
	FixedExpenses  float64
	EmploymentType statex.EmploymentType
	Dependents     string
	HasDebt        bool
}

// ComputeScore truncates toward zero and clamps to [MinScore, MaxScore].
func ComputeScore(in ScoreInput) int {
	raw := (in.MonthlyIncome/(in.FixedExpenses+1))*incomeWeight +
		float64(employmentWeight[in.EmploymentType]) +
		float64(dependentsWeight[in.Dependents])
	if in.HasDebt {
		raw -= debtWeight
	} else {
		raw += debtWeight
	}

	switch {
	case raw >= MaxScore:
		return MaxScore
	case raw <= MinScore:
		return MinScore
	default:
		return int(raw)
	}
}

func scoreInputFromSlots(s statex.InterviewSlots) (ScoreInput, error) {
	if !s.Complete() {
		return ScoreInput{}, fmt.Errorf("%w: interview is incomplete", contractx.ErrValidation)
	}
	return ScoreInput{
		MonthlyIncome:  *s.MonthlyIncome,
		FixedExpenses:  *s.FixedExpenses,
		EmploymentType: s.EmploymentType,
		Dependents:     s.Dependents,
		HasDebt:        *s.HasDebt,
	}, nil
}

// MaxApprovedLimit returns the limit of the first band covering score, in
// the order the bands are given.
func MaxApprovedLimit(bands []contractx.ScoreBand, score int) (float64, error) {
	for _, b := range bands {
		if b.Covers(score) {
			return b.MaxLimit, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", contractx.ErrNoScoreBand, score)
}
