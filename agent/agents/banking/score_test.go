package banking

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

func TestComputeScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   ScoreInput
		want int
	}{
		{
			name: "formal no dependents no debt",
			in: ScoreInput{
				MonthlyIncome:  5000,
				FixedExpenses:  1000,
				EmploymentType: statex.EmploymentFormal,
				Dependents:     statex.DependentsNone,
				HasDebt:        false,
			},
			want: 649,
		},
		{
			name: "zero expenses uses guard",
			in: ScoreInput{
				MonthlyIncome:  10,
				FixedExpenses:  0,
				EmploymentType: statex.EmploymentSelfEmployed,
				Dependents:     statex.DependentsTwo,
				HasDebt:        true,
			},
			want: 460,
		},
		{
			name: "clamped high",
			in: ScoreInput{
				MonthlyIncome:  1_000_000,
				EmploymentType: statex.EmploymentFormal,
				Dependents:     statex.DependentsNone,
			},
			want: MaxScore,
		},
		{
			name: "clamped low",
			in: ScoreInput{
				EmploymentType: statex.EmploymentUnemployed,
				Dependents:     statex.DependentsThreePlus,
				HasDebt:        true,
			},
			want: MinScore,
		},
	}

	for _, tt := range tests {
		if got := ComputeScore(tt.in); got != tt.want {
			t.Fatalf("%s: ComputeScore() = %d, want %d", tt.name, got, tt.want)
		}
		if again := ComputeScore(tt.in); again != tt.want {
			t.Fatalf("%s: ComputeScore() not deterministic: %d", tt.name, again)
		}
	}
}

func TestComputeScoreStaysInRange(t *testing.T) {
	t.Parallel()

	employment := []statex.EmploymentType{statex.EmploymentFormal, statex.EmploymentSelfEmployed, statex.EmploymentUnemployed}
	dependents := []string{statex.DependentsNone, statex.DependentsOne, statex.DependentsTwo, statex.DependentsThreePlus}

	for income := 0.0; income <= 50000; income += 2500 {
		for expenses := 0.0; expenses <= 20000; expenses += 2500 {
			for _, e := range employment {
				for _, d := range dependents {
					for _, debt := range []bool{true, false} {
						got := ComputeScore(ScoreInput{income, expenses, e, d, debt})
						if got < MinScore || got > MaxScore {
							t.Fatalf("ComputeScore(%v, %v, %s, %s, %v) = %d out of range", income, expenses, e, d, debt, got)
						}
					}
				}
			}
		}
	}
}

func TestIncreaseEvaluationIsMonotonic(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	st := h.authenticated(t)

	threshold, err := MaxApprovedLimit(testBands, st.Customer.Score)
	if err != nil {
		t.Fatalf("MaxApprovedLimit() error = %v", err)
	}

	for _, requested := range []float64{100, threshold / 2, threshold, threshold + 0.01, threshold * 2} {
		st.Credit = statex.CreditSlots{}
		h.agent.evaluateIncrease(context.Background(), st, requested)

		wantApproved := requested <= threshold
		if st.Credit.RequestProcessed != wantApproved || st.Credit.RequestRejected == wantApproved {
			t.Fatalf("requested %v with threshold %v: credit = %+v", requested, threshold, st.Credit)
		}
	}
}

func TestMaxApprovedLimitFirstMatchWins(t *testing.T) {
	t.Parallel()

	overlapping := []contractx.ScoreBand{
		{Min: 0, Max: 700, MaxLimit: 3000},
		{Min: 600, Max: 1000, MaxLimit: 9000},
	}
	got, err := MaxApprovedLimit(overlapping, 650)
	if err != nil {
		t.Fatalf("MaxApprovedLimit() error = %v", err)
	}
	if got != 3000 {
		t.Fatalf("MaxApprovedLimit() = %v, want 3000", got)
	}

	if _, err := MaxApprovedLimit(nil, 500); !errors.Is(err, contractx.ErrNoScoreBand) {
		t.Fatalf("MaxApprovedLimit(nil) error = %v, want ErrNoScoreBand", err)
	}
}

func TestScoreInputFromIncompleteSlots(t *testing.T) {
	t.Parallel()

	income := 100.0
	if _, err := scoreInputFromSlots(statex.InterviewSlots{MonthlyIncome: &income}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("scoreInputFromSlots() error = %v, want ErrValidation", err)
	}
}
