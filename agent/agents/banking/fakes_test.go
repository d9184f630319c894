package banking

import (
	"context"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
)

type oracleCall struct {
	prompt contractx.PromptName
	vars   map[string]any
}

type fakeOracle struct {
	mu      sync.Mutex
	answers map[contractx.PromptName]string
	errs    map[contractx.PromptName]error
	calls   []oracleCall
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		answers: map[contractx.PromptName]string{
			contractx.PromptNegation: "NAO",
			contractx.PromptIntent:   "outros",
			contractx.PromptQuote:    "A cotação atual é R$ 5,10.",
		},
		errs: map[contractx.PromptName]error{},
	}
}

func (f *fakeOracle) Complete(ctx context.Context, prompt contractx.PromptName, vars map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, oracleCall{prompt: prompt, vars: vars})
	if err := f.errs[prompt]; err != nil {
		return "", err
	}
	return f.answers[prompt], nil
}

func (f *fakeOracle) count(prompt contractx.PromptName) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.prompt == prompt {
			n++
		}
	}
	return n
}

type searchCall struct {
	query      string
	maxResults int
}

type fakeMarket struct {
	results []contractx.SearchResult
	err     error
	calls   []searchCall
}

func (f *fakeMarket) Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchResult, error) {
	f.calls = append(f.calls, searchCall{query: query, maxResults: maxResults})
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeCustomers struct {
	rows     map[string]statex.Customer
	findErr  error
	limitErr error
	scoreErr error
}

func newFakeCustomers(rows ...statex.Customer) *fakeCustomers {
	f := &fakeCustomers{rows: map[string]statex.Customer{}}
	for _, r := range rows {
		f.rows[r.NationalID] = r
	}
	return f
}

func (f *fakeCustomers) FindByIDAndBirthDate(ctx context.Context, nationalID, birthDate string) (*statex.Customer, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	c, ok := f.rows[nationalID]
	if !ok || c.BirthDate != birthDate {
		return nil, contractx.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCustomers) UpdateLimit(ctx context.Context, nationalID string, limit float64) error {
	if f.limitErr != nil {
		return f.limitErr
	}
	c, ok := f.rows[nationalID]
	if !ok {
		return contractx.ErrNotFound
	}
	c.CreditLimit = limit
	f.rows[nationalID] = c
	return nil
}

func (f *fakeCustomers) UpdateScore(ctx context.Context, nationalID string, score int) error {
	if f.scoreErr != nil {
		return f.scoreErr
	}
	c, ok := f.rows[nationalID]
	if !ok {
		return contractx.ErrNotFound
	}
	c.Score = score
	f.rows[nationalID] = c
	return nil
}

type fakeBands struct {
	bands []contractx.ScoreBand
	err   error
}

func (f *fakeBands) AllBands(ctx context.Context) ([]contractx.ScoreBand, error) {
	return f.bands, f.err
}

type fakeRequestLog struct {
	entries []contractx.IncreaseRequest
	err     error
}

func (f *fakeRequestLog) Append(ctx context.Context, req contractx.IncreaseRequest) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, req)
	return nil
}

var testBands = []contractx.ScoreBand{
	{Min: 0, Max: 199, MaxLimit: 1000},
	{Min: 200, Max: 399, MaxLimit: 2000},
	{Min: 400, Max: 599, MaxLimit: 5000},
	{Min: 600, Max: 799, MaxLimit: 10000},
	{Min: 800, Max: 1000, MaxLimit: 15000},
}

var joao = statex.Customer{
	NationalID:  "12345678901",
	BirthDate:   "1990-05-15",
	Name:        "João Silva",
	Score:       650,
	CreditLimit: 5000,
}

type harness struct {
	agent     *Agent
	oracle    *fakeOracle
	market    *fakeMarket
	customers *fakeCustomers
	bands     *fakeBands
	requests  *fakeRequestLog
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		oracle: newFakeOracle(),
		market: &fakeMarket{results: []contractx.SearchResult{
			{Title: "Banco Central", Content: "Dólar comercial fecha a R$ 5,10"},
		}},
		customers: newFakeCustomers(joao),
		bands:     &fakeBands{bands: testBands},
		requests:  &fakeRequestLog{},
	}

	fixed := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	agent, err := New(Deps{
		Oracle:    h.oracle,
		Market:    h.market,
		Customers: h.customers,
		Bands:     h.bands,
		Requests:  h.requests,
		Now:       func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.agent = agent
	return h
}

func (h *harness) send(t *testing.T, st *statex.Session, text string) string {
	t.Helper()
	reply, err := h.agent.ProcessMessage(context.Background(), st, text)
	if err != nil {
		t.Fatalf("ProcessMessage(%q) error = %v", text, err)
	}
	return reply
}

// authenticated returns a session that has passed the gate as João.
func (h *harness) authenticated(t *testing.T) *statex.Session {
	t.Helper()
	st := statex.NewSession("s-1", time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC))
	h.send(t, st, "123.456.789-01")
	h.send(t, st, "15/05/1990")
	if !st.Authenticated {
		t.Fatal("session not authenticated")
	}
	return st
}
