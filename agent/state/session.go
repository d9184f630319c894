package state

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Session is the persistent source-of-truth for one banking conversation.
// - Routing: ActiveAgent + Authenticated gate which sub-agent handles the turn
// - Slot filling: one typed slot struct per agent, cleared when the agent hands off
type Session struct {
	SessionID string `json:"session_id"`

	ActiveAgent   AgentName `json:"active_agent"`
	Authenticated bool      `json:"authenticated"`
	AuthAttempts  int       `json:"auth_attempts"`
	Customer      *Customer `json:"customer,omitempty"`

	Triage    TriageSlots    `json:"triage"`
	Credit    CreditSlots    `json:"credit"`
	Interview InterviewSlots `json:"interview"`
	Exchange  ExchangeSlots  `json:"exchange"`

	History []Turn `json:"history,omitempty"`
	Ended   bool   `json:"ended"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AgentName string

const (
	AgentTriage    AgentName = "triage"
	AgentCredit    AgentName = "credit"
	AgentInterview AgentName = "interview"
	AgentExchange  AgentName = "exchange"
)

func (a AgentName) Valid() bool {
	switch a {
	case AgentTriage, AgentCredit, AgentInterview, AgentExchange:
		return true
	default:
		return false
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// MaxAuthAttempts is the number of failed identity checks that ends a session.
const MaxAuthAttempts = 3

// Customer is the session's snapshot of the customer record.
type Customer struct {
	NationalID  string  `json:"national_id"`
	BirthDate   string  `json:"birth_date"`
	Name        string  `json:"name"`
	Score       int     `json:"score"`
	CreditLimit float64 `json:"credit_limit"`
}

/* --------------------------------- Slots --------------------------------- */

type TriageStep string

const (
	StepAwaitNationalID TriageStep = "await_national_id"
	StepAwaitBirthDate  TriageStep = "await_birth_date"
	StepRouting         TriageStep = "routing"
)

type TriageSlots struct {
	Step       TriageStep `json:"step"`
	NationalID string     `json:"national_id,omitempty"`
	BirthDate  string     `json:"birth_date,omitempty"`
}

type CreditSlots struct {
	RequestProcessed bool `json:"request_processed,omitempty"`
	RequestRejected  bool `json:"request_rejected,omitempty"`
}

type InterviewStep string

const (
	StepAskIncome     InterviewStep = "ask_income"
	StepAskEmployment InterviewStep = "ask_employment"
	StepAskExpenses   InterviewStep = "ask_expenses"
	StepAskDependents InterviewStep = "ask_dependents"
	StepAskDebt       InterviewStep = "ask_debt"
)

type EmploymentType string

const (
	EmploymentFormal       EmploymentType = "formal"
	EmploymentSelfEmployed EmploymentType = "self_employed"
	EmploymentUnemployed   EmploymentType = "unemployed"
)

// Dependents buckets; anything from three upwards collapses into DependentsThreePlus.
const (
	DependentsNone      = "0"
	DependentsOne       = "1"
	DependentsTwo       = "2"
	DependentsThreePlus = "3+"
)

type InterviewSlots struct {
	Step           InterviewStep  `json:"step,omitempty"`
	MonthlyIncome  *float64       `json:"monthly_income,omitempty"`
	EmploymentType EmploymentType `json:"employment_type,omitempty"`
	FixedExpenses  *float64       `json:"fixed_expenses,omitempty"`
	Dependents     string         `json:"dependents,omitempty"`
	HasDebt        *bool          `json:"has_debt,omitempty"`
}

// Complete reports whether every interview answer has been collected.
func (s InterviewSlots) Complete() bool {
	return s.MonthlyIncome != nil &&
		s.EmploymentType != "" &&
		s.FixedExpenses != nil &&
		s.Dependents != "" &&
		s.HasDebt != nil
}

type ExchangeSlots struct {
	QuoteGiven bool `json:"quote_given,omitempty"`
}

/* ---------------------------- Session helpers ---------------------------- */

var (
	ErrNilSession        = errors.New("session is nil")
	ErrInvalidTransition = errors.New("invalid session transition")
)

func NewSession(sessionID string, now time.Time) *Session {
	return &Session{
		SessionID:   sessionID,
		ActiveAgent: AgentTriage,
		Triage:      TriageSlots{Step: StepAwaitNationalID},
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *Session) AppendTurn(role Role, text string, now time.Time) {
	s.History = append(s.History, Turn{Role: role, Text: text, At: now.UTC()})
}

// LastUserUtterance returns the most recent user turn, or "" when there is none.
func (s *Session) LastUserUtterance() string {
	if s == nil {
		return ""
	}
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Role == RoleUser {
			return s.History[i].Text
		}
	}
	return ""
}

// Authenticate records a successful identity check.
func (s *Session) Authenticate(c Customer) {
	snapshot := c
	s.Authenticated = true
	s.Customer = &snapshot
	s.AuthAttempts = 0
	s.Triage = TriageSlots{Step: StepRouting}
}

// ResetIdentity clears collected identity slots so the gate starts over.
func (s *Session) ResetIdentity() {
	s.Triage = TriageSlots{Step: StepAwaitNationalID}
}

// SwitchAgent moves control to another sub-agent. Only triage is reachable
// before authentication.
func (s *Session) SwitchAgent(next AgentName) error {
	if !next.Valid() {
		return fmt.Errorf("%w: unknown agent %q", ErrInvalidTransition, next)
	}
	if next != AgentTriage && !s.Authenticated {
		return fmt.Errorf("%w: %s requires authentication", ErrInvalidTransition, next)
	}
	s.ActiveAgent = next
	return nil
}

// ClearServiceFlags drops the per-service flags when returning to the main menu.
func (s *Session) ClearServiceFlags() {
	s.Credit = CreditSlots{}
	s.Exchange = ExchangeSlots{}
}

func (s *Session) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return errors.New("session id is empty")
	}
	if !s.ActiveAgent.Valid() {
		return fmt.Errorf("unknown active agent %q", s.ActiveAgent)
	}
	if s.AuthAttempts < 0 || s.AuthAttempts > MaxAuthAttempts {
		return fmt.Errorf("auth attempts out of range: %d", s.AuthAttempts)
	}
	if s.Authenticated && s.Customer == nil {
		return errors.New("authenticated session must carry a customer snapshot")
	}
	if s.ActiveAgent != AgentTriage && !s.Authenticated {
		return fmt.Errorf("agent %s is active on an unauthenticated session", s.ActiveAgent)
	}
	return nil
}
