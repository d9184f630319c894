package contract

import "time"

type PromptName string

const (
	PromptNegation PromptName = "negation"
	PromptIntent   PromptName = "intent"
	PromptQuote    PromptName = "quote"
)

// ModelRole groups prompts by the model that serves them.
type ModelRole string

const (
	ModelRoleClassifier ModelRole = "classifier"
	ModelRoleSummarizer ModelRole = "summarizer"
)

func (p PromptName) Role() ModelRole {
	if p == PromptQuote {
		return ModelRoleSummarizer
	}
	return ModelRoleClassifier
}

type ScoreBand struct {
	Min      int     `json:"score_min"`
	Max      int     `json:"score_max"`
	MaxLimit float64 `json:"max_limit"`
}

func (b ScoreBand) Covers(score int) bool {
	return score >= b.Min && score <= b.Max
}

type RequestStatus string

const (
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type IncreaseRequest struct {
	NationalID     string        `json:"national_id"`
	RequestedAt    time.Time     `json:"requested_at"`
	CurrentLimit   float64       `json:"current_limit"`
	RequestedLimit float64       `json:"requested_limit"`
	Status         RequestStatus `json:"status"`
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}
