package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("record not found")
	ErrNoScoreBand     = errors.New("no score band covers score")
	ErrSearch          = errors.New("market data search failed")
	ErrSessionEnded    = errors.New("session has ended")
)
