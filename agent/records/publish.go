package records

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	qstashx "github.com/tanpawarit/Chative-Banking-Dialogue/pkg/qstash"
)

type Publisher interface {
	Publish(ctx context.Context, payload any) (*qstashx.PublishResponse, error)
}

var _ contractx.RequestLog = (*PublishingLog)(nil)

// PublishingLog appends to the inner log and then fans the record out to a
// queue. Only the inner append decides success; publish failures are logged.
type PublishingLog struct {
	inner     contractx.RequestLog
	publisher Publisher
}

func NewPublishingLog(inner contractx.RequestLog, publisher Publisher) (*PublishingLog, error) {
	if inner == nil {
		return nil, errors.New("request log is required")
	}
	if publisher == nil {
		return nil, errors.New("publisher is required")
	}
	return &PublishingLog{inner: inner, publisher: publisher}, nil
}

func (p *PublishingLog) Append(ctx context.Context, req contractx.IncreaseRequest) error {
	if err := p.inner.Append(ctx, req); err != nil {
		return err
	}

	resp, err := p.publisher.Publish(ctx, req)
	if err != nil {
		log.Warn().Err(err).
			Str("status", string(req.Status)).
			Msg("increase request publish failed")
		return nil
	}
	if resp != nil {
		log.Debug().Str("message_id", resp.MessageID).Msg("increase request published")
	}
	return nil
}
