package payment

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// IQueue is the durable job queue. Enqueue is idempotent per key:
// re-enqueuing an existing key is a no-op, not a second job.
type IQueue interface {
	Enqueue(ctx context.Context, key string, payload []byte) error
}

// Service is the submission pipeline: it validates input, rejects
// duplicates, persists the pending record and enqueues the processing
// job. Processing itself happens asynchronously in the consumer.
type Service struct {
	repository IRepository
	queue      IQueue
}

func NewService(repository IRepository, queue IQueue) *Service {
	return &Service{repository: repository, queue: queue}
}

func (s *Service) Submit(ctx context.Context, input PostInput) (*Payment, error) {
	correlationId, err := NewCorrelationId(input.CorrelationId)
	if err != nil {
		return nil, err
	}
	amount, err := NewMoney(input.Amount)
	if err != nil {
		return nil, err
	}

	existing, err := s.repository.FindByCorrelationId(ctx, correlationId)
	if err != nil {
		return nil, s.internal(err, "duplicate lookup failed")
	}
	if existing != nil {
		log.Debug().Str("correlationId", correlationId.String()).Msg("duplicate payment rejected")
		return nil, ErrAlreadyExists
	}

	pending := NewPayment(correlationId, amount)
	if err := s.repository.Upsert(ctx, pending); err != nil {
		return nil, s.internal(err, "pending upsert failed")
	}

	job, err := json.Marshal(JobPayload{
		CorrelationId: correlationId.String(),
		Amount:        amount.Float64(),
	})
	if err != nil {
		return nil, s.internal(err, "job marshal failed")
	}
	if err := s.queue.Enqueue(ctx, correlationId.String(), job); err != nil {
		return nil, s.internal(err, "enqueue failed")
	}

	log.Debug().
		Str("correlationId", correlationId.String()).
		Str("amount", amount.String()).
		Msg("payment accepted")
	return pending, nil
}

func (s *Service) Summary(ctx context.Context, summaryDate SummaryDate) (*ProcessorsSummary, error) {
	summary, err := s.repository.AggregateSummary(ctx, summaryDate)
	if err != nil {
		return nil, s.internal(err, "summary aggregation failed")
	}
	return summary, nil
}

func (s *Service) Purge(ctx context.Context) error {
	if err := s.repository.DeleteAll(ctx); err != nil {
		return s.internal(err, "purge failed")
	}
	return nil
}

// internal hides unexpected failures behind the generic internal error
// so storage details never leak to the caller.
func (s *Service) internal(err error, msg string) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	log.Error().Err(err).Msg(msg)
	return ErrInternal
}
