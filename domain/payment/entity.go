package payment

import (
	"time"

	"github.com/google/uuid"
)

type ProcessorType string

const (
	ProcessorDefault  ProcessorType = "default"
	ProcessorFallback ProcessorType = "fallback"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// CorrelationId is the client-supplied UUID identifying a submission.
// It doubles as the idempotency key for the store and the queue.
type CorrelationId string

func NewCorrelationId(value string) (CorrelationId, error) {
	if value == "" {
		return "", ErrInvalidCorrelationId
	}
	if _, err := uuid.Parse(value); err != nil {
		return "", ErrInvalidCorrelationId
	}
	return CorrelationId(value), nil
}

func (c CorrelationId) String() string {
	return string(c)
}

// HealthStatus is a snapshot of one probe of a processor's health
// endpoint. Snapshots are cached whole and never merged.
type HealthStatus struct {
	Failing         bool      `json:"failing"`
	MinResponseTime int       `json:"minResponseTime"`
	LastChecked     time.Time `json:"lastChecked"`
}

// Payment is the durable record of one submission. Amount and
// RequestedAt are fixed at creation; the status moves from pending to
// exactly one terminal state, and a processed payment always carries
// Processor, ProcessedAt and Fee together.
type Payment struct {
	CorrelationId CorrelationId
	Amount        Money
	RequestedAt   time.Time
	Processor     ProcessorType
	Status        Status
	ProcessedAt   *time.Time
	Fee           *Money
}

func NewPayment(correlationId CorrelationId, amount Money) *Payment {
	return &Payment{
		CorrelationId: correlationId,
		Amount:        amount,
		RequestedAt:   time.Now().UTC(),
		Processor:     ProcessorDefault,
		Status:        StatusPending,
	}
}

func (p *Payment) MarkProcessed(processor ProcessorType, feeRate float64) error {
	fee, err := p.Amount.Fee(feeRate)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	p.Status = StatusProcessed
	p.Processor = processor
	p.ProcessedAt = &now
	p.Fee = &fee
	return nil
}

func (p *Payment) MarkFailed() {
	p.Status = StatusFailed
	p.ProcessedAt = nil
	p.Fee = nil
}

func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

func (p *Payment) IsProcessed() bool {
	return p.Status == StatusProcessed
}
