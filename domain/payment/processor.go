package payment

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"payment-gateway/infrastructure/config"
)

// IHealthStore is the shared health cache and probe rate limiter.
// CanCheckHealth atomically claims the probe permit for the current
// window; only one caller across all workers gets true per window.
type IHealthStore interface {
	GetHealthStatus(ctx context.Context, processor ProcessorType) (*HealthStatus, error)
	SetHealthStatus(ctx context.Context, processor ProcessorType, status HealthStatus) error
	CanCheckHealth(ctx context.Context, processor ProcessorType) (bool, error)
}

// IProcessorClient talks to one external processor endpoint.
type IProcessorClient interface {
	Submit(ctx context.Context, processor config.Processor, payload JobPayload, requestedAt time.Time) error
	CheckHealth(ctx context.Context, processor config.Processor) (HealthStatus, error)
}

// Orchestrator executes one processing job: it resolves the default
// processor's health (live probe when the shared permit allows it,
// cached snapshot otherwise), applies the selection policy, submits
// the payment with a single fallback attempt and persists the
// terminal state.
type Orchestrator struct {
	repository IRepository
	health     IHealthStore
	client     IProcessorClient

	defaultProcessor  config.Processor
	fallbackProcessor config.Processor
}

func NewOrchestrator(
	repository IRepository, health IHealthStore, client IProcessorClient, cfg *config.Config,
) *Orchestrator {
	return &Orchestrator{
		repository:        repository,
		health:            health,
		client:            client,
		defaultProcessor:  cfg.DefaultProcessor,
		fallbackProcessor: cfg.FallbackProcessor,
	}
}

// Process runs one job attempt. A returned error means both attempts
// failed and the job should be redelivered by the queue; the failed
// payment row has already been written by then.
func (o *Orchestrator) Process(ctx context.Context, payload JobPayload) error {
	correlationId, err := NewCorrelationId(payload.CorrelationId)
	if err != nil {
		return err
	}
	amount, err := NewMoney(payload.Amount)
	if err != nil {
		return err
	}

	payment, err := o.repository.FindByCorrelationId(ctx, correlationId)
	if err != nil {
		return err
	}
	if payment == nil {
		payment = NewPayment(correlationId, amount)
	}
	if payment.IsProcessed() {
		// A previous delivery already landed this payment.
		return nil
	}

	chosen := o.chooseProcessor(ctx)

	if err := o.submit(ctx, chosen, payload, payment.RequestedAt); err == nil {
		return o.persistProcessed(ctx, payment, chosen)
	}

	// One-shot fallback, only when the first choice was default.
	if chosen.Name == o.defaultProcessor.Name {
		if err := o.submit(ctx, o.fallbackProcessor, payload, payment.RequestedAt); err == nil {
			return o.persistProcessed(ctx, payment, o.fallbackProcessor)
		}
	}

	payment.MarkFailed()
	if err := o.repository.Upsert(ctx, payment); err != nil {
		return err
	}
	log.Warn().
		Str("correlationId", correlationId.String()).
		Msg("both processors unavailable, payment marked failed")
	return ErrProcessorUnavailable
}

func (o *Orchestrator) chooseProcessor(ctx context.Context) config.Processor {
	health := o.resolveDefaultHealth(ctx)
	if SelectProcessor(health) == ProcessorFallback {
		return o.fallbackProcessor
	}
	return o.defaultProcessor
}

// resolveDefaultHealth returns the freshest health snapshot the rate
// limit allows: a live probe when this worker wins the permit, the
// cached snapshot otherwise. Probe failures are cached pessimistically
// so routing treats the processor as down until a probe succeeds.
func (o *Orchestrator) resolveDefaultHealth(ctx context.Context) *HealthStatus {
	allowed, err := o.health.CanCheckHealth(ctx, ProcessorDefault)
	if err != nil {
		log.Error().Err(err).Msg("health permit check failed")
		allowed = false
	}

	if !allowed {
		cached, err := o.health.GetHealthStatus(ctx, ProcessorDefault)
		if err != nil {
			log.Error().Err(err).Msg("health cache read failed")
			return nil
		}
		return cached
	}

	status, err := o.client.CheckHealth(ctx, o.defaultProcessor)
	if err != nil {
		log.Warn().Err(err).Str("processor", o.defaultProcessor.Name).Msg("health probe failed")
		status = HealthStatus{Failing: true, MinResponseTime: 0, LastChecked: time.Now().UTC()}
	}
	if err := o.health.SetHealthStatus(ctx, ProcessorDefault, status); err != nil {
		log.Error().Err(err).Msg("health cache write failed")
	}
	return &status
}

func (o *Orchestrator) submit(
	ctx context.Context, processor config.Processor, payload JobPayload, requestedAt time.Time,
) error {
	err := o.client.Submit(ctx, processor, payload, requestedAt)
	if err != nil {
		log.Debug().
			Err(err).
			Str("processor", processor.Name).
			Str("correlationId", payload.CorrelationId).
			Msg("processor submission failed")
	}
	return err
}

func (o *Orchestrator) persistProcessed(ctx context.Context, payment *Payment, processor config.Processor) error {
	if err := payment.MarkProcessed(ProcessorType(processor.Name), processor.FeeRate); err != nil {
		return err
	}
	if err := o.repository.Upsert(ctx, payment); err != nil {
		return err
	}
	log.Debug().
		Str("correlationId", payment.CorrelationId.String()).
		Str("processor", processor.Name).
		Msg("payment processed")
	return nil
}
