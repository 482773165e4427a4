package payment

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"payment-gateway/infrastructure/config"
	"payment-gateway/infrastructure/queue"
)

const consumerQueue = "payment-workers"

type IConsumer interface {
	Start() error
	Close()
}

// natsConsumer runs a fixed pool of workers over the payments stream.
// Delivery is at least once; a failed attempt is NAKed with an
// exponential delay and the server redelivers up to MaxDeliver times.
type natsConsumer struct {
	paymentQueue *queue.PaymentQueue
	orchestrator *Orchestrator

	workerCount int
	maxDeliver  int
	ackWait     time.Duration
	backoffBase time.Duration
	jitterMax   time.Duration

	ctx       context.Context
	cancelCtx context.CancelFunc
	wg        sync.WaitGroup
}

func NewConsumer(paymentQueue *queue.PaymentQueue, orchestrator *Orchestrator, cfg *config.Config) IConsumer {
	ctx, cancelCtx := context.WithCancel(context.Background())

	return &natsConsumer{
		paymentQueue: paymentQueue,
		orchestrator: orchestrator,
		workerCount:  cfg.WorkerCount,
		maxDeliver:   cfg.MaxDeliver,
		ackWait:      cfg.ConsumerAckWait,
		backoffBase:  cfg.RetryBackoffBase,
		jitterMax:    cfg.RetryBackoffJitter,
		ctx:          ctx,
		cancelCtx:    cancelCtx,
	}
}

func (c *natsConsumer) Start() error {
	sub, err := c.paymentQueue.JetStream.QueueSubscribeSync(
		c.paymentQueue.Subject,
		consumerQueue,
		nats.AckWait(c.ackWait),
		nats.ManualAck(),
		nats.DeliverAll(),
		nats.MaxDeliver(c.maxDeliver),
		nats.MaxAckPending(c.workerCount),
	)
	if err != nil {
		return err
	}

	log.Info().Int("workers", c.workerCount).Msg("payment consumer started")

	for i := 0; i < c.workerCount; i++ {
		c.wg.Add(1)
		go c.worker(sub)
	}

	c.wg.Wait()
	return sub.Unsubscribe()
}

func (c *natsConsumer) worker(sub *nats.Subscription) {
	defer c.wg.Done()
	for {
		msg, err := sub.NextMsgWithContext(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			continue
		}
		c.processMessage(msg)
	}
}

func (c *natsConsumer) processMessage(msg *nats.Msg) {
	var payload JobPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Error().Err(err).Msg("malformed job payload, terminating delivery")
		msg.Term()
		return
	}

	err := timed("process_payment", func() error {
		return c.orchestrator.Process(c.ctx, payload)
	})
	if err == nil {
		msg.Ack()
		return
	}

	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind == KindValidation {
		// Redelivering an invalid payload can never succeed.
		log.Error().Err(err).Str("correlationId", payload.CorrelationId).Msg("invalid job payload, terminating delivery")
		msg.Term()
		return
	}

	deliveries := c.deliveryCount(msg)
	if deliveries >= c.maxDeliver {
		// Attempt budget exhausted. The failed payment row written by
		// the orchestrator stays authoritative.
		log.Warn().
			Str("correlationId", payload.CorrelationId).
			Int("deliveries", deliveries).
			Msg("job abandoned after max deliveries")
		msg.Term()
		return
	}

	msg.NakWithDelay(c.backoff(deliveries))
}

func (c *natsConsumer) deliveryCount(msg *nats.Msg) int {
	meta, err := msg.Metadata()
	if err != nil {
		return c.maxDeliver
	}
	return int(meta.NumDelivered)
}

// backoff doubles per delivery starting at the base delay, with jitter
// so redeliveries of a burst do not line up.
func (c *natsConsumer) backoff(deliveries int) time.Duration {
	if deliveries < 1 {
		deliveries = 1
	}
	delay := c.backoffBase * time.Duration(1<<(deliveries-1))
	return delay + time.Duration(rand.Int63n(int64(c.jitterMax)))
}

func (c *natsConsumer) Close() {
	c.cancelCtx()
	c.wg.Wait()
}
