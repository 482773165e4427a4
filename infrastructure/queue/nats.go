package queue

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"payment-gateway/infrastructure/config"
)

const (
	subject    = "payments"
	streamName = "PAYMENTS"
)

type PaymentQueue struct {
	JetStream  nats.JetStreamContext
	NatsConn   *nats.Conn
	Subject    string
	StreamName string
}

func NewPaymentQueue(cfg *config.Config) (*PaymentQueue, error) {
	natsURL := cfg.NatsURL
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	natsConn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}

	js, err := natsConn.JetStream()
	if err != nil {
		return nil, err
	}

	queue := &PaymentQueue{
		NatsConn:   natsConn,
		JetStream:  js,
		Subject:    subject,
		StreamName: streamName,
	}

	if err = queue.createStream(cfg.QueueDedupeWindow); err != nil {
		return nil, err
	}
	return queue, nil
}

func (q *PaymentQueue) createStream(dedupeWindow time.Duration) error {
	now := time.Now().UTC()
	streamCfg := nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subject},
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
		// Server-side msg-id dedupe window; publishes keyed by
		// correlation id collapse inside it.
		Duplicates: dedupeWindow,
		Replicas:   0,
	}
	stream, err := q.JetStream.AddStream(&streamCfg)
	if err != nil {
		return err
	}

	if stream.Created.After(now) {
		log.Info().Str("stream", streamName).Msg("stream created")
	}
	return nil
}

// Enqueue publishes one job. The message id is the job key, so a
// duplicate key inside the dedupe window is a no-op rather than a
// second job.
func (q *PaymentQueue) Enqueue(ctx context.Context, key string, payload []byte) error {
	_, err := q.JetStream.Publish(q.Subject, payload, nats.MsgId(key), nats.Context(ctx))
	return err
}

func (q *PaymentQueue) Purge() error {
	return q.JetStream.PurgeStream(q.StreamName)
}

func (q *PaymentQueue) Close() {
	q.NatsConn.Close()
}
