package payment

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type IRepository interface {
	// Upsert writes the payment keyed by correlation id. The write is
	// atomic per key and last-write-wins, so pipeline retries and
	// worker retries converge on a single row.
	Upsert(ctx context.Context, payment *Payment) error
	FindByCorrelationId(ctx context.Context, id CorrelationId) (*Payment, error)
	// AggregateSummary counts processed payments only, optionally
	// windowed on requested_at.
	AggregateSummary(ctx context.Context, summaryDate SummaryDate) (*ProcessorsSummary, error)
	DeleteAll(ctx context.Context) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) IRepository {
	return &repository{db}
}

const upsertQuery = `
	INSERT INTO payments (correlation_id, amount, requested_at, processor, status, processed_at, fee)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (correlation_id)
	DO UPDATE SET
		status = EXCLUDED.status,
		processor = EXCLUDED.processor,
		processed_at = EXCLUDED.processed_at,
		fee = EXCLUDED.fee`

func (r *repository) Upsert(ctx context.Context, payment *Payment) error {
	var processedAt sql.NullTime
	if payment.ProcessedAt != nil {
		processedAt = sql.NullTime{Time: *payment.ProcessedAt, Valid: true}
	}

	var fee sql.NullString
	if payment.Fee != nil {
		fee = sql.NullString{String: payment.Fee.String(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, upsertQuery,
		payment.CorrelationId.String(),
		payment.Amount.String(),
		payment.RequestedAt,
		string(payment.Processor),
		string(payment.Status),
		processedAt,
		fee,
	)
	return err
}

func (r *repository) FindByCorrelationId(ctx context.Context, id CorrelationId) (*Payment, error) {
	const query = `
		SELECT correlation_id, amount, requested_at, processor, status, processed_at, fee
		FROM payments
		WHERE correlation_id = $1`

	var (
		correlationId string
		amount        string
		requestedAt   time.Time
		processor     string
		status        string
		processedAt   sql.NullTime
		fee           sql.NullString
	)

	row := r.db.QueryRowContext(ctx, query, id.String())
	err := row.Scan(&correlationId, &amount, &requestedAt, &processor, &status, &processedAt, &fee)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	amountValue, err := NewMoneyFromString(amount)
	if err != nil {
		return nil, err
	}

	payment := &Payment{
		CorrelationId: CorrelationId(correlationId),
		Amount:        amountValue,
		RequestedAt:   requestedAt,
		Processor:     ProcessorType(processor),
		Status:        Status(status),
	}
	if processedAt.Valid {
		t := processedAt.Time
		payment.ProcessedAt = &t
	}
	if fee.Valid {
		feeValue, err := NewMoneyFromString(fee.String)
		if err != nil {
			return nil, err
		}
		payment.Fee = &feeValue
	}
	return payment, nil
}

func (r *repository) AggregateSummary(ctx context.Context, summaryDate SummaryDate) (*ProcessorsSummary, error) {
	const query = `
		SELECT processor, COUNT(*), COALESCE(SUM(amount), 0)
		FROM payments
		WHERE status = 'processed'
			AND ($1::timestamptz IS NULL OR requested_at >= $1)
			AND ($2::timestamptz IS NULL OR requested_at <= $2)
		GROUP BY processor`

	rows, err := r.db.QueryContext(ctx, query, nullTime(summaryDate.From), nullTime(summaryDate.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &ProcessorsSummary{}
	for rows.Next() {
		var (
			processor string
			requests  int
			total     string
		)
		if err := rows.Scan(&processor, &requests, &total); err != nil {
			return nil, err
		}

		amount, err := decimal.NewFromString(total)
		if err != nil {
			return nil, err
		}
		summary := Summary{TotalRequests: requests, TotalAmount: amount.InexactFloat64()}

		if ProcessorType(processor) == ProcessorDefault {
			result.Default = summary
		} else {
			result.Fallback = summary
		}
	}
	return result, rows.Err()
}

func (r *repository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payments`)
	return err
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
