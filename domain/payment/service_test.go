package payment_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"payment-gateway/domain/payment"
)

type memRepository struct {
	payments  map[payment.CorrelationId]payment.Payment
	upsertErr error
	findErr   error
}

func newMemRepository() *memRepository {
	return &memRepository{payments: make(map[payment.CorrelationId]payment.Payment)}
}

func (r *memRepository) Upsert(_ context.Context, p *payment.Payment) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.payments[p.CorrelationId] = *p
	return nil
}

func (r *memRepository) FindByCorrelationId(_ context.Context, id payment.CorrelationId) (*payment.Payment, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	copied := p
	return &copied, nil
}

func (r *memRepository) AggregateSummary(_ context.Context, summaryDate payment.SummaryDate) (*payment.ProcessorsSummary, error) {
	result := &payment.ProcessorsSummary{}
	for _, p := range r.payments {
		if p.Status != payment.StatusProcessed {
			continue
		}
		if summaryDate.From != nil && p.RequestedAt.Before(*summaryDate.From) {
			continue
		}
		if summaryDate.To != nil && p.RequestedAt.After(*summaryDate.To) {
			continue
		}
		target := &result.Fallback
		if p.Processor == payment.ProcessorDefault {
			target = &result.Default
		}
		target.TotalRequests++
		target.TotalAmount += p.Amount.Float64()
	}
	return result, nil
}

func (r *memRepository) DeleteAll(_ context.Context) error {
	r.payments = make(map[payment.CorrelationId]payment.Payment)
	return nil
}

type fakeQueue struct {
	keys []string
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, key string, _ []byte) error {
	if q.err != nil {
		return q.err
	}
	q.keys = append(q.keys, key)
	return nil
}

const testId = "4a7901b8-7d63-4ff3-8c76-aa5484af4a22"

func TestServiceSubmit(t *testing.T) {
	repo := newMemRepository()
	queue := &fakeQueue{}
	svc := payment.NewService(repo, queue)

	pending, err := svc.Submit(context.Background(), payment.PostInput{CorrelationId: testId, Amount: 10.00})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !pending.IsPending() {
		t.Errorf("status = %s, want pending", pending.Status)
	}

	stored, _ := repo.FindByCorrelationId(context.Background(), payment.CorrelationId(testId))
	if stored == nil {
		t.Fatal("pending payment was not persisted")
	}
	if stored.Status != payment.StatusPending {
		t.Errorf("stored status = %s, want pending", stored.Status)
	}

	if len(queue.keys) != 1 || queue.keys[0] != testId {
		t.Errorf("enqueued keys = %v, want [%s]", queue.keys, testId)
	}
}

func TestServiceSubmitDuplicate(t *testing.T) {
	repo := newMemRepository()
	queue := &fakeQueue{}
	svc := payment.NewService(repo, queue)

	ctx := context.Background()
	if _, err := svc.Submit(ctx, payment.PostInput{CorrelationId: testId, Amount: 10.00}); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	_, err := svc.Submit(ctx, payment.PostInput{CorrelationId: testId, Amount: 25.00})
	if !errors.Is(err, payment.ErrAlreadyExists) {
		t.Fatalf("second Submit error = %v, want ErrAlreadyExists", err)
	}

	// The original record must be untouched and no second job queued.
	stored, _ := repo.FindByCorrelationId(ctx, payment.CorrelationId(testId))
	if stored.Amount.String() != "10.00" {
		t.Errorf("stored amount = %s, want 10.00", stored.Amount.String())
	}
	if len(queue.keys) != 1 {
		t.Errorf("enqueued %d jobs, want 1", len(queue.keys))
	}
}

func TestServiceSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   payment.PostInput
		wantErr *payment.Error
	}{
		{"bad uuid", payment.PostInput{CorrelationId: "nope", Amount: 10}, payment.ErrInvalidCorrelationId},
		{"empty uuid", payment.PostInput{CorrelationId: "", Amount: 10}, payment.ErrInvalidCorrelationId},
		{"amount too small", payment.PostInput{CorrelationId: testId, Amount: 0.009}, payment.ErrInvalidAmount},
		{"amount too large", payment.PostInput{CorrelationId: testId, Amount: 1000000}, payment.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepository()
			queue := &fakeQueue{}
			svc := payment.NewService(repo, queue)

			_, err := svc.Submit(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Submit error = %v, want %v", err, tt.wantErr)
			}
			if len(repo.payments) != 0 || len(queue.keys) != 0 {
				t.Error("rejected submission must not persist or enqueue")
			}
		})
	}
}

func TestServiceSubmitHidesInternalErrors(t *testing.T) {
	repo := newMemRepository()
	repo.findErr = fmt.Errorf("connection refused to db:5432")
	svc := payment.NewService(repo, &fakeQueue{})

	_, err := svc.Submit(context.Background(), payment.PostInput{CorrelationId: testId, Amount: 10})
	if !errors.Is(err, payment.ErrInternal) {
		t.Fatalf("Submit error = %v, want ErrInternal", err)
	}

	var appErr *payment.Error
	if !errors.As(err, &appErr) || appErr.Kind != payment.KindInternal {
		t.Fatal("internal failures must surface as the generic internal error")
	}
}
