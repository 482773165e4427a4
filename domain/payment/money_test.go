package payment_test

import (
	"errors"
	"testing"

	"payment-gateway/domain/payment"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		want    string
		wantErr bool
	}{
		{"minimum", 0.01, "0.01", false},
		{"maximum", 999999.99, "999999.99", false},
		{"rounds half up", 19.995, "20.00", false},
		{"rounds down", 10.004, "10.00", false},
		{"below minimum", 0.009, "", true},
		{"zero", 0, "", true},
		{"negative", -5, "", true},
		{"above maximum", 1000000.00, "", true},
		{"plain amount", 100.50, "100.50", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := payment.NewMoney(tt.amount)
			if tt.wantErr {
				if !errors.Is(err, payment.ErrInvalidAmount) {
					t.Fatalf("NewMoney(%v) error = %v, want ErrInvalidAmount", tt.amount, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMoney(%v) unexpected error: %v", tt.amount, err)
			}
			if got.String() != tt.want {
				t.Errorf("NewMoney(%v) = %s, want %s", tt.amount, got.String(), tt.want)
			}
		})
	}
}

func TestMoneyFee(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		rate   float64
		want   string
	}{
		{"default rate", 100.00, 0.05, "5.00"},
		{"fallback rate", 100.00, 0.15, "15.00"},
		{"rounds to cents", 10.00, 0.0333, "0.33"},
		{"small amount", 0.50, 0.05, "0.03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := payment.NewMoney(tt.amount)
			if err != nil {
				t.Fatalf("NewMoney(%v): %v", tt.amount, err)
			}
			fee, err := amount.Fee(tt.rate)
			if err != nil {
				t.Fatalf("Fee(%v): %v", tt.rate, err)
			}
			if fee.String() != tt.want {
				t.Errorf("Fee(%v) = %s, want %s", tt.rate, fee.String(), tt.want)
			}
		})
	}
}

func TestMoneyArithmeticRevalidates(t *testing.T) {
	a, _ := payment.NewMoney(999999.99)
	b, _ := payment.NewMoney(0.02)

	if _, err := a.Add(b); !errors.Is(err, payment.ErrInvalidAmount) {
		t.Errorf("Add beyond maximum: error = %v, want ErrInvalidAmount", err)
	}
	if _, err := b.Subtract(b); !errors.Is(err, payment.ErrInvalidAmount) {
		t.Errorf("Subtract to zero: error = %v, want ErrInvalidAmount", err)
	}

	sum, err := b.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.String() != "0.04" {
		t.Errorf("Add = %s, want 0.04", sum.String())
	}
}
