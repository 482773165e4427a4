package payment

import (
	"errors"
	"testing"
	"time"
)

func TestParseSummaryDate(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		wantErr  bool
		hasFrom  bool
		hasTo    bool
	}{
		{"no window", "", "", false, false, false},
		{"full window", "2026-08-01T00:00:00Z", "2026-08-31T23:59:59Z", false, true, true},
		{"open end", "2026-08-01T00:00:00Z", "", false, true, false},
		{"open start", "", "2026-08-31T23:59:59Z", false, false, true},
		{"malformed from", "yesterday", "", true, false, false},
		{"malformed to", "", "2026-08-31", true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSummaryDate(tt.from, tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBody) {
					t.Fatalf("parseSummaryDate error = %v, want ErrInvalidBody", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSummaryDate: %v", err)
			}
			if (got.From != nil) != tt.hasFrom || (got.To != nil) != tt.hasTo {
				t.Errorf("window = (%v, %v), want from=%t to=%t", got.From, got.To, tt.hasFrom, tt.hasTo)
			}
			if got.From != nil {
				want, _ := time.Parse(time.RFC3339, tt.from)
				if !got.From.Equal(want) {
					t.Errorf("from = %v, want %v", got.From, want)
				}
			}
		})
	}
}

func TestErrorKindStatusCodes(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{KindValidation, 400},
		{KindConflict, 409},
		{KindUnavailable, 503},
		{KindInternal, 500},
	}

	for _, tt := range tests {
		if got := tt.kind.StatusCode(); got != tt.want {
			t.Errorf("StatusCode(%d) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}
