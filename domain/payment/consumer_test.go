package payment

import (
	"testing"
	"time"
)

func TestBackoffDoublesPerDelivery(t *testing.T) {
	c := &natsConsumer{
		backoffBase: time.Second,
		jitterMax:   250 * time.Millisecond,
	}

	tests := []struct {
		deliveries int
		min        time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
	}

	for _, tt := range tests {
		got := c.backoff(tt.deliveries)
		if got < tt.min || got >= tt.min+c.jitterMax {
			t.Errorf("backoff(%d) = %v, want in [%v, %v)", tt.deliveries, got, tt.min, tt.min+c.jitterMax)
		}
	}
}
