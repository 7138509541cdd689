package notify

import (
	"testing"
	"time"
)

func TestNextRetryDelay(t *testing.T) {
	// Delays must land inside the ±20% jitter band.
	tests := []struct {
		attempt  int
		minDelay time.Duration
		maxDelay time.Duration
	}{
		{0, 24 * time.Second, 36 * time.Second},      // 30s ± 20%
		{1, 96 * time.Second, 144 * time.Second},     // 2min ± 20%
		{2, 8 * time.Minute, 12 * time.Minute},       // 10min ± 20%
		{3, 48 * time.Minute, 72 * time.Minute},      // 1h ± 20%
		{4, 288 * time.Minute, 432 * time.Minute},    // 6h ± 20%
		{10, 288 * time.Minute, 432 * time.Minute},   // beyond max stays at last
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			// Run multiple times to account for jitter
			for i := 0; i < 10; i++ {
				delay := NextRetryDelay(tt.attempt)
				if delay < tt.minDelay || delay > tt.maxDelay {
					t.Errorf("NextRetryDelay(%d) = %v, want between %v and %v",
						tt.attempt, delay, tt.minDelay, tt.maxDelay)
				}
			}
		})
	}
}

func TestNextRetryDelay_Negative(t *testing.T) {
	// Negative attempt should be treated as 0
	delay := NextRetryDelay(-1)
	if delay < 24*time.Second || delay > 36*time.Second {
		t.Errorf("NextRetryDelay(-1) should use attempt 0, got %v", delay)
	}
}

func TestIsExhausted(t *testing.T) {
	tests := []struct {
		attempt     int
		maxAttempts int
		want        bool
	}{
		{0, 5, false},
		{4, 5, false},
		{5, 5, true},
		{6, 5, true},
	}

	for _, tt := range tests {
		got := IsExhausted(tt.attempt, tt.maxAttempts)
		if got != tt.want {
			t.Errorf("IsExhausted(%d, %d) = %v, want %v",
				tt.attempt, tt.maxAttempts, got, tt.want)
		}
	}
}

func TestGetRetryDelays(t *testing.T) {
	delays := GetRetryDelays()
	if len(delays) != 5 {
		t.Errorf("expected 5 retry delays, got %d", len(delays))
	}

	// Verify delays are in increasing order
	for i := 1; i < len(delays); i++ {
		if delays[i] <= delays[i-1] {
			t.Errorf("delays should be increasing: %v <= %v", delays[i], delays[i-1])
		}
	}
}
