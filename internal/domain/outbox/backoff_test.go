//go:build unit

package outbox_test

import (
	"testing"
	"time"

	"bot-for-order/internal/domain/outbox"

	"github.com/stretchr/testify/assert"
)

func TestBackoff(t *testing.T) {
	base := time.Second
	maxDelay := time.Minute

	testCases := []struct {
		name     string
		attempts int
		jitter   float64
		want     time.Duration
	}{
		{name: "first attempt", attempts: 1, want: time.Second},
		{name: "doubling", attempts: 4, want: 8 * time.Second},
		{name: "zero attempts treated as first", attempts: 0, want: time.Second},
		{name: "capped", attempts: 10, want: time.Minute},
		{name: "huge attempts do not overflow", attempts: 500, want: time.Minute},
		{name: "positive jitter", attempts: 2, jitter: 1, want: 2400 * time.Millisecond},
		{name: "negative jitter", attempts: 2, jitter: -1, want: 1600 * time.Millisecond},
		{name: "jitter clamped", attempts: 2, jitter: -7, want: 1600 * time.Millisecond},
		{name: "jitter never exceeds cap", attempts: 10, jitter: 1, want: time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, outbox.Backoff(tc.attempts, base, maxDelay, tc.jitter))
		})
	}

	assert.Zero(t, outbox.Backoff(3, 0, maxDelay, 0))
}
