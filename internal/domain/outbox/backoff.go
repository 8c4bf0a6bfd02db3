package outbox

import "time"

// JitterRatio is the maximum relative deviation applied to a retry delay.
const JitterRatio = 0.2

// Backoff returns min(base*2^(attempts-1), maxDelay) shifted by jitter*JitterRatio and
// capped at maxDelay again. jitter must be in [-1, 1].
func Backoff(attempts int, base, maxDelay time.Duration, jitter float64) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		return 0
	}

	delay := maxDelay
	if shift := attempts - 1; shift < 62 {
		if scaled := base << shift; scaled > 0 && scaled>>shift == base && scaled < maxDelay {
			delay = scaled
		}
	}

	if jitter > 1 {
		jitter = 1
	} else if jitter < -1 {
		jitter = -1
	}
	delay += time.Duration(float64(delay) * JitterRatio * jitter)

	if delay > maxDelay {
		delay = maxDelay
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}
