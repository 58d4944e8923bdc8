package worker

import (
	"math"
	"math/rand"
	"time"

	"github.com/hibiken/asynq"
)

const (
	retryBaseDelay = 2 * time.Second
	retryMaxDelay  = 30 * time.Second
	retryJitter    = 0.25
)

// retryDelay implements asynq.RetryDelayFunc with the spec's backoff shape
// (spec.md §4.4): exponential from a 2s base, capped at 30s, jittered
// ±25% so a burst of failing tasks doesn't retry in lockstep.
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	delay := float64(retryBaseDelay) * math.Pow(2, float64(n))
	if delay > float64(retryMaxDelay) || delay <= 0 {
		delay = float64(retryMaxDelay)
	}

	jitter := delay * retryJitter * (2*rand.Float64() - 1)
	d := time.Duration(delay + jitter)
	if d <= 0 {
		d = retryBaseDelay
	}
	return d
}
