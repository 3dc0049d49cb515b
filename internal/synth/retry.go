package synth

import (
	"context"
	"fmt"
	"time"

	"github.com/ibarra/parlante/internal/observability"
	"github.com/ibarra/parlante/internal/reliability"
)

const (
	DefaultRetries       = 5
	DefaultBackoffFactor = 1.0
)

// SleepFunc is the delay effect injected into the retry controller. Tests
// substitute a recording fake to assert timing decisions without waiting.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep blocks for d or until ctx is done, whichever comes first.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retrier wraps a single-phrase synthesis attempt with bounded exponential
// retry and rate-limit-aware delay selection. It never falls back itself;
// the composer owns the cross-provider handoff.
type Retrier struct {
	Retries       int
	BackoffFactor float64
	Sleep         SleepFunc
	Metrics       *observability.Metrics
}

// NewRetrier builds a controller with real blocking sleeps.
func NewRetrier(retries int, backoffFactor float64, metrics *observability.Metrics) *Retrier {
	return &Retrier{
		Retries:       retries,
		BackoffFactor: backoffFactor,
		Sleep:         ContextSleep,
		Metrics:       metrics,
	}
}

// Run attempts p.Synthesize up to Retries times and returns the first
// success. Rate-limited attempts honor the provider's wait hint exactly
// when one exists; otherwise the delay is the exponential formula with a
// two-second floor. Transient failures back off without the floor.
// Permanent failures abandon the provider immediately.
func (r *Retrier) Run(ctx context.Context, p Provider, phrase string, req Request) ([]byte, int, error) {
	retries := r.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = DefaultBackoffFactor
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}

	var lastErr error
	for i := 0; i < retries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		out := p.Synthesize(ctx, phrase, req)
		r.Metrics.RecordAttempt(p.Name(), out.Kind.String())

		switch out.Kind {
		case KindSuccess:
			return out.PCM, out.SampleRate, nil

		case KindRateLimited:
			lastErr = out.Err
			if i == retries-1 {
				return nil, 0, fmt.Errorf("%s: rate limited after %d attempts: %w", p.Name(), retries, lastErr)
			}
			delay := reliability.RateLimitBackoff(i, factor)
			if out.HasRetryAfter {
				delay = out.RetryAfter
			}
			r.Metrics.RecordRateLimitWait()
			if err := sleep(ctx, delay); err != nil {
				return nil, 0, err
			}

		case KindTransient:
			lastErr = out.Err
			if i == retries-1 {
				return nil, 0, fmt.Errorf("%s: failed after %d attempts: %w", p.Name(), retries, lastErr)
			}
			if err := sleep(ctx, reliability.TransientBackoff(i, factor)); err != nil {
				return nil, 0, err
			}

		case KindPermanent:
			return nil, 0, fmt.Errorf("%s: permanent failure: %w", p.Name(), out.Err)

		default:
			return nil, 0, fmt.Errorf("%s: unknown outcome kind %d", p.Name(), out.Kind)
		}
	}
	return nil, 0, fmt.Errorf("%s: exhausted %d attempts: %w", p.Name(), retries, lastErr)
}
