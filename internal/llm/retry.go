package llm

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultInitialDelay is the first retry delay.
	DefaultInitialDelay = 500 * time.Millisecond
	// DefaultMaxInterval caps the delay between attempts.
	DefaultMaxInterval = 5 * time.Second
	// StandardMultiplier is the multiplier for exponential backoff.
	StandardMultiplier = 2.0
	// StandardRandomizationFactor is the jitter applied to each delay.
	StandardRandomizationFactor = 0.2
)

// RetryOptions tunes Retrying.
type RetryOptions struct {
	MaxRetries uint64
	// AttemptTimeout bounds each attempt. Zero leaves only the caller's deadline.
	AttemptTimeout time.Duration
	InitialDelay   time.Duration
	Logger         zerolog.Logger
}

// Retrying retries a Generator with exponential backoff. Empty responses and
// caller cancellation are not retried.
type Retrying struct {
	next Generator
	opts RetryOptions
}

// NewRetrying wraps next.
func NewRetrying(next Generator, opts RetryOptions) *Retrying {
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultInitialDelay
	}
	opts.Logger = opts.Logger.With().Str("component", "llm_retry").Logger()
	return &Retrying{next: next, opts: opts}
}

func (r *Retrying) newBackoff() *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.opts.InitialDelay
	eb.Multiplier = StandardMultiplier
	eb.MaxInterval = DefaultMaxInterval
	eb.RandomizationFactor = StandardRandomizationFactor
	eb.MaxElapsedTime = 0
	eb.Reset()
	return eb
}

func (r *Retrying) Generate(ctx context.Context, system string, history []Message, grounding string) (string, error) {
	var (
		reply   string
		attempt int
	)
	op := func() error {
		attempt++
		actx, cancel := ctx, context.CancelFunc(func() {})
		if r.opts.AttemptTimeout > 0 {
			actx, cancel = context.WithTimeout(ctx, r.opts.AttemptTimeout)
		}
		defer cancel()

		out, err := r.next.Generate(actx, system, history, grounding)
		if err == nil {
			reply = out
			return nil
		}
		if errors.Is(err, ErrEmptyResponse) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		r.opts.Logger.Warn().Err(err).Int("attempt", attempt).Msg("generation failed, retrying")
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackoff(), r.opts.MaxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return "", err
	}
	return reply, nil
}
