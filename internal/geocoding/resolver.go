package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/cenkalti/backoff/v4"
)

var (
	// ErrNotFound is returned when an address stays unresolved after every attempt.
	ErrNotFound = errors.New("address could not be geocoded")
	// ErrGeocodeTimeout marks an ErrNotFound whose last attempt ran out of time.
	ErrGeocodeTimeout = errors.New("geocoding timed out")
)

// RetryPolicy controls how a Resolver retries a lookup.
type RetryPolicy struct {
	Attempts int           // Attempts is the total number of lookups, the first one included.
	Timeout  time.Duration // Timeout bounds every single attempt.
	Delay    time.Duration // Delay is the constant pause between attempts.
}

// DefaultRetryPolicy returns three attempts of ten seconds each with no pause.
func DefaultRetryPolicy() RetryPolicy {
	const (
		attempts = 3
		timeout  = 10 * time.Second
	)

	return RetryPolicy{Attempts: attempts, Timeout: timeout}
}

// Resolver turns free-text addresses into coordinates, retrying failed lookups
// with the same timeout each time. Timeouts, parsing failures, empty answers
// and transport errors are all retried alike.
type Resolver struct {
	provider Provider
	policy   RetryPolicy
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewResolver creates a Resolver. A policy with fewer than one attempt is raised to one.
func NewResolver(provider Provider, policy RetryPolicy, appMetrics *metrics.Metrics, log *slog.Logger) *Resolver {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	return &Resolver{provider: provider, policy: policy, metrics: appMetrics, log: log}
}

// Resolve returns the first successful lookup of address. When every attempt fails
// the error matches ErrNotFound, and also ErrGeocodeTimeout if the last one timed out.
// Cancelling ctx stops further attempts.
func (r *Resolver) Resolve(ctx context.Context, address string) (*models.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: empty address", ErrNotFound)
	}

	var (
		coords  *models.Coordinates
		attempt int
	)

	operation := func() error {
		attempt++

		slotCtx, err := AwaitSlot(ctx, r.provider)
		if err != nil {
			return backoff.Permanent(err)
		}

		attemptCtx, cancel := context.WithTimeout(slotCtx, r.policy.Timeout)
		defer cancel()

		result, err := r.provider.Geocode(attemptCtx, address)
		if err != nil {
			return err
		}
		if result == nil {
			return ErrEmptyResponse
		}

		coords = result
		return nil
	}

	notify := func(err error, _ time.Duration) {
		r.metrics.Retries.Inc()
		r.log.WarnContext(ctx, "Geocoding attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", r.policy.Attempts,
			"address", address,
			"error", err)
	}

	schedule := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.policy.Delay), uint64(r.policy.Attempts-1)),
		ctx,
	)

	err := backoff.RetryNotify(operation, schedule, notify)
	if err == nil {
		return coords, nil
	}

	r.metrics.Exhausted.Inc()
	r.log.WarnContext(ctx, "Geocoding failed after all attempts", "attempts", attempt, "address", address, "error", err)

	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("%w: %w", ErrGeocodeTimeout, err)
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrNotFound, attempt, err)
}
