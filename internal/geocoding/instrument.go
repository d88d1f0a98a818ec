package geocoding

import (
	"context"
	"errors"
	"time"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
)

type instrumentedProvider struct {
	next    Provider
	name    string
	metrics *metrics.Metrics
}

// Instrument wraps a provider so every lookup is timed and counted by outcome.
func Instrument(next Provider, name string, appMetrics *metrics.Metrics) Provider {
	return &instrumentedProvider{next: next, name: name, metrics: appMetrics}
}

func (ip *instrumentedProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	start := time.Now()
	coords, err := ip.next.Geocode(ctx, address)
	ip.metrics.RequestSeconds.WithLabelValues(ip.name).Observe(time.Since(start).Seconds())
	ip.metrics.Lookups.WithLabelValues(ip.name, lookupOutcome(err)).Inc()

	return coords, err
}

// AwaitSlot forwards slot reservation to the wrapped provider.
func (ip *instrumentedProvider) AwaitSlot(ctx context.Context) (context.Context, error) {
	return AwaitSlot(ctx, ip.next)
}

func lookupOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeTimeout
	case IsEmptyResult(err):
		return metrics.OutcomeEmpty
	default:
		return metrics.OutcomeError
	}
}
