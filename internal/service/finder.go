package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/ranking"
)

// InvalidAddressMessage is shown to users whose address could not be used.
const InvalidAddressMessage = "Invalid address. Please enter a valid address."

// ErrInvalidAddress is returned for addresses that fail validation or resolution.
var ErrInvalidAddress = errors.New("invalid address")

// Search result labels.
const (
	SearchRanked     = "ranked"
	SearchInvalid    = "invalid"
	SearchUnresolved = "unresolved"
)

// Validator reports whether an address can be geocoded.
type Validator interface {
	IsValid(ctx context.Context, address string) bool
}

// Outcome is the result of one search.
type Outcome struct {
	Address string
	Origin  *models.Coordinates
	Results []ranking.Result
	Ranked  bool
	Err     error
}

// Message returns the user facing error text, or "" on success.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}

	return InvalidAddressMessage
}

// Finder answers distance searches against the catalog.
type Finder struct {
	log       *slog.Logger
	validator Validator
	resolver  Resolver
	catalog   *Catalog
	ranker    *ranking.Ranker
	metrics   *metrics.Metrics
}

// NewFinder creates a Finder ranking the restaurants of catalog.
func NewFinder(
	log *slog.Logger,
	validator Validator,
	resolver Resolver,
	catalog *Catalog,
	ranker *ranking.Ranker,
	metrics *metrics.Metrics,
) *Finder {
	return &Finder{
		log:       log,
		validator: validator,
		resolver:  resolver,
		catalog:   catalog,
		ranker:    ranker,
		metrics:   metrics,
	}
}

// Browse returns the catalog in dataset order with unknown distances.
func (f *Finder) Browse() []ranking.Result {
	return ranking.Unranked(f.catalog.Snapshot())
}

// Search validates address, resolves it and ranks the catalog by distance from it.
// An unusable address yields the unranked catalog and ErrInvalidAddress.
func (f *Finder) Search(ctx context.Context, address string) Outcome {
	address = strings.TrimSpace(address)

	if !f.validator.IsValid(ctx, address) {
		f.log.InfoContext(ctx, "Address failed validation", "address", address)
		f.metrics.Searches.WithLabelValues(SearchInvalid).Inc()

		return f.invalid(address, ErrInvalidAddress)
	}

	origin, err := f.resolver.Resolve(ctx, address)
	if err != nil {
		f.log.WarnContext(ctx, "Validated address could not be resolved", "address", address, "error", err)
		f.metrics.Searches.WithLabelValues(SearchUnresolved).Inc()

		return f.invalid(address, fmt.Errorf("%w: %w", ErrInvalidAddress, err))
	}

	f.catalog.EnsureLocated(ctx)
	results := f.ranker.Rank(*origin, f.catalog.Snapshot())
	f.metrics.Searches.WithLabelValues(SearchRanked).Inc()

	f.log.DebugContext(ctx, "Search ranked",
		"address", address,
		"lat", origin.Latitude,
		"lon", origin.Longitude,
		"results", len(results),
	)

	return Outcome{
		Address: address,
		Origin:  origin,
		Results: results,
		Ranked:  true,
	}
}

func (f *Finder) invalid(address string, err error) Outcome {
	return Outcome{
		Address: address,
		Results: f.Browse(),
		Err:     err,
	}
}
