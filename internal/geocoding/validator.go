package geocoding

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Validator checks whether an address resolves at all. It performs a single
// lookup and never retries, unlike Resolver.
type Validator struct {
	provider Provider
	timeout  time.Duration
	log      *slog.Logger
}

// NewValidator creates a Validator whose lookup is bounded by timeout.
func NewValidator(provider Provider, timeout time.Duration, log *slog.Logger) *Validator {
	return &Validator{provider: provider, timeout: timeout, log: log}
}

// IsValid reports whether the provider returned coordinates for address.
// Blank input is rejected without a lookup.
func (v *Validator) IsValid(ctx context.Context, address string) bool {
	if strings.TrimSpace(address) == "" {
		return false
	}

	slotCtx, err := AwaitSlot(ctx, v.provider)
	if err != nil {
		v.log.DebugContext(ctx, "Address was not checked", "address", address, "error", err)
		return false
	}

	lookupCtx, cancel := context.WithTimeout(slotCtx, v.timeout)
	defer cancel()

	coords, err := v.provider.Geocode(lookupCtx, address)
	if err != nil {
		v.log.DebugContext(ctx, "Address did not validate", "address", address, "error", err)
		return false
	}

	return coords != nil
}
