package geocoding

import (
	"context"
	"sync/atomic"
)

// Throttled is implemented by providers that rate limit their lookups.
// AwaitSlot blocks until one lookup may be sent and returns a context that
// carries that slot; the next Geocode made with it does not wait again.
// Callers reserve the slot with their own context, before applying a
// per-lookup timeout.
type Throttled interface {
	AwaitSlot(ctx context.Context) (context.Context, error)
}

type slotKey struct{}

type slot struct {
	used atomic.Bool
}

// AwaitSlot reserves a lookup slot on provider when it is throttled.
// Unthrottled providers get ctx back unchanged.
func AwaitSlot(ctx context.Context, provider Provider) (context.Context, error) {
	if throttled, ok := provider.(Throttled); ok {
		return throttled.AwaitSlot(ctx)
	}

	return ctx, nil
}

func withSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, slotKey{}, &slot{})
}

// takeSlot consumes the slot carried by ctx. A slot is good for one lookup.
func takeSlot(ctx context.Context) bool {
	reserved, ok := ctx.Value(slotKey{}).(*slot)

	return ok && reserved.used.CompareAndSwap(false, true)
}
