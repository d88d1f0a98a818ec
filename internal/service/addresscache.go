package service

import (
	"context"
	"strings"
	"sync"

	"github.com/UnknownOlympus/hestia/internal/models"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type cacheEntry struct {
	coords *models.Coordinates
	err    error
}

// AddressCache remembers the outcome of geocoding restaurant addresses.
// Each normalized address is written at most once: the first stored outcome,
// success or failure, is the one every later caller sees. Concurrent lookups
// of the same key share a single resolution.
type AddressCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewAddressCache creates an empty cache.
func NewAddressCache() *AddressCache {
	return &AddressCache{entries: make(map[string]cacheEntry)}
}

// NormalizeAddress builds the cache key: NFKC, case folded, whitespace collapsed.
func NormalizeAddress(address string) string {
	folded := cases.Fold().String(norm.NFKC.String(address))

	return strings.Join(strings.Fields(folded), " ")
}

// Lookup returns the cached outcome for address, calling resolve on a miss.
func (ac *AddressCache) Lookup(
	ctx context.Context,
	address string,
	resolve func(ctx context.Context, address string) (*models.Coordinates, error),
) (*models.Coordinates, error) {
	key := NormalizeAddress(address)
	if entry, ok := ac.get(key); ok {
		return entry.coords, entry.err
	}

	value, _, _ := ac.group.Do(key, func() (any, error) {
		if entry, ok := ac.get(key); ok {
			return entry, nil
		}

		coords, err := resolve(ctx, address)
		return ac.store(key, cacheEntry{coords: coords, err: err}), nil
	})

	entry, _ := value.(cacheEntry)
	return entry.coords, entry.err
}

// Len returns the number of cached addresses.
func (ac *AddressCache) Len() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	return len(ac.entries)
}

func (ac *AddressCache) get(key string) (cacheEntry, bool) {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	entry, ok := ac.entries[key]
	return entry, ok
}

func (ac *AddressCache) store(key string, entry cacheEntry) cacheEntry {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if existing, ok := ac.entries[key]; ok {
		return existing
	}
	ac.entries[key] = entry

	return entry
}
