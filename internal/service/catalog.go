package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
)

// CoordinatePolicy decides where a restaurant's location comes from.
type CoordinatePolicy string

const (
	// PolicyAddress geocodes every address and uses dataset coordinates only as a fallback.
	PolicyAddress CoordinatePolicy = "address"
	// PolicyDataset trusts dataset coordinates and geocodes only the restaurants without them.
	PolicyDataset CoordinatePolicy = "dataset"
)

// ParseCoordinatePolicy validates a policy name read from configuration.
func ParseCoordinatePolicy(value string) (CoordinatePolicy, error) {
	switch policy := CoordinatePolicy(value); policy {
	case PolicyAddress, PolicyDataset:
		return policy, nil
	default:
		return "", fmt.Errorf("unsupported coordinate policy: %s", value)
	}
}

// Resolver turns an address into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, address string) (*models.Coordinates, error)
}

// CoordinateSink persists the outcome of locating a restaurant.
type CoordinateSink interface {
	UpdateRestaurantCoordinates(ctx context.Context, restaurantID int, coords models.Coordinates) error
	IncrementFailureCount(ctx context.Context, restaurantID int, errMsg string) error
}

// LocateReport summarizes one locate pass.
type LocateReport struct {
	Located  int
	FellBack int
	Failed   int
}

// Total returns the number of restaurants the pass processed.
func (r LocateReport) Total() int {
	return r.Located + r.FellBack + r.Failed
}

type locateJob struct {
	index      int
	restaurant models.Restaurant
}

// Catalog holds the restaurant dataset shared by every request.
// A restaurant's Location is written at most once; readers take snapshots.
type Catalog struct {
	log        *slog.Logger
	resolver   Resolver
	sink       CoordinateSink
	metrics    *metrics.Metrics
	numWorkers int
	policy     CoordinatePolicy
	cache      *AddressCache

	mu          sync.RWMutex
	restaurants []models.Restaurant

	locateMu  sync.Mutex
	attempted bool
}

// NewCatalog creates a catalog over restaurants. The sink may be nil.
func NewCatalog(
	log *slog.Logger,
	restaurants []models.Restaurant,
	resolver Resolver,
	sink CoordinateSink,
	metrics *metrics.Metrics,
	numWorkers int,
	policy CoordinatePolicy,
) *Catalog {
	if numWorkers < 1 {
		numWorkers = 1
	}

	owned := make([]models.Restaurant, len(restaurants))
	copy(owned, restaurants)
	if policy == PolicyDataset {
		for i := range owned {
			if owned[i].Location == nil && owned[i].Supplied != nil {
				supplied := *owned[i].Supplied
				owned[i].Location = &supplied
			}
		}
	}

	return &Catalog{
		log:         log,
		resolver:    resolver,
		sink:        sink,
		metrics:     metrics,
		numWorkers:  numWorkers,
		policy:      policy,
		cache:       NewAddressCache(),
		restaurants: owned,
	}
}

// Snapshot returns a copy of the restaurants in dataset order.
func (c *Catalog) Snapshot() []models.Restaurant {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make([]models.Restaurant, len(c.restaurants))
	copy(snapshot, c.restaurants)

	return snapshot
}

// Len returns the number of restaurants in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.restaurants)
}

// Missing returns the number of restaurants without a location.
func (c *Catalog) Missing() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	missing := 0
	for _, restaurant := range c.restaurants {
		if !restaurant.Located() {
			missing++
		}
	}

	return missing
}

// EnsureLocated runs the locate pass the first time it is needed.
// Concurrent callers wait for that single pass; later calls return at once.
// The pass does not inherit the caller's cancellation.
func (c *Catalog) EnsureLocated(ctx context.Context) {
	c.locateMu.Lock()
	defer c.locateMu.Unlock()

	if c.attempted || c.Missing() == 0 {
		return
	}
	c.attempted = true

	report := c.locate(context.WithoutCancel(ctx), nil)
	c.log.InfoContext(ctx, "Restaurants located",
		"located", report.Located,
		"fell_back", report.FellBack,
		"failed", report.Failed,
	)
}

// Locate geocodes every restaurant without a location using a pool of workers.
// progress, when not nil, is called once per processed restaurant from the
// worker goroutines.
func (c *Catalog) Locate(ctx context.Context, progress func(models.Restaurant)) LocateReport {
	c.locateMu.Lock()
	defer c.locateMu.Unlock()

	c.attempted = true

	return c.locate(ctx, progress)
}

func (c *Catalog) pending() []locateJob {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var jobs []locateJob
	for i, restaurant := range c.restaurants {
		if !restaurant.Located() {
			jobs = append(jobs, locateJob{index: i, restaurant: restaurant})
		}
	}

	return jobs
}

func (c *Catalog) locate(ctx context.Context, progress func(models.Restaurant)) LocateReport {
	pending := c.pending()
	if len(pending) == 0 {
		c.log.DebugContext(ctx, "No restaurants to locate.")
		return LocateReport{}
	}

	c.log.InfoContext(
		ctx,
		"Found restaurants without coordinates. Starting worker pool.",
		"jobs", len(pending),
		"num_workers", c.numWorkers,
	)

	jobs := make(chan locateJob, len(pending))
	statuses := make(chan string, len(pending))
	var wgr sync.WaitGroup

	for i := 1; i <= c.numWorkers; i++ {
		wgr.Add(1)
		go c.worker(ctx, i, &wgr, jobs, statuses, progress)
	}

	for _, job := range pending {
		jobs <- job
	}
	close(jobs)

	wgr.Wait()
	close(statuses)

	var report LocateReport
	for status := range statuses {
		switch status {
		case metrics.OutcomeSuccess:
			report.Located++
		case metrics.OutcomeFallback:
			report.FellBack++
		default:
			report.Failed++
		}
	}

	c.log.InfoContext(ctx, "Locate pass finished", "processed", report.Total())

	return report
}

// worker locates restaurants from the jobs channel and reports one status per job.
func (c *Catalog) worker(
	ctx context.Context,
	idx int,
	wg *sync.WaitGroup,
	jobs <-chan locateJob,
	statuses chan<- string,
	progress func(models.Restaurant),
) {
	defer wg.Done()
	for job := range jobs {
		c.metrics.ActiveWorkers.Inc()
		c.log.DebugContext(ctx, "Locating restaurant", "worker", idx, "restaurant", job.restaurant.ID)

		status := c.locateOne(ctx, idx, job)
		c.metrics.RestaurantsLocated.WithLabelValues(status).Inc()
		c.metrics.ActiveWorkers.Dec()

		statuses <- status
		if progress != nil {
			progress(job.restaurant)
		}
	}
}

func (c *Catalog) locateOne(ctx context.Context, idx int, job locateJob) string {
	restaurant := job.restaurant

	coords, err := c.cache.Lookup(ctx, restaurant.Address, c.resolver.Resolve)
	if err != nil {
		c.log.WarnContext(ctx, "Failed to geocode restaurant",
			"worker", idx,
			"restaurant", restaurant.ID,
			"address", restaurant.Address,
			"error", err,
		)
		c.recordFailure(ctx, idx, restaurant.ID, err)

		if restaurant.Supplied != nil {
			c.setLocation(job.index, *restaurant.Supplied)
			return metrics.OutcomeFallback
		}

		return metrics.OutcomeFailure
	}

	c.setLocation(job.index, *coords)
	c.persist(ctx, idx, restaurant.ID, *coords)

	c.log.DebugContext(ctx, "Restaurant located",
		"worker", idx,
		"restaurant", restaurant.ID,
		"lat", coords.Latitude,
		"lon", coords.Longitude,
	)

	return metrics.OutcomeSuccess
}

func (c *Catalog) setLocation(index int, coords models.Coordinates) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.restaurants[index].Location != nil {
		return
	}
	c.restaurants[index].Location = &coords
}

func (c *Catalog) persist(ctx context.Context, idx, restaurantID int, coords models.Coordinates) {
	if c.sink == nil {
		return
	}
	if err := c.sink.UpdateRestaurantCoordinates(ctx, restaurantID, coords); err != nil {
		c.log.ErrorContext(ctx, "Failed to store coordinates",
			"worker", idx,
			"restaurant", restaurantID,
			"error", err,
		)
	}
}

func (c *Catalog) recordFailure(ctx context.Context, idx, restaurantID int, cause error) {
	if c.sink == nil {
		return
	}
	if err := c.sink.IncrementFailureCount(ctx, restaurantID, cause.Error()); err != nil {
		c.log.ErrorContext(ctx, "Could not update failure count for restaurant",
			"worker", idx,
			"restaurant", restaurantID,
			"error", err,
		)
	}
}
