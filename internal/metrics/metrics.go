package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by lookup and locate counters.
const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
	OutcomeFallback = "fallback"
	OutcomeFailure  = "failure"
)

// Metrics holds the Prometheus collectors of the geocoding and search paths.
type Metrics struct {
	Lookups            *prometheus.CounterVec
	RequestSeconds     *prometheus.HistogramVec
	Retries            prometheus.Counter
	Exhausted          prometheus.Counter
	RestaurantsLocated *prometheus.CounterVec
	ActiveWorkers      prometheus.Gauge
	Searches           *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Lookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_lookups_total",
			Help: "Total number of lookups sent to the geocoding provider, by outcome.",
		}, []string{"provider", "outcome"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		Retries: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocoding_retries_total",
			Help: "Total number of failed geocoding attempts that were retried.",
		}),
		Exhausted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocoding_exhausted_total",
			Help: "Total number of addresses that stayed unresolved after every attempt.",
		}),
		RestaurantsLocated: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "restaurants_located_total",
			Help: "Total number of restaurants processed by the locate pass, by status.",
		}, []string{"status"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "restaurants_locate_active_workers",
			Help: "Current number of workers geocoding restaurant addresses.",
		}),
		Searches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "restaurant_searches_total",
			Help: "Total number of distance searches, by result.",
		}, []string{"result"}),
	}
}
