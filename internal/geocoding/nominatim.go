package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/hestia/internal/models"
	"golang.org/x/time/rate"
)

const (
	// NominatimBaseURL is the public OpenStreetMap search endpoint.
	NominatimBaseURL = "https://nominatim.openstreetmap.org/search"
	// DefaultUserAgent identifies the service, as the Nominatim usage policy requires.
	DefaultUserAgent = "Hestia-Restaurant-Finder/1.0 (https://github.com/UnknownOlympus/hestia)"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's Nominatim API.
// The public instance allows 1 request/second for fair use, so calls go through a limiter.
type NominatimProvider struct {
	client    HTTPClient
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	log       *slog.Logger
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Common errors for Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

// NewNominatimProvider creates a Nominatim provider with its own HTTP client.
// Empty baseURL and userAgent fall back to the public endpoint and DefaultUserAgent.
func NewNominatimProvider(baseURL, userAgent string, rateLimit int, log *slog.Logger) *NominatimProvider {
	const timeout = 30

	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		baseURL,
		userAgent,
		rate.NewLimiter(rate.Limit(rateLimit), 1),
		log,
	)
}

// NewNominatimProviderWithClient allows injecting a custom HTTP client and limiter.
func NewNominatimProviderWithClient(
	client HTTPClient,
	baseURL string,
	userAgent string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *NominatimProvider {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &NominatimProvider{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
		limiter:   limiter,
		log:       log,
	}
}

// Geocode converts an address to geographic coordinates using the Nominatim API.
// Only the top-ranked match is requested.
// A slot reserved through AwaitSlot is used instead of waiting on the limiter.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	if !takeSlot(ctx) {
		if err := np.wait(ctx); err != nil {
			return nil, err
		}
	}

	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	best := results[0]
	np.log.DebugContext(ctx, "Nominatim found result", "display_name", best.DisplayName, "lat", best.Lat, "lon", best.Lon)

	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, best.Lat)
	}
	lon, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, best.Lon)
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}

// AwaitSlot waits on the rate limiter with ctx and returns a context holding the slot.
func (np *NominatimProvider) AwaitSlot(ctx context.Context) (context.Context, error) {
	if err := np.wait(ctx); err != nil {
		return ctx, err
	}

	return withSlot(ctx), nil
}

// wait blocks on the limiter. A wait that cannot finish before the deadline of
// ctx is reported as context.DeadlineExceeded.
func (np *NominatimProvider) wait(ctx context.Context) error {
	err := np.limiter.Wait(ctx)
	if err == nil {
		return nil
	}

	if _, hasDeadline := ctx.Deadline(); hasDeadline && ctx.Err() == nil {
		return fmt.Errorf("rate limit exceeded: %w: %w", context.DeadlineExceeded, err)
	}

	return fmt.Errorf("rate limit exceeded: %w", err)
}
