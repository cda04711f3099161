package owm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-index-etl/internal/observability"
	"github.com/couchcryptid/weather-index-etl/internal/resilience"
)

// Endpoint labels used for metrics and log fields.
const (
	endpointUV  = "uv"
	endpointSO2 = "so2"
)

// Fetcher retrieves raw index payloads for a coordinate pair.
type Fetcher interface {
	FetchUV(ctx context.Context, lat, lon float64) (json.RawMessage, error)
	FetchSO2(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// Client fetches UV and SO2 index payloads from the OpenWeatherMap API.
// Requests go through a resilient HTTP client with retries and a circuit
// breaker.
type Client struct {
	apiKey     string
	httpClient *resilience.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	rcfg := resilience.DefaultClientConfig("owm")
	rcfg.Timeout = timeout
	return &Client{
		apiKey:     apiKey,
		httpClient: resilience.NewClient(rcfg),
		baseURL:    strings.TrimRight(baseURL, "/"),
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchUV retrieves the current UV index payload for the given coordinates.
func (c *Client) FetchUV(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	params := url.Values{
		"lat":   {formatCoord(lat)},
		"lon":   {formatCoord(lon)},
		"appid": {c.apiKey},
	}
	u := c.baseURL + "/data/2.5/uvi?" + params.Encode()
	return c.doRequest(ctx, u, endpointUV)
}

// FetchSO2 retrieves the current SO2 index payload for the given coordinates.
// The pollution API addresses measurements by coordinates in the path.
func (c *Client) FetchSO2(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	params := url.Values{"appid": {c.apiKey}}
	u := fmt.Sprintf("%s/pollution/v1/so2/%s,%s/current.json?%s",
		c.baseURL, formatCoord(lat), formatCoord(lon), params.Encode())
	return c.doRequest(ctx, u, endpointSO2)
}

func (c *Client) doRequest(ctx context.Context, fullURL, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.metrics.ProviderAPIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("owm API error: status %d: %s", resp.StatusCode, body)
	}
	if !json.Valid(body) {
		c.metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s response is not valid JSON", endpoint)
	}

	c.metrics.ProviderRequests.WithLabelValues(endpoint, "success").Inc()
	c.logger.Debug("fetched index payload", "endpoint", endpoint, "bytes", len(body))
	return body, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
