// Package collector polls the OpenWeatherMap API for configured locations
// and publishes raw index envelopes to the source topic.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/couchcryptid/weather-index-etl/internal/adapter/owm"
	"github.com/couchcryptid/weather-index-etl/internal/config"
	"github.com/couchcryptid/weather-index-etl/internal/domain"
	"github.com/couchcryptid/weather-index-etl/internal/observability"
)

// fetchTimeout bounds the UV and SO2 fetches for a single location.
const fetchTimeout = 30 * time.Second

// Publisher sends raw envelopes to the source topic. *kafka.Writer
// satisfies it.
type Publisher interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Collector periodically fetches UV and SO2 payloads for each configured
// location and publishes them as raw envelopes.
type Collector struct {
	scheduler *gocron.Scheduler
	fetcher   owm.Fetcher
	publisher Publisher
	locations []config.Coordinates
	interval  time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// New creates a collector for the given locations.
func New(fetcher owm.Fetcher, publisher Publisher, locations []config.Coordinates, interval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Collector {
	return &Collector{
		scheduler: gocron.NewScheduler(time.UTC),
		fetcher:   fetcher,
		publisher: publisher,
		locations: locations,
		interval:  interval,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start schedules the periodic collection job and runs the scheduler
// asynchronously. The first pass fires immediately.
func (c *Collector) Start() error {
	if len(c.locations) == 0 {
		c.logger.Warn("no locations configured, nothing to schedule")
		return nil
	}

	_, err := c.scheduler.Every(c.interval).StartImmediately().Do(c.RunOnce)
	if err != nil {
		return err
	}

	c.scheduler.StartAsync()
	c.logger.Info("collector started", "locations", len(c.locations), "interval", c.interval)
	return nil
}

// Stop halts scheduling of future runs. A pass already in flight finishes.
func (c *Collector) Stop() {
	c.scheduler.Stop()
}

// CheckReadiness reports whether the scheduler is running.
func (c *Collector) CheckReadiness(_ context.Context) error {
	if !c.scheduler.IsRunning() {
		return errors.New("collector scheduler is not running")
	}
	return nil
}

// RunOnce performs a single collection pass across all locations.
func (c *Collector) RunOnce() {
	c.logger.Info("running collection pass", "locations", len(c.locations))

	var wg sync.WaitGroup
	for _, loc := range c.locations {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()

			c.collectLocation(ctx, loc)
		}()
	}
	wg.Wait()
}

func (c *Collector) collectLocation(ctx context.Context, loc config.Coordinates) {
	kinds := []struct {
		kind  string
		fetch func(context.Context, float64, float64) (json.RawMessage, error)
	}{
		{domain.KindUV, c.fetcher.FetchUV},
		{domain.KindSO2, c.fetcher.FetchSO2},
	}

	for _, k := range kinds {
		payload, err := k.fetch(ctx, loc.Lat, loc.Lon)
		if err != nil {
			c.metrics.CollectorFetches.WithLabelValues(k.kind, "error").Inc()
			c.logger.Error("fetch failed", "kind", k.kind, "lat", loc.Lat, "lon", loc.Lon, "error", err)
			continue
		}
		c.metrics.CollectorFetches.WithLabelValues(k.kind, "success").Inc()

		if err := c.publish(ctx, k.kind, loc, payload); err != nil {
			c.logger.Error("publish failed", "kind", k.kind, "lat", loc.Lat, "lon", loc.Lon, "error", err)
			continue
		}
		c.metrics.CollectorPublished.Inc()
	}
}

func (c *Collector) publish(ctx context.Context, kind string, loc config.Coordinates, payload json.RawMessage) error {
	value, err := json.Marshal(domain.Envelope{Kind: kind, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	event := domain.OutputEvent{
		Key:     []byte(fmt.Sprintf("%s-%.4f-%.4f", kind, loc.Lat, loc.Lon)),
		Value:   value,
		Headers: map[string]string{"kind": kind},
	}
	return c.publisher.LoadBatch(ctx, []domain.OutputEvent{event})
}
