package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const maxBatchSize = 1000

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize int
	BatchWait time.Duration

	// OpenWeatherMap client configuration.
	OWMAPIKey    string
	OWMBaseURL   string
	OWMTimeout   time.Duration
	OWMCacheSize int
	OWMCacheTTL  time.Duration

	// Collector configuration.
	CollectInterval  time.Duration
	CollectLocations []Coordinates
}

// Coordinates is a latitude/longitude pair the collector polls.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	batchWait, err := parsePositiveDuration("BATCH_WAIT", "500ms")
	if err != nil {
		return nil, err
	}
	owmTimeout, err := parsePositiveDuration("OWM_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	owmCacheTTL, err := parsePositiveDuration("OWM_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	collectInterval, err := parsePositiveDuration("COLLECT_INTERVAL", "30m")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	locations, err := parseLocations(os.Getenv("COLLECT_LOCATIONS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: envOrDefault("KAFKA_SOURCE_TOPIC", "raw-weather-indexes"),
		KafkaSinkTopic:   envOrDefault("KAFKA_SINK_TOPIC", "canonical-weather-indexes"),
		KafkaGroupID:     envOrDefault("KAFKA_GROUP_ID", "weather-index-etl"),
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		BatchSize:        batchSize,
		BatchWait:        batchWait,

		OWMAPIKey:    os.Getenv("OWM_API_KEY"),
		OWMBaseURL:   envOrDefault("OWM_BASE_URL", "https://api.openweathermap.org"),
		OWMTimeout:   owmTimeout,
		OWMCacheSize: parseCacheSize(),
		OWMCacheTTL:  owmCacheTTL,

		CollectInterval:  collectInterval,
		CollectLocations: locations,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	s := envOrDefault("BATCH_SIZE", "50")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxBatchSize {
		return 0, fmt.Errorf("invalid BATCH_SIZE: %q (want 1-%d)", s, maxBatchSize)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseCacheSize() int {
	if s := os.Getenv("OWM_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}

// parseLocations parses "lat,lon" pairs joined with ";", for example
// "47.37,8.55;51.51,-0.13". Empty segments are skipped.
func parseLocations(s string) ([]Coordinates, error) {
	if s == "" {
		return nil, nil
	}
	var locs []Coordinates
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		latStr, lonStr, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("invalid COLLECT_LOCATIONS entry %q", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid COLLECT_LOCATIONS latitude %q", latStr)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid COLLECT_LOCATIONS longitude %q", lonStr)
		}
		if lat < -90 || lat > 90 {
			return nil, fmt.Errorf("COLLECT_LOCATIONS latitude %v out of range", lat)
		}
		if lon < -180 || lon > 180 {
			return nil, fmt.Errorf("COLLECT_LOCATIONS longitude %v out of range", lon)
		}
		locs = append(locs, Coordinates{Lat: lat, Lon: lon})
	}
	return locs, nil
}
