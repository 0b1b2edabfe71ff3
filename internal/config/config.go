package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

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

	BatchSize          int
	BatchFlushInterval time.Duration

	// Ward resolution.
	WardMappingPath    string
	WardTieBreak       string
	WardFallbackMetric string

	// Density and priority.
	HotspotMinTickets int
	HotspotRadiusKm   float64
	PriorityRadiusKm  float64
	PriorityBase      float64

	// Open-report snapshot source. Empty DatabaseURL selects the in-memory source.
	DatabaseURL         string
	ReportsTable        string
	ReportSnapshotLimit int

	// Hotspot cache. Empty RedisAddr disables caching.
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	HotspotCacheTTL time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("HOTSPOT_CACHE_TTL", "30s")
	if err != nil {
		return nil, err
	}

	minTickets, err := parseInt("HOTSPOT_MIN_TICKETS", 2, 1)
	if err != nil {
		return nil, err
	}

	snapshotLimit, err := parseInt("REPORT_SNAPSHOT_LIMIT", 1000, 1)
	if err != nil {
		return nil, err
	}

	redisDB, err := parseInt("REDIS_DB", 0, 0)
	if err != nil {
		return nil, err
	}

	hotspotRadius, err := parsePositiveFloat("HOTSPOT_RADIUS_KM", 0.5)
	if err != nil {
		return nil, err
	}

	priorityRadius, err := parsePositiveFloat("PRIORITY_RADIUS_KM", 0.5)
	if err != nil {
		return nil, err
	}

	priorityBase, err := parsePriorityBase()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "citizen-reports"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "enriched-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "ward-engine"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		WardMappingPath:    sharedcfg.EnvOrDefault("WARD_MAPPING_PATH", "ward_mapping.json"),
		WardTieBreak:       sharedcfg.EnvOrDefault("WARD_TIE_BREAK", "first_match"),
		WardFallbackMetric: sharedcfg.EnvOrDefault("WARD_FALLBACK_METRIC", "planar"),

		HotspotMinTickets: minTickets,
		HotspotRadiusKm:   hotspotRadius,
		PriorityRadiusKm:  priorityRadius,
		PriorityBase:      priorityBase,

		DatabaseURL:         os.Getenv("DATABASE_URL"),
		ReportsTable:        sharedcfg.EnvOrDefault("REPORTS_TABLE", "tickets"),
		ReportSnapshotLimit: snapshotLimit,

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		HotspotCacheTTL: cacheTTL,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
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
	switch cfg.WardTieBreak {
	case "first_match", "smallest_area":
	default:
		return nil, fmt.Errorf("invalid WARD_TIE_BREAK %q", cfg.WardTieBreak)
	}
	switch cfg.WardFallbackMetric {
	case "planar", "haversine":
	default:
		return nil, fmt.Errorf("invalid WARD_FALLBACK_METRIC %q", cfg.WardFallbackMetric)
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def, minimum int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minimum {
		return 0, fmt.Errorf("invalid %s: must be an integer >= %d", key, minimum)
	}
	return n, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !(f > 0) {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return f, nil
}

func parsePriorityBase() (float64, error) {
	s := os.Getenv("PRIORITY_BASE")
	if s == "" {
		return 0.5, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, errors.New("invalid PRIORITY_BASE: must be between 0 and 1")
	}
	return f, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
