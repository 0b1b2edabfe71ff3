// Command wardd serves ward resolution, hotspot and priority queries over
// HTTP and enriches citizen reports consumed from Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpadapter "github.com/darshan1137/case/internal/adapter/http"
	kafkaadapter "github.com/darshan1137/case/internal/adapter/kafka"
	"github.com/darshan1137/case/internal/adapter/mapbox"
	"github.com/darshan1137/case/internal/adapter/postgres"
	redisadapter "github.com/darshan1137/case/internal/adapter/redis"
	"github.com/darshan1137/case/internal/config"
	"github.com/darshan1137/case/internal/density"
	"github.com/darshan1137/case/internal/domain"
	"github.com/darshan1137/case/internal/engine"
	"github.com/darshan1137/case/internal/observability"
	"github.com/darshan1137/case/internal/pipeline"
	"github.com/darshan1137/case/internal/ward"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	idx := ward.LoadIndex(cfg.WardMappingPath, logger)
	resolver := ward.NewResolver(idx,
		ward.WithTieBreak(ward.TieBreak(cfg.WardTieBreak)),
		ward.WithFallback(ward.FallbackMetric(cfg.WardFallbackMetric)),
	)
	logger.Info("ward index loaded", "path", cfg.WardMappingPath, "wards", idx.Len(),
		"tie_break", cfg.WardTieBreak, "fallback", cfg.WardFallbackMetric)

	// Open-report source: Postgres when configured, otherwise the tickets this
	// process has enriched.
	var (
		source engine.ReportSource
		memory *engine.MemoryReports
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		store, err := postgres.NewReportStore(db, cfg.ReportsTable, cfg.ReportSnapshotLimit)
		if err != nil {
			logger.Error("invalid report store", "error", err)
			os.Exit(1)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure report schema", "error", err)
			os.Exit(1)
		}
		source = store
		logger.Info("report source: postgres", "table", cfg.ReportsTable, "limit", cfg.ReportSnapshotLimit)
	} else {
		memory = engine.NewMemoryReports(cfg.ReportSnapshotLimit)
		source = memory
		logger.Info("report source: in-memory", "limit", cfg.ReportSnapshotLimit)
	}

	opts := []engine.Option{engine.WithPolicy(density.Policy{BasePriority: cfg.PriorityBase})}
	if cfg.RedisAddr != "" {
		client := redisadapter.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, hotspot cache will miss until it recovers", "addr", cfg.RedisAddr, "error", err)
		}
		opts = append(opts, engine.WithCache(redisadapter.NewHotspotCache(client, redisadapter.DefaultKeyPrefix, cfg.HotspotCacheTTL)))
		logger.Info("hotspot cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.HotspotCacheTTL)
	}

	eng := engine.New(resolver, source, logger, metrics, opts...)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.ReverseGeocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(eng, cfg.PriorityRadiusKm, geocoder, logger)

	var loader pipeline.BatchLoader = writer
	if memory != nil {
		loader = pipeline.NewRecordingLoader(writer, memory)
	}
	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, httpadapter.Defaults{
		HotspotMinTickets: cfg.HotspotMinTickets,
		HotspotRadiusKm:   cfg.HotspotRadiusKm,
		PriorityRadiusKm:  cfg.PriorityRadiusKm,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start intake pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
