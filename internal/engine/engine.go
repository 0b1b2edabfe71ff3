// Package engine is the service handle over the ward index and the density
// functions. It owns no global state: main builds one Engine and passes it
// to the HTTP server and the intake pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/darshan1137/case/internal/density"
	"github.com/darshan1137/case/internal/observability"
	"github.com/darshan1137/case/internal/ward"
)

// ReportSource supplies the current set of stored reports. Each call is an
// independent snapshot.
type ReportSource interface {
	OpenReports(ctx context.Context) ([]density.Report, error)
}

// HotspotCache stores hotspot results for a query. A miss returns ok=false
// with a nil error.
type HotspotCache interface {
	GetHotspots(ctx context.Context, minCount int, radiusKm float64) (hotspots []density.Hotspot, ok bool, err error)
	SetHotspots(ctx context.Context, minCount int, radiusKm float64, hotspots []density.Hotspot) error
}

// Priority is a location score plus the final score and level derived from it.
type Priority struct {
	density.LocationScore
	Score float64 `json:"priority_score"`
	Level string  `json:"priority"`
}

// Engine answers ward, hotspot, and priority queries.
type Engine struct {
	resolver *ward.Resolver
	source   ReportSource
	cache    HotspotCache
	policy   density.Policy
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables hotspot result caching.
func WithCache(c HotspotCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithPolicy overrides the default scoring policy.
func WithPolicy(p density.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// New creates an Engine. A nil source behaves as an empty report set.
func New(resolver *ward.Resolver, source ReportSource, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Engine {
	if source == nil {
		source = StaticReports(nil)
	}
	e := &Engine{
		resolver: resolver,
		source:   source,
		policy:   density.DefaultPolicy,
		logger:   logger,
		metrics:  metrics,
	}
	for _, o := range opts {
		o(e)
	}
	e.metrics.WardsLoaded.Set(float64(resolver.Index().Len()))
	return e
}

// CheckReadiness reports an error while no ward regions are loaded.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.resolver.Index().Len() == 0 {
		return errors.New("ward lookup table is empty")
	}
	return nil
}

// Wards returns every ward code in index order.
func (e *Engine) Wards() []string {
	return e.resolver.Index().Codes()
}

// Ward returns the region stored under code.
func (e *Engine) Ward(code string) (ward.Region, bool) {
	return e.resolver.Index().Lookup(code)
}

// ResolveWard maps a coordinate to a ward.
func (e *Engine) ResolveWard(lat, lon float64) ward.Resolution {
	res := e.resolver.Resolve(lat, lon)
	e.metrics.WardResolutions.WithLabelValues(string(res.Method)).Inc()
	return res
}

// FindHotspots clusters the current open reports. A failed snapshot is
// returned as an error; cache failures are logged and bypassed.
func (e *Engine) FindHotspots(ctx context.Context, minCount int, radiusKm float64) ([]density.Hotspot, error) {
	start := time.Now()
	defer func() { e.metrics.HotspotQueryDuration.Observe(time.Since(start).Seconds()) }()

	if e.cache != nil {
		hs, ok, err := e.cache.GetHotspots(ctx, minCount, radiusKm)
		switch {
		case err != nil:
			e.metrics.HotspotCache.WithLabelValues("error").Inc()
			e.logger.Warn("hotspot cache read failed", "error", err)
		case ok:
			e.metrics.HotspotCache.WithLabelValues("hit").Inc()
			e.metrics.HotspotsFound.Set(float64(len(hs)))
			return hs, nil
		default:
			e.metrics.HotspotCache.WithLabelValues("miss").Inc()
		}
	}

	reports, err := e.source.OpenReports(ctx)
	if err != nil {
		e.metrics.ReportSnapshotErrors.Inc()
		return nil, fmt.Errorf("load report snapshot: %w", err)
	}

	hs := density.FindHotspots(reports, minCount, radiusKm)
	e.metrics.HotspotsFound.Set(float64(len(hs)))

	if e.cache != nil {
		if err := e.cache.SetHotspots(ctx, minCount, radiusKm, hs); err != nil {
			e.metrics.HotspotCache.WithLabelValues("error").Inc()
			e.logger.Warn("hotspot cache write failed", "error", err)
		}
	}
	return hs, nil
}

// ScoreLocation counts open reports near a point. A failed snapshot scores
// as no nearby reports.
func (e *Engine) ScoreLocation(ctx context.Context, lat, lon, radiusKm float64) density.LocationScore {
	reports, err := e.source.OpenReports(ctx)
	if err != nil {
		e.metrics.ReportSnapshotErrors.Inc()
		e.logger.Warn("report snapshot failed, scoring location as empty",
			"lat", lat, "lon", lon, "error", err)
		return density.ZeroScore(radiusKm)
	}
	return density.ScoreLocation(reports, lat, lon, radiusKm)
}

// Prioritize scores a location and applies the engine's policy.
func (e *Engine) Prioritize(ctx context.Context, lat, lon, radiusKm float64) Priority {
	s := e.ScoreLocation(ctx, lat, lon, radiusKm)
	score := e.policy.Score(s.PriorityBoost)
	e.metrics.PriorityScore.Observe(score)
	return Priority{
		LocationScore: s,
		Score:         score,
		Level:         density.PriorityLevel(score),
	}
}

// Policy returns the scoring policy in use.
func (e *Engine) Policy() density.Policy { return e.policy }
