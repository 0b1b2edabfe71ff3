package engine_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshan1137/case/internal/density"
	"github.com/darshan1137/case/internal/engine"
	"github.com/darshan1137/case/internal/observability"
	"github.com/darshan1137/case/internal/ward"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testResolver() *ward.Resolver {
	return ward.NewResolver(ward.NewIndex([]ward.Region{
		{Code: "A", Center: ward.LatLon{Latitude: 5, Longitude: 5}, BoundingBox: ward.BoundingBox{North: 10, South: 0, East: 10, West: 0}},
		{Code: "B", Center: ward.LatLon{Latitude: 25, Longitude: 25}, BoundingBox: ward.BoundingBox{North: 30, South: 20, East: 30, West: 20}},
	}))
}

type failingSource struct{ calls int }

func (f *failingSource) OpenReports(context.Context) ([]density.Report, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

type mapCache struct {
	data   map[int][]density.Hotspot
	getErr error
	sets   int
}

func (c *mapCache) GetHotspots(_ context.Context, minCount int, _ float64) ([]density.Hotspot, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	hs, ok := c.data[minCount]
	return hs, ok, nil
}

func (c *mapCache) SetHotspots(_ context.Context, minCount int, _ float64, hs []density.Hotspot) error {
	if c.data == nil {
		c.data = map[int][]density.Hotspot{}
	}
	c.data[minCount] = hs
	c.sets++
	return nil
}

var nearOrigin = engine.StaticReports{
	{TicketID: "T1", Latitude: 0, Longitude: 0, Status: "open", Ward: "A"},
	{TicketID: "T2", Latitude: 0, Longitude: 0.001, Status: "open", Ward: "A"},
	{TicketID: "T3", Latitude: 5, Longitude: 5, Status: "open", Ward: "A"},
	{TicketID: "T4", Latitude: 0, Longitude: 0.0005, Status: "closed", Ward: "A"},
}

func TestEngine_ResolveWard(t *testing.T) {
	m := observability.NewMetricsForTesting()
	e := engine.New(testResolver(), nil, discardLogger(), m)

	assert.Equal(t, "A", e.ResolveWard(5, 5).Code)
	assert.Equal(t, ward.MethodNearest, e.ResolveWard(15, 5).Method)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WardResolutions.WithLabelValues("bbox")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WardResolutions.WithLabelValues("nearest")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WardsLoaded))
}

func TestEngine_Wards(t *testing.T) {
	e := engine.New(testResolver(), nil, discardLogger(), observability.NewMetricsForTesting())
	assert.Equal(t, []string{"A", "B"}, e.Wards())

	r, ok := e.Ward("B")
	require.True(t, ok)
	assert.Equal(t, 25.0, r.Center.Latitude)

	_, ok = e.Ward("Z")
	assert.False(t, ok)
}

func TestEngine_CheckReadiness(t *testing.T) {
	e := engine.New(testResolver(), nil, discardLogger(), observability.NewMetricsForTesting())
	assert.NoError(t, e.CheckReadiness(context.Background()))

	empty := engine.New(ward.NewResolver(ward.NewIndex(nil)), nil, discardLogger(), observability.NewMetricsForTesting())
	assert.Error(t, empty.CheckReadiness(context.Background()))
}

func TestEngine_FindHotspots(t *testing.T) {
	m := observability.NewMetricsForTesting()
	e := engine.New(testResolver(), nearOrigin, discardLogger(), m)

	hs, err := e.FindHotspots(context.Background(), 2, 0.5)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, []string{"T1", "T2"}, hs[0].Tickets)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HotspotsFound))
}

func TestEngine_FindHotspots_SourceError(t *testing.T) {
	m := observability.NewMetricsForTesting()
	e := engine.New(testResolver(), &failingSource{}, discardLogger(), m)

	_, err := e.FindHotspots(context.Background(), 2, 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportSnapshotErrors))
}

func TestEngine_FindHotspots_Cache(t *testing.T) {
	m := observability.NewMetricsForTesting()
	cache := &mapCache{}
	e := engine.New(testResolver(), nearOrigin, discardLogger(), m, engine.WithCache(cache))

	first, err := e.FindHotspots(context.Background(), 2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := e.FindHotspots(context.Background(), 2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HotspotCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HotspotCache.WithLabelValues("hit")))
}

func TestEngine_FindHotspots_CacheErrorFallsThrough(t *testing.T) {
	m := observability.NewMetricsForTesting()
	cache := &mapCache{getErr: errors.New("redis down")}
	e := engine.New(testResolver(), nearOrigin, discardLogger(), m, engine.WithCache(cache))

	hs, err := e.FindHotspots(context.Background(), 2, 0.5)
	require.NoError(t, err)
	assert.Len(t, hs, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HotspotCache.WithLabelValues("error")))
}

func TestEngine_ScoreLocation_DegradesOnError(t *testing.T) {
	m := observability.NewMetricsForTesting()
	src := &failingSource{}
	e := engine.New(testResolver(), src, discardLogger(), m)

	got := e.ScoreLocation(context.Background(), 0.0001, 0.0001, 0.5)
	assert.Equal(t, density.ZeroScore(0.5), got)
	assert.Equal(t, 1, src.calls)

	p := e.Prioritize(context.Background(), 0.0001, 0.0001, 0.5)
	assert.Equal(t, 0.5, p.Score)
	assert.Equal(t, density.PriorityMedium, p.Level)
}

func TestEngine_Prioritize(t *testing.T) {
	e := engine.New(testResolver(), nearOrigin, discardLogger(), observability.NewMetricsForTesting())

	p := e.Prioritize(context.Background(), 0, 0.0005, 0.5)
	assert.Equal(t, 2, p.NearbyTickets)
	assert.True(t, p.IsHighlighted)
	assert.InDelta(t, 0.8, p.Score, 1e-12)
	assert.Equal(t, density.PriorityHigh, p.Level)
}

func TestEngine_WithPolicy(t *testing.T) {
	e := engine.New(testResolver(), nil, discardLogger(), observability.NewMetricsForTesting(),
		engine.WithPolicy(density.Policy{BasePriority: 0.3}))

	p := e.Prioritize(context.Background(), 1, 1, 0.5)
	assert.Equal(t, 0.3, p.Score)
	assert.Equal(t, density.PriorityLow, p.Level)
	assert.Equal(t, 0.3, e.Policy().BasePriority)
}
