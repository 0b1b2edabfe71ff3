package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshan1137/case/internal/density"
)

type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
	failSet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.failGet != nil {
		return goredis.NewStringResult("", f.failGet)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, exp time.Duration) *goredis.StatusCmd {
	if f.failSet != nil {
		return goredis.NewStatusResult("", f.failSet)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = exp
	return goredis.NewStatusResult("OK", nil)
}

func TestHotspotCache_RoundTrip(t *testing.T) {
	fr := newFakeRedis()
	c := NewHotspotCache(fr, "", time.Minute)
	ctx := context.Background()

	_, ok, err := c.GetHotspots(ctx, 2, 0.5)
	require.NoError(t, err)
	assert.False(t, ok)

	hs := []density.Hotspot{{Latitude: 19.07, Longitude: 72.87, TicketCount: 2, Tickets: []string{"a", "b"}, PriorityLevel: "Medium", Ward: "K/E", SearchRadiusKm: 0.5}}
	require.NoError(t, c.SetHotspots(ctx, 2, 0.5, hs))
	assert.Equal(t, time.Minute, fr.ttls["ward-engine:hotspots:2:0.5000"])

	got, ok, err := c.GetHotspots(ctx, 2, 0.5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hs, got)

	_, ok, err = c.GetHotspots(ctx, 3, 0.5)
	require.NoError(t, err)
	assert.False(t, ok, "different min count is a different key")
}

func TestHotspotCache_EmptyResultIsHit(t *testing.T) {
	c := NewHotspotCache(newFakeRedis(), "test", time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetHotspots(ctx, 2, 0.5, []density.Hotspot{}))
	got, ok, err := c.GetHotspots(ctx, 2, 0.5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestHotspotCache_Errors(t *testing.T) {
	fr := newFakeRedis()
	fr.failGet = errors.New("dial tcp: connection refused")
	fr.failSet = errors.New("READONLY")
	c := NewHotspotCache(fr, "", time.Minute)

	_, ok, err := c.GetHotspots(context.Background(), 2, 0.5)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.SetHotspots(context.Background(), 2, 0.5, nil))
}

func TestHotspotCache_CorruptValue(t *testing.T) {
	fr := newFakeRedis()
	fr.data["ward-engine:hotspots:2:0.5000"] = "{not json"
	c := NewHotspotCache(fr, "", time.Minute)

	_, ok, err := c.GetHotspots(context.Background(), 2, 0.5)
	assert.Error(t, err)
	assert.False(t, ok)
}
