package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
}

func (s *stubGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	s.calls++
	return s.result, s.err
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestEnrichWithAreaName(t *testing.T) {
	base := Ticket{TicketID: "TKT-1", Latitude: 19.07, Longitude: 72.87, AreaName: UnknownArea}

	tests := []struct {
		name string
		geo  *stubGeocoder
		want string
	}{
		{"place name", &stubGeocoder{result: GeocodingResult{PlaceName: "Bandra West", FormattedAddress: "Bandra West, Mumbai"}}, "Bandra West"},
		{"address only", &stubGeocoder{result: GeocodingResult{FormattedAddress: "Mumbai, Maharashtra"}}, "Mumbai, Maharashtra"},
		{"empty result", &stubGeocoder{}, UnknownArea},
		{"error", &stubGeocoder{err: errors.New("timeout")}, UnknownArea},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnrichWithAreaName(context.Background(), base, tt.geo, discard())
			assert.Equal(t, tt.want, got.AreaName)
			assert.Equal(t, 1, tt.geo.calls)
		})
	}
}

func TestEnrichWithAreaName_NilGeocoder(t *testing.T) {
	base := Ticket{Latitude: 1, Longitude: 1, AreaName: UnknownArea}
	assert.Equal(t, base, EnrichWithAreaName(context.Background(), base, nil, discard()))
}

func TestEnrichWithAreaName_NoCoordinates(t *testing.T) {
	g := &stubGeocoder{result: GeocodingResult{PlaceName: "Null Island"}}
	got := EnrichWithAreaName(context.Background(), Ticket{AreaName: UnknownArea}, g, discard())
	assert.Equal(t, UnknownArea, got.AreaName)
	assert.Zero(t, g.calls)
}
