package pipeline

import (
	"context"
	"log/slog"

	"github.com/darshan1137/case/internal/density"
	"github.com/darshan1137/case/internal/domain"
	"github.com/darshan1137/case/internal/ward"
)

// Locator resolves wards and scores locations. *engine.Engine satisfies it.
type Locator interface {
	ResolveWard(lat, lon float64) ward.Resolution
	ScoreLocation(ctx context.Context, lat, lon, radiusKm float64) density.LocationScore
	Policy() density.Policy
}

// ReportTransformer implements Transformer: it parses a citizen report,
// assigns its ward and density priority, and optionally names its area.
type ReportTransformer struct {
	locator  Locator
	radiusKm float64
	geocoder domain.ReverseGeocoder
	logger   *slog.Logger
}

// NewTransformer creates a ReportTransformer scoring within radiusKm. Pass a
// nil geocoder to disable area name enrichment.
func NewTransformer(locator Locator, radiusKm float64, geocoder domain.ReverseGeocoder, logger *slog.Logger) *ReportTransformer {
	return &ReportTransformer{
		locator:  locator,
		radiusKm: radiusKm,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *ReportTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Ticket, error) {
	rep, err := domain.ParseRawReport(raw)
	if err != nil {
		return domain.Ticket{}, err
	}

	ticket := domain.NewTicket(rep)
	ticket = domain.ApplyWard(ticket, t.locator.ResolveWard(ticket.Latitude, ticket.Longitude))
	ticket = domain.ApplyPriority(ticket, t.locator.ScoreLocation(ctx, ticket.Latitude, ticket.Longitude, t.radiusKm), t.locator.Policy())
	ticket = domain.EnrichWithAreaName(ctx, ticket, t.geocoder, t.logger)

	return domain.Stamp(ticket), nil
}
