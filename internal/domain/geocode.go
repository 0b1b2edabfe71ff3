package domain

import (
	"context"
	"log/slog"
)

// EnrichWithAreaName sets the ticket's area name from a reverse geocode.
// A nil geocoder, a failed lookup, or an empty result leaves the current
// value in place.
func EnrichWithAreaName(ctx context.Context, t Ticket, geocoder ReverseGeocoder, logger *slog.Logger) Ticket {
	if geocoder == nil {
		return t
	}
	if t.Latitude == 0 && t.Longitude == 0 {
		return t
	}

	result, err := geocoder.ReverseGeocode(ctx, t.Latitude, t.Longitude)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"ticket_id", t.TicketID,
			"lat", t.Latitude,
			"lon", t.Longitude,
			"error", err,
		)
		return t
	}

	switch {
	case result.PlaceName != "":
		t.AreaName = result.PlaceName
	case result.FormattedAddress != "":
		t.AreaName = result.FormattedAddress
	}
	return t
}
