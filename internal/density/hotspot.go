package density

import "math"

// Default query parameters for hotspot detection.
const (
	DefaultMinTickets = 2
	DefaultRadiusKm   = 0.5
)

// Hotspot tiers by cluster size.
const (
	HotspotCritical = "Critical"
	HotspotHigh     = "High"
	HotspotMedium   = "Medium"
)

// Hotspot is a cluster of open reports around an anchor report.
type Hotspot struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	TicketCount    int      `json:"ticket_count"`
	Tickets        []string `json:"tickets"`
	PriorityLevel  string   `json:"priority_level"`
	Ward           string   `json:"ward"`
	SearchRadiusKm float64  `json:"search_radius_km"`
}

// HotspotTier maps a cluster size to its tier.
func HotspotTier(count int) string {
	switch {
	case count >= 5:
		return HotspotCritical
	case count >= 3:
		return HotspotHigh
	default:
		return HotspotMedium
	}
}

type coordKey struct{ lat, lon int64 }

// keyOf rounds a coordinate to 4 decimals (about 11 m).
func keyOf(lat, lon float64) coordKey {
	return coordKey{
		lat: int64(math.Round(lat * 1e4)),
		lon: int64(math.Round(lon * 1e4)),
	}
}

// FindHotspots clusters open reports greedily. Each eligible report, in
// input order, anchors a candidate cluster of every eligible report within
// radiusKm of it, itself included. A cluster with at least minCount members
// is emitted and the 4-decimal rounded keys of all its members are marked,
// so a later anchor at any marked key is skipped. With a radius covering
// every report the first anchor therefore yields the only cluster.
func FindHotspots(reports []Report, minCount int, radiusKm float64) []Hotspot {
	positions := eligibleReports(reports)
	g := newGrid(reports, positions)

	hotspots := []Hotspot{}
	emitted := make(map[coordKey]struct{})
	for _, p := range positions {
		anchor := reports[p]
		key := keyOf(anchor.Latitude, anchor.Longitude)
		if _, ok := emitted[key]; ok {
			continue
		}

		near := g.within(anchor.Latitude, anchor.Longitude, radiusKm)
		if len(near) < minCount || len(near) == 0 {
			continue
		}

		ids := make([]string, len(near))
		for i, q := range near {
			ids[i] = reports[q].TicketID
		}
		hotspots = append(hotspots, Hotspot{
			Latitude:       anchor.Latitude,
			Longitude:      anchor.Longitude,
			TicketCount:    len(near),
			Tickets:        ids,
			PriorityLevel:  HotspotTier(len(near)),
			Ward:           anchor.Ward,
			SearchRadiusKm: radiusKm,
		})
		for _, q := range near {
			emitted[keyOf(reports[q].Latitude, reports[q].Longitude)] = struct{}{}
		}
	}
	return hotspots
}
