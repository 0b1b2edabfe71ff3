package density

import "math"

// Boost parameters for location density.
const (
	BoostPerReport     = 0.15
	MaxBoost           = 0.5
	HighlightThreshold = 2
	DefaultBase        = 0.5
)

// Priority levels for a scored location.
const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
	PriorityLow      = "Low"
)

// LocationScore summarises open-report density around a point.
type LocationScore struct {
	NearbyTickets  int     `json:"nearby_tickets"`
	PriorityBoost  float64 `json:"priority_boost"`
	IsHighlighted  bool    `json:"is_highlighted"`
	SearchRadiusKm float64 `json:"search_radius_km"`
}

// ZeroScore is the score of a location with no nearby reports.
func ZeroScore(radiusKm float64) LocationScore {
	return LocationScore{SearchRadiusKm: radiusKm}
}

// Boost returns the priority boost for n nearby reports.
func Boost(n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Min(float64(n)*BoostPerReport, MaxBoost)
}

// ScoreLocation counts eligible reports within radiusKm of (lat, lon) and
// derives the density boost. The point itself is not a report and is never
// counted.
func ScoreLocation(reports []Report, lat, lon, radiusKm float64) LocationScore {
	positions := eligibleReports(reports)
	n := len(newGrid(reports, positions).within(lat, lon, radiusKm))
	return LocationScore{
		NearbyTickets:  n,
		PriorityBoost:  Boost(n),
		IsHighlighted:  n >= HighlightThreshold,
		SearchRadiusKm: radiusKm,
	}
}

// Policy turns a density boost into a final priority score.
type Policy struct {
	BasePriority float64
}

// DefaultPolicy is the scoring policy for manually created reports.
var DefaultPolicy = Policy{BasePriority: DefaultBase}

// Score returns base + boost, capped at 1.
func (p Policy) Score(boost float64) float64 {
	return math.Min(p.BasePriority+boost, 1.0)
}

// PriorityLevel maps a final score to its level. These thresholds are
// separate from the hotspot tiers.
func PriorityLevel(score float64) string {
	switch {
	case score >= 0.85:
		return PriorityCritical
	case score >= 0.70:
		return PriorityHigh
	case score >= 0.50:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
