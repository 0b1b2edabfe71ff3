package ward

import (
	"math"

	"github.com/darshan1137/case/internal/geo"
)

// Method records how a resolution was reached.
type Method string

const (
	MethodBoundingBox Method = "bbox"
	MethodNearest     Method = "nearest"
	MethodNone        Method = "none"
)

// TieBreak selects among several bounding boxes that contain a point.
type TieBreak string

const (
	// TieBreakFirstMatch returns the first containing region in index order.
	TieBreakFirstMatch TieBreak = "first_match"
	// TieBreakSmallestArea returns the containing region with the smallest
	// box, falling back to index order on equal areas.
	TieBreakSmallestArea TieBreak = "smallest_area"
)

// FallbackMetric is the distance used to pick the nearest centroid.
type FallbackMetric string

const (
	// FallbackPlanar measures Euclidean distance in (lon, lat) degrees.
	FallbackPlanar FallbackMetric = "planar"
	// FallbackHaversine measures great-circle distance.
	FallbackHaversine FallbackMetric = "haversine"
)

// Resolution is the outcome of mapping a coordinate to a ward.
type Resolution struct {
	Code   string  `json:"ward_code,omitempty"`
	Region *Region `json:"region,omitempty"`
	Method Method  `json:"method"`
}

// Found reports whether a region was resolved.
func (r Resolution) Found() bool { return r.Region != nil }

// CodeOr returns the resolved code, or def when nothing was found.
func (r Resolution) CodeOr(def string) string {
	if !r.Found() {
		return def
	}
	return r.Code
}

// Resolver maps coordinates to regions of an Index.
type Resolver struct {
	idx      *Index
	tieBreak TieBreak
	fallback FallbackMetric
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithTieBreak sets the overlap rule. Unknown values keep first match.
func WithTieBreak(t TieBreak) ResolverOption {
	return func(r *Resolver) {
		if t == TieBreakSmallestArea {
			r.tieBreak = t
		}
	}
}

// WithFallback sets the nearest-centroid metric. Unknown values keep planar.
func WithFallback(m FallbackMetric) ResolverOption {
	return func(r *Resolver) {
		if m == FallbackHaversine {
			r.fallback = m
		}
	}
}

// NewResolver returns a resolver over idx.
func NewResolver(idx *Index, opts ...ResolverOption) *Resolver {
	r := &Resolver{idx: idx, tieBreak: TieBreakFirstMatch, fallback: FallbackPlanar}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Index returns the index the resolver reads from.
func (r *Resolver) Index() *Index { return r.idx }

// Resolve maps a coordinate to a ward. A containing bounding box wins;
// otherwise the nearest centroid is returned. Only an empty index yields
// MethodNone.
func (r *Resolver) Resolve(lat, lon float64) Resolution {
	regions := r.idx.Regions()
	if len(regions) == 0 {
		return Resolution{Method: MethodNone}
	}

	if i := r.containing(regions, lat, lon); i >= 0 {
		return resolution(&regions[i], MethodBoundingBox)
	}

	best := -1
	bestDist := math.Inf(1)
	for i := range regions {
		d := r.distance(lat, lon, regions[i].Center)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		// Only reachable when every distance is NaN.
		return Resolution{Method: MethodNone}
	}
	return resolution(&regions[best], MethodNearest)
}

func (r *Resolver) containing(regions []Region, lat, lon float64) int {
	match := -1
	for i := range regions {
		b := regions[i].BoundingBox
		if !b.Contains(lat, lon) {
			continue
		}
		if r.tieBreak == TieBreakFirstMatch {
			return i
		}
		if match < 0 || b.Area() < regions[match].BoundingBox.Area() {
			match = i
		}
	}
	return match
}

func (r *Resolver) distance(lat, lon float64, c LatLon) float64 {
	if r.fallback == FallbackHaversine {
		return geo.DistanceKm(lat, lon, c.Latitude, c.Longitude)
	}
	return geo.PlanarDistance(lat, lon, c.Latitude, c.Longitude)
}

func resolution(region *Region, m Method) Resolution {
	cp := *region
	return Resolution{Code: cp.Code, Region: &cp, Method: m}
}
