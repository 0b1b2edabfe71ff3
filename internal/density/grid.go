package density

import (
	"math"
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/darshan1137/case/internal/geo"
)

// capPadding widens the search cap so that points on the radius boundary
// are not lost to floating point disagreement between s2 and haversine.
const (
	capPaddingRel = 1e-6
	capPaddingAbs = 1e-9
)

// maxCoverCells bounds the size of each search covering.
const maxCoverCells = 8

// leafLevel is the deepest s2 cell level.
const leafLevel = 30

type gridEntry struct {
	cell s2.CellID
	pos  int // position in the caller's report slice
}

// grid is a sorted leaf-cell index over eligible reports. Every query
// returns exactly the reports a full haversine scan would, in input order.
type grid struct {
	reports []Report
	entries []gridEntry
	// irregular holds reports whose latitude is outside [-90, 90]. They have
	// no faithful cell and are checked on every query.
	irregular []int
	coverer   *s2.RegionCoverer
}

func newGrid(reports []Report, positions []int) *grid {
	g := &grid{
		reports: reports,
		entries: make([]gridEntry, 0, len(positions)),
		coverer: &s2.RegionCoverer{MinLevel: 0, MaxLevel: leafLevel, LevelMod: 1, MaxCells: maxCoverCells},
	}
	for _, p := range positions {
		r := reports[p]
		if math.Abs(r.Latitude) > 90 {
			g.irregular = append(g.irregular, p)
			continue
		}
		id := s2.CellIDFromLatLng(s2.LatLngFromDegrees(r.Latitude, r.Longitude))
		g.entries = append(g.entries, gridEntry{cell: id, pos: p})
	}
	sort.Slice(g.entries, func(i, j int) bool {
		if g.entries[i].cell == g.entries[j].cell {
			return g.entries[i].pos < g.entries[j].pos
		}
		return g.entries[i].cell < g.entries[j].cell
	})
	return g
}

// within returns the positions of indexed reports no farther than radiusKm
// from (lat, lon), in ascending input order.
func (g *grid) within(lat, lon, radiusKm float64) []int {
	if math.IsNaN(radiusKm) || radiusKm < 0 || math.IsNaN(lat) || math.IsNaN(lon) {
		return nil
	}

	candidates := g.candidates(lat, lon, radiusKm)
	out := candidates[:0]
	for _, p := range candidates {
		r := g.reports[p]
		if geo.DistanceKm(lat, lon, r.Latitude, r.Longitude) <= radiusKm {
			out = append(out, p)
		}
	}
	return out
}

func (g *grid) candidates(lat, lon, radiusKm float64) []int {
	angle := radiusKm / geo.EarthRadiusKm
	angle += angle*capPaddingRel + capPaddingAbs

	out := append([]int(nil), g.irregular...)
	if angle >= math.Pi || math.Abs(lat) > 90 {
		for _, e := range g.entries {
			out = append(out, e.pos)
		}
		return sortedUnique(out)
	}

	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	c := s2.CapFromCenterAngle(center, s1.Angle(angle))
	for _, cell := range g.coverer.Covering(c) {
		lo, hi := cell.RangeMin(), cell.RangeMax()
		i := sort.Search(len(g.entries), func(i int) bool { return g.entries[i].cell >= lo })
		for ; i < len(g.entries) && g.entries[i].cell <= hi; i++ {
			out = append(out, g.entries[i].pos)
		}
	}
	return sortedUnique(out)
}

func sortedUnique(ps []int) []int {
	sort.Ints(ps)
	out := ps[:0]
	for _, p := range ps {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
