package ward

import (
	"math"
	"strings"

	"github.com/darshan1137/case/internal/geo"
)

// precision is the number of decimal digits kept for derived coordinates.
const precision = 6

// sampleSize is how many raw vertices are kept per region for diagnostics.
const sampleSize = 5

// LatLon is a WGS-84 coordinate pair.
type LatLon struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// BoundingBox is the axis-aligned rectangle enclosing a region's vertices.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return b.South <= lat && lat <= b.North &&
		b.West <= lon && lon <= b.East
}

// Valid reports whether the box is well formed (south <= north, west <= east).
func (b BoundingBox) Valid() bool {
	for _, v := range []float64{b.North, b.South, b.East, b.West} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.South <= b.North && b.West <= b.East
}

// Area returns the box area in square degrees. It is only used to rank
// overlapping boxes against each other.
func (b BoundingBox) Area() float64 {
	return (b.North - b.South) * (b.East - b.West)
}

// Region is one administrative ward as stored in the lookup table.
type Region struct {
	Code           string      `json:"ward_code"`
	Center         LatLon      `json:"center"`
	BoundingBox    BoundingBox `json:"bounding_box"`
	VertexCount    int         `json:"coordinates_count"`
	SampleVertices []LatLon    `json:"sample_coordinates,omitempty"`
}

// NormalizeCode trims incidental whitespace and newlines from a raw ward name.
func NormalizeCode(raw string) string {
	return strings.TrimSpace(raw)
}

// newRegion derives a Region from a ward name and its valid vertices.
// It returns false when there is nothing to derive from.
func newRegion(code string, vertices []LatLon) (Region, bool) {
	code = NormalizeCode(code)
	if code == "" || len(vertices) == 0 {
		return Region{}, false
	}

	var sumLat, sumLon float64
	box := BoundingBox{
		North: math.Inf(-1),
		South: math.Inf(1),
		East:  math.Inf(-1),
		West:  math.Inf(1),
	}
	for _, v := range vertices {
		sumLat += v.Latitude
		sumLon += v.Longitude
		box.North = math.Max(box.North, v.Latitude)
		box.South = math.Min(box.South, v.Latitude)
		box.East = math.Max(box.East, v.Longitude)
		box.West = math.Min(box.West, v.Longitude)
	}
	n := float64(len(vertices))

	sample := vertices
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	return Region{
		Code: code,
		Center: LatLon{
			Latitude:  geo.Round(sumLat/n, precision),
			Longitude: geo.Round(sumLon/n, precision),
		},
		BoundingBox: BoundingBox{
			North: geo.Round(box.North, precision),
			South: geo.Round(box.South, precision),
			East:  geo.Round(box.East, precision),
			West:  geo.Round(box.West, precision),
		},
		VertexCount:    len(vertices),
		SampleVertices: append([]LatLon(nil), sample...),
	}, true
}
