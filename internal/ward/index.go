package ward

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tidwall/gjson"
)

// Index is the loaded region table. It preserves source order and is
// read-only after construction, so it is safe for concurrent use.
type Index struct {
	regions []Region
	byCode  map[string]int
}

// NewIndex builds an index from regions in the given order. A repeated code
// replaces the earlier region in place.
func NewIndex(regions []Region) *Index {
	idx := &Index{
		regions: make([]Region, 0, len(regions)),
		byCode:  make(map[string]int, len(regions)),
	}
	for _, r := range regions {
		r.Code = NormalizeCode(r.Code)
		if i, ok := idx.byCode[r.Code]; ok {
			idx.regions[i] = r
			continue
		}
		idx.byCode[r.Code] = len(idx.regions)
		idx.regions = append(idx.regions, r)
	}
	return idx
}

// Len returns the number of regions.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.regions)
}

// Regions returns the regions in index order. The slice must not be modified.
func (idx *Index) Regions() []Region {
	if idx == nil {
		return nil
	}
	return idx.regions
}

// Lookup returns the region stored under code.
func (idx *Index) Lookup(code string) (Region, bool) {
	if idx == nil {
		return Region{}, false
	}
	i, ok := idx.byCode[NormalizeCode(code)]
	if !ok {
		return Region{}, false
	}
	return idx.regions[i], true
}

// Codes returns every ward code in index order.
func (idx *Index) Codes() []string {
	codes := make([]string, 0, idx.Len())
	for _, r := range idx.Regions() {
		codes = append(codes, r.Code)
	}
	return codes
}

type tableRow struct {
	Code           string       `json:"ward_code"`
	Center         *LatLon      `json:"center"`
	BoundingBox    *BoundingBox `json:"bounding_box"`
	VertexCount    int          `json:"coordinates_count"`
	SampleVertices []LatLon     `json:"sample_coordinates"`
}

var errNotObject = errors.New("lookup table is not a JSON object")

// ParseTable decodes a lookup table, keeping document key order. Rows that
// are missing a center or bounding box, or whose box is inverted, are
// skipped and logged.
func ParseTable(data []byte, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("lookup table is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errNotObject
	}

	var regions []Region
	doc.ForEach(func(key, value gjson.Result) bool {
		code := NormalizeCode(key.String())
		var row tableRow
		if err := json.Unmarshal([]byte(value.Raw), &row); err != nil {
			logger.Warn("skipping malformed ward row", "ward", code, "error", err)
			return true
		}
		if code == "" {
			code = NormalizeCode(row.Code)
		}
		switch {
		case code == "":
			logger.Warn("skipping ward row without code")
		case row.Center == nil || row.BoundingBox == nil:
			logger.Warn("skipping ward row without center or bounding box", "ward", code)
		case !row.BoundingBox.Valid() || !validVertex(row.Center.Latitude, row.Center.Longitude):
			logger.Warn("skipping ward row with invalid bounding box", "ward", code)
		default:
			regions = append(regions, Region{
				Code:           code,
				Center:         *row.Center,
				BoundingBox:    *row.BoundingBox,
				VertexCount:    row.VertexCount,
				SampleVertices: row.SampleVertices,
			})
		}
		return true
	})
	return NewIndex(regions), nil
}

// LoadIndex reads the lookup table at path. Any failure to read or parse
// the file is logged and yields an empty index, under which every
// resolution reports no ward.
func LoadIndex(path string, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("ward lookup table unavailable, resolving to Unknown", "path", path, "error", err)
		return NewIndex(nil)
	}
	idx, err := ParseTable(data, logger)
	if err != nil {
		logger.Warn("ward lookup table unreadable, resolving to Unknown", "path", path, "error", fmt.Errorf("parse %s: %w", path, err))
		return NewIndex(nil)
	}
	logger.Info("ward lookup table loaded", "path", path, "wards", idx.Len())
	return idx
}
