package ward

import (
	"log/slog"
	"math"
)

// collector accumulates regions in first-seen order. A repeated code
// replaces the earlier record but keeps its position.
type collector struct {
	logger  *slog.Logger
	regions []Region
	pos     map[string]int
	skipped int
}

func newCollector(logger *slog.Logger) *collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &collector{logger: logger, pos: make(map[string]int)}
}

func (c *collector) add(name string, vertices []LatLon) {
	r, ok := newRegion(name, vertices)
	if !ok {
		c.skipped++
		c.logger.Debug("region skipped", "name", name, "vertices", len(vertices))
		return
	}
	if i, dup := c.pos[r.Code]; dup {
		c.logger.Warn("duplicate ward code, keeping latest", "ward", r.Code)
		c.regions[i] = r
		return
	}
	c.pos[r.Code] = len(c.regions)
	c.regions = append(c.regions, r)
}

func (c *collector) result() []Region {
	c.logger.Info("boundary extraction complete", "regions", len(c.regions), "skipped", c.skipped)
	return c.regions
}

// validVertex reports whether a parsed coordinate is usable.
func validVertex(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lon) &&
		!math.IsInf(lat, 0) && !math.IsInf(lon, 0)
}
