// Package density finds clusters of open reports and scores a location by
// how many open reports already sit near it.
//
// All functions are pure over the caller's slice: they never retain or
// modify it.
package density

import (
	"math"
	"strings"
)

// StatusClosed marks a report that no longer counts toward density.
const StatusClosed = "closed"

// Report is the read-only view of a stored report used for density work.
type Report struct {
	TicketID  string  `json:"ticket_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status"`
	Ward      string  `json:"ward"`
}

// HasCoordinates reports whether the report carries a usable location.
// Sources encode a missing coordinate as NaN. Zero is a real position.
func (r Report) HasCoordinates() bool {
	return finite(r.Latitude) && finite(r.Longitude)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsOpen reports whether the report has not been closed.
func (r Report) IsOpen() bool {
	return !strings.EqualFold(strings.TrimSpace(r.Status), StatusClosed)
}

// eligible reports whether the report takes part in spatial counting.
func (r Report) eligible() bool {
	return r.IsOpen() && r.HasCoordinates()
}

// eligibleReports returns the positions of eligible reports in input order.
func eligibleReports(reports []Report) []int {
	out := make([]int, 0, len(reports))
	for i := range reports {
		if reports[i].eligible() {
			out = append(out, i)
		}
	}
	return out
}
