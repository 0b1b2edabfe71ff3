package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/darshan1137/case/internal/density"
	"github.com/darshan1137/case/internal/ward"
)

// Field defaults applied to intake reports.
const (
	UnknownWard       = "Unknown"
	UnknownArea       = "Unknown"
	DefaultSeverity   = "moderate"
	DefaultDepartment = "General"
	DefaultSource     = "web-form"
	DefaultCreatedBy  = "manual"
	StatusOpen        = "open"
	ticketIDPrefix    = "TKT-"
)

// Severities lists the accepted severity levels.
var Severities = []string{"low", "moderate", "high", "critical"}

var (
	ErrMissingCoordinates = errors.New("latitude and longitude are required")
	ErrInvalidCoordinates = errors.New("invalid latitude or longitude")
	ErrInvalidSeverity    = fmt.Errorf("invalid severity level, allowed: %s", strings.Join(Severities, ", "))
)

// ValidCoordinates reports whether lat and lon are finite WGS-84 values.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ParseRawReport decodes and validates a RawEvent's value.
func ParseRawReport(raw RawEvent) (RawReport, error) {
	var rep RawReport
	if err := json.Unmarshal(raw.Value, &rep); err != nil {
		return RawReport{}, fmt.Errorf("parse raw report: %w", err)
	}
	if rep.Latitude == nil || rep.Longitude == nil {
		return RawReport{}, ErrMissingCoordinates
	}
	if !ValidCoordinates(*rep.Latitude, *rep.Longitude) {
		return RawReport{}, fmt.Errorf("%w: %v,%v", ErrInvalidCoordinates, *rep.Latitude, *rep.Longitude)
	}
	sev, err := normalizeSeverity(rep.SeverityLevel)
	if err != nil {
		return RawReport{}, err
	}
	rep.SeverityLevel = sev
	return rep, nil
}

func normalizeSeverity(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSeverity, nil
	}
	for _, v := range Severities {
		if s == v {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
}

// NewTicketID returns a fresh TKT-XXXXXXXX identifier.
func NewTicketID() string {
	return ticketIDPrefix + strings.ToUpper(uuid.NewString()[:8])
}

// NewTicket builds an open ticket from a validated report, filling defaults
// and generating an ID when the report has none.
func NewTicket(rep RawReport) Ticket {
	t := Ticket{
		TicketID:      strings.TrimSpace(rep.TicketID),
		IssueType:     strings.ToLower(strings.TrimSpace(rep.IssueType)),
		Title:         rep.Title,
		Description:   rep.Description,
		SeverityLevel: rep.SeverityLevel,
		Department:    orDefault(rep.Department, DefaultDepartment),
		Source:        orDefault(rep.Source, DefaultSource),
		CreatedBy:     orDefault(rep.CreatedBy, DefaultCreatedBy),
		Status:        StatusOpen,
		Ward:          UnknownWard,
		WardMethod:    string(ward.MethodNone),
		AreaName:      UnknownArea,
	}
	if rep.Latitude != nil {
		t.Latitude = *rep.Latitude
	}
	if rep.Longitude != nil {
		t.Longitude = *rep.Longitude
	}
	if t.SeverityLevel == "" {
		t.SeverityLevel = DefaultSeverity
	}
	if t.TicketID == "" {
		t.TicketID = NewTicketID()
	}
	return t
}

// ApplyWard records a ward resolution. Unresolved tickets keep "Unknown".
func ApplyWard(t Ticket, res ward.Resolution) Ticket {
	t.Ward = res.CodeOr(UnknownWard)
	t.WardMethod = string(res.Method)
	return t
}

// ApplyPriority derives the ticket priority from a location score.
func ApplyPriority(t Ticket, score density.LocationScore, policy density.Policy) Ticket {
	t.PriorityScore = policy.Score(score.PriorityBoost)
	t.Priority = density.PriorityLevel(t.PriorityScore)
	t.LocationPriorityData = LocationPriority{
		NearbyTickets:  score.NearbyTickets,
		IsHighlighted:  score.IsHighlighted,
		SearchRadiusKm: score.SearchRadiusKm,
	}
	return t
}

// Stamp sets enriched_at from the package clock.
func Stamp(t Ticket) Ticket {
	t.EnrichedAt = clock.Now().UTC()
	return t
}

// Report returns the density view of the ticket.
func (t Ticket) Report() density.Report {
	return density.Report{
		TicketID:  t.TicketID,
		Latitude:  t.Latitude,
		Longitude: t.Longitude,
		Status:    t.Status,
		Ward:      t.Ward,
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
