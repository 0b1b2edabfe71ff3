package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// RawReport is the intake JSON for a single citizen report.
type RawReport struct {
	TicketID      string   `json:"ticket_id,omitempty"`
	IssueType     string   `json:"issue_type"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	SeverityLevel string   `json:"severity_level,omitempty"`
	Department    string   `json:"department,omitempty"`
	Source        string   `json:"source,omitempty"`
	CreatedBy     string   `json:"created_by,omitempty"`
}

// LocationPriority records the density evidence behind a ticket's priority.
type LocationPriority struct {
	NearbyTickets  int     `json:"nearby_tickets"`
	IsHighlighted  bool    `json:"is_highlighted"`
	SearchRadiusKm float64 `json:"search_radius_km"`
}

// Ticket is the enriched report written to the sink topic.
type Ticket struct {
	TicketID      string  `json:"ticket_id"`
	IssueType     string  `json:"issue_type"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	SeverityLevel string  `json:"severity_level"`
	Department    string  `json:"department"`
	Source        string  `json:"source"`
	CreatedBy     string  `json:"created_by"`
	Status        string  `json:"status"`

	// Ward enrichment.
	Ward       string `json:"ward"`
	WardMethod string `json:"ward_method"`

	// Priority enrichment.
	Priority             string           `json:"priority"`
	PriorityScore        float64          `json:"priority_score"`
	LocationPriorityData LocationPriority `json:"location_priority_data"`

	// Reverse geocoding enrichment.
	AreaName string `json:"area_name"`

	RawPayload []byte    `json:"-"`
	EnrichedAt time.Time `json:"enriched_at"`
}
