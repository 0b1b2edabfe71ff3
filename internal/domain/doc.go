// Package domain models citizen infrastructure reports as they move through
// the intake pipeline.
//
// # Intake record
//
// Reports arrive on the source topic as flat JSON produced by the web form,
// the mobile app, or the chat bot:
//
//	{"issue_type": "pothole", "title": "...", "description": "...",
//	 "latitude": 19.0760, "longitude": 72.8777, "severity_level": "high"}
//
// Coordinates are required and must lie within WGS-84 range. Severity is one
// of low, moderate, high, or critical and defaults to moderate. Anything else
// is rejected by [ParseRawReport] and the message is skipped.
//
// # Ticket ID
//
// A report without a ticket_id receives one of the form TKT-XXXXXXXX, the
// first eight hex digits of a random UUID in upper case. See [NewTicketID].
//
// # Enrichment
//
// The pipeline attaches the owning ward, a density based priority, and an
// optional reverse geocoded area name, then stamps enriched_at from the
// package clock. A report whose ward cannot be resolved is kept with ward
// "Unknown" rather than dropped.
package domain
