// Package postgres reads the open-report snapshot from the ticket table
// maintained by the persistence service.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"

	_ "github.com/lib/pq"

	"github.com/darshan1137/case/internal/density"
)

// DefaultSnapshotLimit caps the number of rows read per snapshot.
const DefaultSnapshotLimit = 1000

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Open opens a connection pool for dsn.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	return db, nil
}

// ReportStore implements engine.ReportSource over a tickets table.
type ReportStore struct {
	db    *sql.DB
	table string
	limit int
	query string
}

// NewReportStore validates the table name and prepares the snapshot query.
func NewReportStore(db *sql.DB, table string, limit int) (*ReportStore, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid reports table name %q", table)
	}
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	return &ReportStore{db: db, table: table, limit: limit, query: snapshotQuery(table)}, nil
}

func snapshotQuery(table string) string {
	return `SELECT ticket_id, latitude, longitude, status, ward FROM ` + table +
		` WHERE status IS DISTINCT FROM 'closed' ORDER BY created_at DESC, ticket_id DESC LIMIT $1`
}

// Schema returns the DDL for the tickets table, for local setups where the
// persistence service has not created it.
func Schema(table string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS ` + table + ` (
			ticket_id TEXT PRIMARY KEY,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			status TEXT NOT NULL DEFAULT 'open',
			ward TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + indexName(table) + ` ON ` + table + `(status, created_at)`,
	}
}

// EnsureSchema creates the tickets table and its index when missing.
func (s *ReportStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema(s.table) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema for %s: %w", s.table, err)
		}
	}
	return nil
}

// Ping checks the connection.
func (s *ReportStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// OpenReports returns the newest limit non-closed reports, newest first.
func (s *ReportStore) OpenReports(ctx context.Context) ([]density.Report, error) {
	rows, err := s.db.QueryContext(ctx, s.query, s.limit)
	if err != nil {
		return nil, fmt.Errorf("query open reports: %w", err)
	}
	defer rows.Close()

	var out []density.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan open report: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate open reports: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanReport maps a row to a Report. NULL coordinates become NaN, which
// density treats as missing.
func scanReport(row scanner) (density.Report, error) {
	var (
		id            string
		lat, lon      sql.NullFloat64
		status, wardC sql.NullString
	)
	if err := row.Scan(&id, &lat, &lon, &status, &wardC); err != nil {
		return density.Report{}, err
	}
	return density.Report{
		TicketID:  id,
		Latitude:  nullCoord(lat),
		Longitude: nullCoord(lon),
		Status:    status.String,
		Ward:      wardC.String,
	}, nil
}

func nullCoord(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func indexName(table string) string {
	b := []byte("idx_" + table + "_status_created")
	for i, c := range b {
		if c == '.' {
			b[i] = '_'
		}
	}
	return string(b)
}
