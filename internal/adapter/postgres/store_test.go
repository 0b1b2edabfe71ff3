package postgres

import (
	"database/sql"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportStore_TableValidation(t *testing.T) {
	for _, name := range []string{"tickets", "public.tickets", "_t1"} {
		_, err := NewReportStore(nil, name, 0)
		assert.NoError(t, err, name)
	}
	for _, name := range []string{"", "1tickets", "tickets; DROP TABLE x", "a.b.c", "tick-ets"} {
		_, err := NewReportStore(nil, name, 0)
		assert.Error(t, err, name)
	}
}

func TestNewReportStore_DefaultLimit(t *testing.T) {
	s, err := NewReportStore(nil, "tickets", -5)
	require.NoError(t, err)
	assert.Equal(t, DefaultSnapshotLimit, s.limit)
}

func TestSnapshotQuery(t *testing.T) {
	q := snapshotQuery("public.tickets")
	assert.True(t, strings.HasPrefix(q, "SELECT ticket_id, latitude, longitude, status, ward FROM public.tickets"))
	assert.Contains(t, q, "IS DISTINCT FROM 'closed'")
	assert.Contains(t, q, "LIMIT $1")
}

func TestSnapshotQuery_KeepsNewestReports(t *testing.T) {
	q := snapshotQuery("tickets")
	assert.Contains(t, q, "ORDER BY created_at DESC, ticket_id DESC LIMIT $1")
	assert.True(t, strings.Index(q, "ORDER BY") < strings.Index(q, "LIMIT"))
}

func TestSchema(t *testing.T) {
	stmts := Schema("public.tickets")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS public.tickets")
	assert.Contains(t, stmts[1], "idx_public_tickets_status_created")
}

type fakeRow struct {
	values []any
	err    error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = f.values[i].(string)
		case *sql.NullFloat64:
			if v, ok := f.values[i].(float64); ok {
				*p = sql.NullFloat64{Float64: v, Valid: true}
			}
		case *sql.NullString:
			if v, ok := f.values[i].(string); ok {
				*p = sql.NullString{String: v, Valid: true}
			}
		}
	}
	return nil
}

func TestScanReport(t *testing.T) {
	r, err := scanReport(fakeRow{values: []any{"TKT-1", 19.07, 72.87, "open", "K/E"}})
	require.NoError(t, err)
	assert.Equal(t, "TKT-1", r.TicketID)
	assert.Equal(t, 19.07, r.Latitude)
	assert.Equal(t, "K/E", r.Ward)
	assert.True(t, r.HasCoordinates())

	r, err = scanReport(fakeRow{values: []any{"TKT-2", nil, nil, nil, nil}})
	require.NoError(t, err)
	assert.False(t, r.HasCoordinates())
	assert.True(t, math.IsNaN(r.Latitude))
	assert.True(t, r.IsOpen())

	r, err = scanReport(fakeRow{values: []any{"TKT-3", 0.0, 0.0, "open", "A"}})
	require.NoError(t, err)
	assert.True(t, r.HasCoordinates(), "origin is a stored position")

	_, err = scanReport(fakeRow{err: errors.New("boom")})
	assert.Error(t, err)
}
