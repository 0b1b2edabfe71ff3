package engine

import (
	"context"
	"sync"

	"github.com/darshan1137/case/internal/density"
)

// StaticReports is a fixed report set.
type StaticReports []density.Report

// OpenReports returns a copy of the set.
func (s StaticReports) OpenReports(_ context.Context) ([]density.Report, error) {
	return append([]density.Report(nil), s...), nil
}

// MemoryReports is an in-process report store bounded to the most recent
// limit entries. It backs density queries when no database is configured.
type MemoryReports struct {
	mu      sync.RWMutex
	limit   int
	reports []density.Report
}

// NewMemoryReports creates a store keeping at most limit reports. A
// non-positive limit keeps everything.
func NewMemoryReports(limit int) *MemoryReports {
	return &MemoryReports{limit: limit}
}

// Add appends reports, evicting the oldest past the limit.
func (m *MemoryReports) Add(reports ...density.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, reports...)
	if m.limit > 0 && len(m.reports) > m.limit {
		m.reports = append([]density.Report(nil), m.reports[len(m.reports)-m.limit:]...)
	}
}

// OpenReports returns a snapshot of the stored reports.
func (m *MemoryReports) OpenReports(_ context.Context) ([]density.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]density.Report(nil), m.reports...), nil
}

// Len returns the number of stored reports.
func (m *MemoryReports) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}
