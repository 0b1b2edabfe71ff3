package pipeline

import (
	"context"

	"github.com/darshan1137/case/internal/density"
	"github.com/darshan1137/case/internal/domain"
)

// ReportRecorder receives reports once their tickets are loaded.
// *engine.MemoryReports satisfies it.
type ReportRecorder interface {
	Add(reports ...density.Report)
}

// RecordingLoader forwards tickets to next and, after a successful load,
// records them so later density queries observe them.
type RecordingLoader struct {
	next     BatchLoader
	recorder ReportRecorder
}

// NewRecordingLoader wraps next.
func NewRecordingLoader(next BatchLoader, recorder ReportRecorder) *RecordingLoader {
	return &RecordingLoader{next: next, recorder: recorder}
}

func (l *RecordingLoader) LoadBatch(ctx context.Context, tickets []domain.Ticket) error {
	if err := l.next.LoadBatch(ctx, tickets); err != nil {
		return err
	}
	reports := make([]density.Report, len(tickets))
	for i := range tickets {
		reports[i] = tickets[i].Report()
	}
	l.recorder.Add(reports...)
	return nil
}
