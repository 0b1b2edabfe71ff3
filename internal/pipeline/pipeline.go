package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/darshan1137/case/internal/domain"
	"github.com/darshan1137/case/internal/observability"
	"github.com/darshan1137/case/internal/ward"
)

// BatchExtractor reads up to batchSize raw events from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns a raw citizen report into an enriched ticket.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.Ticket, error)
}

// BatchLoader writes enriched tickets to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, tickets []domain.Ticket) error
}

// Retry delays after a failed extract or load.
const (
	minRetryDelay = 200 * time.Millisecond
	maxRetryDelay = 5 * time.Second
)

// Reasons a report is rejected before it becomes a ticket.
const (
	RejectMissingCoordinates = "missing_coordinates"
	RejectInvalidCoordinates = "invalid_coordinates"
	RejectInvalidSeverity    = "invalid_severity"
	RejectMalformed          = "malformed"
)

// Pipeline is the report intake loop. Each cycle pulls a batch of citizen
// reports, turns every valid one into a ward-routed, prioritised ticket,
// loads the tickets and only then commits their offsets.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
	processed   atomic.Int64
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// Processed returns the number of tickets loaded since start.
func (p *Pipeline) Processed() int64 {
	return p.processed.Load()
}

// Run processes batches until ctx is cancelled. Extract and load failures
// are retried with a doubling delay; a successful extract resets it.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer func() {
		p.metrics.PipelineRunning.Set(0)
		p.logger.Info("pipeline stopped", "processed", p.processed.Load())
	}()

	retry := retrier{delay: minRetryDelay}
	for ctx.Err() == nil {
		if err := p.cycle(ctx, &retry); err != nil {
			if ctx.Err() != nil {
				break
			}
			if !retry.wait(ctx) {
				break
			}
		}
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// cycle runs one extract, enrich, load and commit pass. A non-nil error
// means the caller should back off before the next pass.
func (p *Pipeline) cycle(ctx context.Context, retry *retrier) error {
	start := time.Now()

	reports, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Error("extract batch failed", "error", err)
		}
		return err
	}
	if len(reports) == 0 {
		return nil
	}
	retry.reset()
	p.metrics.ReportsConsumed.Add(float64(len(reports)))
	p.metrics.BatchSize.Observe(float64(len(reports)))

	b := p.enrich(ctx, reports)
	if len(b.tickets) == 0 {
		return nil
	}

	if err := p.loader.LoadBatch(ctx, b.tickets); err != nil {
		p.logger.Error("load tickets failed", "error", err, "batch_size", len(b.tickets))
		return err
	}
	for _, raw := range b.sources {
		p.commit(ctx, raw)
	}

	p.observeLoaded(b.tickets)
	p.processed.Add(int64(len(b.tickets)))
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	return nil
}

// batch pairs enriched tickets with the events they came from, so offsets
// are committed only for reports that were actually loaded.
type batch struct {
	tickets []domain.Ticket
	sources []domain.RawEvent
}

// enrich transforms each report. Rejected reports are committed at once
// since redelivery cannot fix them.
func (p *Pipeline) enrich(ctx context.Context, reports []domain.RawEvent) batch {
	b := batch{
		tickets: make([]domain.Ticket, 0, len(reports)),
		sources: make([]domain.RawEvent, 0, len(reports)),
	}
	for _, raw := range reports {
		ticket, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			reason := rejectReason(err)
			p.logger.Warn("report rejected",
				"reason", reason,
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.ReportsRejected.WithLabelValues(reason).Inc()
			p.commit(ctx, raw)
			continue
		}
		b.tickets = append(b.tickets, ticket)
		b.sources = append(b.sources, raw)
	}
	return b
}

// observeLoaded records the ward and priority outcome of loaded tickets.
func (p *Pipeline) observeLoaded(tickets []domain.Ticket) {
	unrouted := 0
	for i := range tickets {
		p.metrics.TicketsProduced.WithLabelValues(tickets[i].Priority).Inc()
		if tickets[i].WardMethod == string(ward.MethodNone) {
			unrouted++
		}
	}
	if unrouted > 0 {
		p.metrics.TicketsUnrouted.Add(float64(unrouted))
		p.logger.Warn("tickets without a ward", "count", unrouted)
	}
	p.logger.Debug("tickets loaded", "count", len(tickets))
}

// rejectReason classifies a transform error for the rejection metric.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCoordinates):
		return RejectMissingCoordinates
	case errors.Is(err, domain.ErrInvalidCoordinates):
		return RejectInvalidCoordinates
	case errors.Is(err, domain.ErrInvalidSeverity):
		return RejectInvalidSeverity
	default:
		return RejectMalformed
	}
}

// commit acknowledges raw if its source supports commits.
func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// retrier holds the current retry delay.
type retrier struct {
	delay time.Duration
}

func (r *retrier) reset() { r.delay = minRetryDelay }

// wait sleeps for the current delay and doubles it up to maxRetryDelay.
// It returns false if ctx ends first.
func (r *retrier) wait(ctx context.Context) bool {
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	r.delay = min(r.delay*2, maxRetryDelay)
	return true
}
