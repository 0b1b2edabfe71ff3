package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/darshan1137/case/internal/config"
	"github.com/darshan1137/case/internal/domain"
)

// Writer produces enriched tickets to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes tickets in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(tickets))
	for i := range tickets {
		msg, err := serializeToMessage(tickets[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d tickets: %w", len(msgs), err)
	}
	w.logger.Debug("tickets written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

// Close flushes and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Ticket into a Kafka message keyed by ticket ID.
func serializeToMessage(t domain.Ticket) (kafkago.Message, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize ticket: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(t.TicketID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "ticket_id", Value: []byte(t.TicketID)},
			{Key: "ward", Value: []byte(t.Ward)},
			{Key: "priority", Value: []byte(t.Priority)},
			{Key: "enriched_at", Value: []byte(t.EnrichedAt.Format(time.RFC3339))},
		},
	}, nil
}
