package kafka

import (
	"context"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-index-etl/internal/config"
	"github.com/couchcryptid/weather-index-etl/internal/domain"
)

// Reader consumes raw index envelopes from the source topic as part of a
// consumer group. It implements pipeline.BatchExtractor.
type Reader struct {
	reader    *kafkago.Reader
	logger    *slog.Logger
	batchWait time.Duration
}

// NewReader creates a Kafka consumer for the configured source topic.
// Offsets are committed explicitly by the pipeline, never on an interval.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaSourceTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Reader{reader: r, logger: logger, batchWait: cfg.BatchWait}
}

// ExtractBatch reads up to batchSize messages. It blocks until the first
// message arrives, then keeps reading until the batch is full or the batch
// wait elapses, so a slow topic still yields small timely batches.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]domain.RawEvent, 0, batchSize)
	events = append(events, r.toRawEvent(first))

	waitCtx, cancel := context.WithTimeout(ctx, r.batchWait)
	defer cancel()

	for len(events) < batchSize {
		msg, err := r.reader.FetchMessage(waitCtx)
		if err != nil {
			break
		}
		events = append(events, r.toRawEvent(msg))
	}

	r.logger.Debug("extracted batch", "size", len(events))
	return events, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

func (r *Reader) toRawEvent(msg kafkago.Message) domain.RawEvent {
	ev := mapMessageToRawEvent(msg)
	ev.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return ev
}

// mapMessageToRawEvent copies the Kafka message fields into the domain form.
// The commit hook is attached separately because it needs the reader.
func mapMessageToRawEvent(msg kafkago.Message) domain.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return domain.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
