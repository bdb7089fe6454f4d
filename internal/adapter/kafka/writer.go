// Package kafka publishes aggregate records to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/config"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
)

// Writer produces messages to a Kafka topic.
// It implements pipeline.AggregatePublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewWriter creates a Kafka producer for the configured aggregate topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger, clock: clockwork.NewRealClock()}
}

// PublishAggregates serializes and publishes all rows in a single
// WriteMessages call. Rows for the same (year, state) hash to the same
// partition.
func (w *Writer) PublishAggregates(ctx context.Context, rows []domain.AggregateRecord) error {
	if len(rows) == 0 {
		return nil
	}
	publishedAt := w.clock.Now()
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(rows[i], publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write aggregates: %w", err)
	}
	w.logger.Debug("aggregates written", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey identifies a (year, state) row. The state name stands in for a
// missing subdivision code.
func messageKey(row domain.AggregateRecord) string {
	id := row.StateCode
	if id == "" {
		id = row.State
	}
	return strconv.Itoa(row.Year) + "|" + id
}

// serializeToMessage marshals an AggregateRecord into a Kafka message.
func serializeToMessage(row domain.AggregateRecord, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize aggregate: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(messageKey(row)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "year", Value: []byte(strconv.Itoa(row.Year))},
			{Key: "state_code", Value: []byte(row.StateCode)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
