package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kokorev/ghcndaily/internal/config"
	"github.com/kokorev/ghcndaily/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// DateHeaderLayout is the format of the "date" message header.
const DateHeaderLayout = "2006-01-02"

// Writer produces daily observations to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured observation topic.
// Messages are partitioned by station so a station's series stays ordered.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes the observations in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, obs []domain.DailyObservation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(obs))
	for i := range obs {
		msg, err := serializeToMessage(obs[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("batch published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an observation into a Kafka message keyed by
// station id.
func serializeToMessage(o domain.DailyObservation) (kafkago.Message, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(o.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "element", Value: []byte(o.Element)},
			{Key: "date", Value: []byte(o.Date.Format(DateHeaderLayout))},
		},
	}, nil
}
