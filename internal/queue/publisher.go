package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/pairwatch/internal/models"
	"github.com/hetulpatel/pairwatch/internal/report"
)

// MessageWriter is the subset of *kafka.Writer used for publishing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PublishVerdicts writes one message per report, keyed by chain and pair
// address so a pair's events land on the same partition.
func PublishVerdicts(ctx context.Context, writer MessageWriter, reports []report.Report) error {
	if writer == nil || len(reports) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(reports))
	for _, r := range reports {
		event := models.NewVerdictEvent(r)
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal verdict %s: %w", event.PairAddress, err)
		}
		key := fmt.Sprintf("%s-%s", event.Chain, event.PairAddress)
		msgs = append(msgs, kafka.Message{Key: []byte(key), Value: payload})
	}
	return writer.WriteMessages(ctx, msgs...)
}

// Sink publishes every cycle's reports to Kafka.
type Sink struct {
	writer MessageWriter
}

func NewSink(writer MessageWriter) *Sink {
	return &Sink{writer: writer}
}

func (s *Sink) Name() string {
	return "kafka"
}

func (s *Sink) Emit(ctx context.Context, reports []report.Report) error {
	return PublishVerdicts(ctx, s.writer, reports)
}
