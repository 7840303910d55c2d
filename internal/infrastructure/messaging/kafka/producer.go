// Package kafka publishes pipeline run events.  Publishing is optional and
// best-effort: a run is never failed because its completion event could not
// be delivered.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/patlytics/patscope/internal/config"
	"github.com/patlytics/patscope/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patscope/pkg/errors"
)

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes run events to a single topic.
type Producer struct {
	writer writerInterface
	topic  string
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer builds a Producer from configuration.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  maxRetries,
		BatchSize:    batchSize,
		WriteTimeout: writeTimeout,
		RequiredAcks: kafka.RequireAll,
	}

	return &Producer{
		writer: w,
		topic:  cfg.Topic,
		logger: log.Named("kafka"),
	}
}

// newProducerWithWriter wires a Producer over an arbitrary writer, for tests.
func newProducerWithWriter(w writerInterface, topic string, log logging.Logger) *Producer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Producer{writer: w, topic: topic, logger: log}
}

// PublishRunEvent serializes the event as JSON, keyed by run id so all
// events of one run land on the same partition.
func (p *Producer) PublishRunEvent(ctx context.Context, event RunEvent) error {
	if p.closed.Load() {
		return errors.New(errors.CodeEventPublishError, "producer is closed")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.CodeEventPublishError, "failed to serialize run event")
	}

	msg := kafka.Message{
		Key:   []byte(event.RunID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.CodeEventPublishError, "failed to publish run event")
	}

	p.logger.Debug("run event published",
		logging.String("topic", p.topic),
		logging.String("run_id", event.RunID),
		logging.String("type", string(event.Type)),
	)
	return nil
}

// Close flushes and shuts the writer down.  Safe to call more than once.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, errors.CodeEventPublishError, "failed to close kafka writer")
	}
	p.logger.Info("closed kafka producer")
	return nil
}
