package kafka

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"logsearch-backend/config"
	"logsearch-backend/internal/model"
)

// LogProducer publishes log records as events on the log topic, keyed by event name.
type LogProducer interface {
	Produce(ctx context.Context, records []model.LogRecord) error
	Close() error
}

type kafkaLogProducer struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaLogProducer(cfg *config.Config) (LogProducer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.LogTopic == "" {
		log.Error().Msg("Kafka brokers or log topic is not configured.")
		return nil, errors.New("kafka configuration missing")
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.LogTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    cfg.Archiver.BatchSize,
		BatchTimeout: cfg.Archiver.MaxBatchWait,
	})
	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.LogTopic).Msg("Kafka producer initialized")
	return &kafkaLogProducer{writer: writer, topic: cfg.Kafka.LogTopic}, nil
}

func (p *kafkaLogProducer) Produce(ctx context.Context, records []model.LogRecord) error {
	messages := buildMessages(records)
	if len(messages) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		log.Error().Err(err).Int("message_count", len(messages)).Msg("Failed to write messages to Kafka")
		return err
	}
	log.Debug().Int("message_count", len(messages)).Str("topic", p.topic).Msg("Successfully produced messages to Kafka")
	return nil
}

func (p *kafkaLogProducer) Close() error {
	return p.writer.Close()
}

func buildMessages(records []model.LogRecord) []kafka.Message {
	messages := make([]kafka.Message, 0, len(records))
	for _, record := range records {
		messages = append(messages, kafka.Message{
			Key:   []byte(record.Event),
			Value: []byte(record.Serialized()),
		})
	}
	return messages
}
