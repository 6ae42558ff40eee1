package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"

	"logsearch-backend/config"
	"logsearch-backend/internal/codec"
	"logsearch-backend/internal/kafka"
	"logsearch-backend/internal/metrics"
	"logsearch-backend/internal/objectstore"
	"logsearch-backend/internal/parser"
)

const archiveNameLayout = "2006-01-02T15-04-05.000000Z"

// LogArchiverService drains log events from Kafka into compressed objects that the search
// engine reads back. Each batch becomes one object named after its flush time so that
// descending name order follows recency.
type LogArchiverService interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
	// ProcessBatch collects up to one batch, writes it and commits the offsets.
	// It returns the name of the written object, or "" when nothing was written.
	ProcessBatch(ctx context.Context) (string, error)
}

type logArchiverService struct {
	consumer    kafka.MessageConsumer
	store       objectstore.Store
	parser      parser.LogParser
	bucket      string
	batchSize   int
	maxWaitTime time.Duration
	suffix      string
	tag         string
	now         func() time.Time
}

func NewLogArchiverService(
	consumer kafka.MessageConsumer,
	store objectstore.Store,
	p parser.LogParser,
	cfg *config.Config,
) LogArchiverService {
	s := &logArchiverService{
		consumer:    consumer,
		store:       store,
		parser:      p,
		bucket:      cfg.ObjectStore.Bucket,
		batchSize:   cfg.Archiver.BatchSize,
		maxWaitTime: cfg.Archiver.MaxBatchWait,
		suffix:      cfg.Archiver.Compression,
		tag:         cfg.Archiver.Tag,
		now:         time.Now,
	}
	if s.batchSize <= 0 {
		s.batchSize = 500
	}
	if s.maxWaitTime <= 0 {
		s.maxWaitTime = 30 * time.Second
	}
	if s.suffix == "" {
		s.suffix = ".log.gz"
	}
	if s.tag == "" {
		s.tag = "app"
	}
	return s
}

func (s *logArchiverService) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	log.Info().Str("bucket", s.bucket).Int("batch_size", s.batchSize).Msg("Starting log archiver loop...")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Log archiver loop stopping due to context cancellation.")
			return
		default:
		}

		if _, err := s.ProcessBatch(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("Context cancelled during archive batch.")
				return
			}
			log.Error().Err(err).Msg("Error processing archive batch")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}
}

func (s *logArchiverService) ProcessBatch(ctx context.Context) (string, error) {
	messages := make([]kafkaGo.Message, 0, s.batchSize)
	batchStartTime := s.now()

	for len(messages) < s.batchSize {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		remaining := s.maxWaitTime - time.Since(batchStartTime)
		if remaining <= 0 {
			break
		}

		fetchCtx, cancel := context.WithTimeout(ctx, remaining)
		msg, err := s.consumer.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				log.Debug().Int("batch_size", len(messages)).Msg("Max wait time reached for batch, processing partial batch.")
				break
			}
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("failed to fetch kafka message: %w", err)
		}
		messages = append(messages, msg)
	}

	if len(messages) == 0 {
		log.Debug().Msg("No messages in batch to archive.")
		return "", nil
	}

	content, written := s.render(messages)
	name := ""
	if written > 0 {
		name = s.objectName(messages[0])
		data, err := codec.Compress(content, name)
		if err != nil {
			return "", fmt.Errorf("failed compressing archive %s: %w", name, err)
		}
		// not committing leads to the batch being consumed again
		if err := s.store.Put(ctx, s.bucket, name, data); err != nil {
			log.Error().Err(err).Str("object", name).Msg("Failed to write archive object")
			return "", fmt.Errorf("failed storing archive %s: %w", name, err)
		}
		metrics.ObserveArchive(written)
	}

	if err := s.consumer.CommitMessages(ctx, messages...); err != nil {
		return name, fmt.Errorf("failed committing kafka messages: %w", err)
	}
	log.Info().
		Str("object", name).
		Int("messages", len(messages)).
		Int("lines", written).
		Msg("Archived and committed batch.")
	return name, nil
}

// render formats each valid message as "time<TAB>tag<TAB>payload". Messages that do not
// hold a structured log record are dropped but still committed.
func (s *logArchiverService) render(messages []kafkaGo.Message) ([]byte, int) {
	var buf bytes.Buffer
	written := 0
	for _, msg := range messages {
		record, err := s.parser.Parse(string(msg.Value))
		if err != nil {
			log.Warn().Err(err).Int("partition", msg.Partition).Int64("offset", msg.Offset).Msg("Dropping undecodable log event")
			continue
		}
		ts := msg.Time
		if ts.IsZero() {
			ts = s.now()
		}
		buf.WriteString(ts.UTC().Format(time.RFC3339))
		buf.WriteByte('\t')
		buf.WriteString(s.tag)
		buf.WriteByte('\t')
		buf.WriteString(record.Serialized())
		buf.WriteByte('\n')
		written++
	}
	return buf.Bytes(), written
}

func (s *logArchiverService) objectName(first kafkaGo.Message) string {
	return fmt.Sprintf("%s_p%d_o%d%s", s.now().UTC().Format(archiveNameLayout), first.Partition, first.Offset, s.suffix)
}
