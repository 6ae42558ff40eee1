package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"logsearch-backend/config"
	"logsearch-backend/internal/codec"
	"logsearch-backend/internal/kafka"
	"logsearch-backend/internal/logging"
	"logsearch-backend/internal/model"
	"logsearch-backend/internal/objectstore"
	"logsearch-backend/internal/parser"
)

// Uploads local log files into the configured bucket so a fresh environment has something to search.
// With --kafka the records are published to the log topic instead and reach the bucket through the archiver.
func main() {
	var (
		suffix  string
		publish bool
	)
	cmd := &cobra.Command{
		Use:   "seed <dir>",
		Short: "Upload local log files to the log bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			closer := logging.Setup(cfg.Logging)
			defer closer.Close()

			if publish {
				producer, err := kafka.NewKafkaLogProducer(cfg)
				if err != nil {
					return err
				}
				defer producer.Close()
				published, err := publishRecords(cmd.Context(), producer, args[0])
				if err != nil {
					return err
				}
				log.Info().Int("published", published).Str("topic", cfg.Kafka.LogTopic).Msg("Seeding finished")
				return nil
			}

			store, err := objectstore.NewStore(cfg)
			if err != nil {
				return err
			}
			uploaded, err := seed(cmd.Context(), store, cfg.ObjectStore.Bucket, args[0], suffix)
			if err != nil {
				return err
			}
			log.Info().Int("uploaded", uploaded).Str("bucket", cfg.ObjectStore.Bucket).Msg("Seeding finished")
			return nil
		},
	}
	cmd.Flags().StringVar(&suffix, "compress", ".gz", "suffix of the codec applied to uncompressed files (.gz, .zst or empty)")
	cmd.Flags().BoolVar(&publish, "kafka", false, "publish decodable records to the Kafka log topic instead of uploading files")

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Seeding failed")
		os.Exit(1)
	}
}

// walkFiles visits every non-hidden regular file under dir.
func walkFiles(dir string, visit func(path, name string, data []byte) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return visit(path, filepath.ToSlash(rel), data)
	})
}

func seed(ctx context.Context, store objectstore.Store, bucket, dir, suffix string) (int, error) {
	uploaded := 0
	err := walkFiles(dir, func(path, name string, data []byte) error {
		var err error
		if model.CompressionForName(name) == model.CompressionNone && suffix != "" {
			name += suffix
			if data, err = codec.Compress(data, name); err != nil {
				return fmt.Errorf("compress %s: %w", path, err)
			}
		}

		if err := store.Put(ctx, bucket, name, data); err != nil {
			return fmt.Errorf("upload %s: %w", name, err)
		}
		log.Info().Str("file", path).Str("object", name).Int("bytes", len(data)).Msg("Uploaded log file")
		uploaded++
		return nil
	})
	return uploaded, err
}

// publishRecords sends every decodable line of the files under dir, decompressing them first.
func publishRecords(ctx context.Context, producer kafka.LogProducer, dir string) (int, error) {
	lineParser := parser.NewJSONLineParser()
	published := 0
	err := walkFiles(dir, func(path, name string, data []byte) error {
		content, err := codec.Decompress(data, name)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping undecodable file")
			return nil
		}
		var records []model.LogRecord
		for _, line := range strings.Split(string(content), "\n") {
			if record, ok := parser.Decode(lineParser, line); ok {
				records = append(records, record)
			}
		}
		if err := producer.Produce(ctx, records); err != nil {
			return fmt.Errorf("publish %s: %w", path, err)
		}
		log.Info().Str("file", path).Int("records", len(records)).Msg("Published log file")
		published += len(records)
		return nil
	})
	return published, err
}
