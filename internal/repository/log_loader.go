package repository

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"logsearch-backend/internal/codec"
	"logsearch-backend/internal/model"
	"logsearch-backend/internal/objectstore"
	"logsearch-backend/internal/parser"
)

// lines between cancellation checks while decoding one object
const cancelCheckInterval = 1024

// LoadResult is what one object contributed: its decoded records in line order and everything skipped.
type LoadResult struct {
	Object      model.LogObject
	Records     []model.LogRecord
	RecordLines []int // 1-based line of each record
	Diagnostics []model.Diagnostic
	Lines       int
}

// Failed reports whether the object as a whole was discarded.
func (r LoadResult) Failed() bool {
	for _, d := range r.Diagnostics {
		if d.Line == 0 {
			return true
		}
	}
	return false
}

type LogLoader interface {
	// Load never fails: fetch, decompression and encoding failures discard the object
	// and bad lines are skipped, each leaving a diagnostic behind.
	Load(ctx context.Context, obj model.LogObject) LoadResult
	// ReadLines returns up to n raw lines of the object, decompressed.
	ReadLines(ctx context.Context, obj model.LogObject, n int) ([]string, error)
}

type logLoader struct {
	store  objectstore.Store
	bucket string
	parser parser.LogParser
}

func NewLogLoader(store objectstore.Store, bucket string, p parser.LogParser) LogLoader {
	return &logLoader{
		store:  store,
		bucket: bucket,
		parser: p,
	}
}

func (l *logLoader) Load(ctx context.Context, obj model.LogObject) LoadResult {
	result := LoadResult{Object: obj}

	text, err := l.readText(ctx, obj)
	if err != nil {
		// cancellation is surfaced by the caller, not as a skipped object
		if ctx.Err() != nil {
			return result
		}
		kind := model.KindOf(err)
		if kind == nil {
			kind = model.ErrFetch
		}
		log.Warn().Err(err).Str("object", obj.Name).Str("kind", model.KindName(kind)).Msg("Skipping log object")
		result.Diagnostics = append(result.Diagnostics, model.NewDiagnostic(obj.Name, 0, kind, err))
		return result
	}

	lineNo := 0
	for line := range splitLines(text) {
		lineNo++
		if lineNo%cancelCheckInterval == 0 && ctx.Err() != nil {
			result.Lines = lineNo
			return result
		}
		record, err := l.parser.Parse(line)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, model.NewDiagnostic(obj.Name, lineNo, model.ErrLineDecode, err))
			continue
		}
		result.Records = append(result.Records, record)
		result.RecordLines = append(result.RecordLines, lineNo)
	}
	result.Lines = lineNo

	log.Debug().
		Str("object", obj.Name).
		Int("lines", lineNo).
		Int("records", len(result.Records)).
		Int("skipped_lines", len(result.Diagnostics)).
		Msg("Loaded log object")
	return result
}

func (l *logLoader) ReadLines(ctx context.Context, obj model.LogObject, n int) ([]string, error) {
	text, err := l.readText(ctx, obj)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, n)
	for line := range splitLines(text) {
		if len(lines) >= n {
			break
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// readText fetches, decompresses and validates one object.
func (l *logLoader) readText(ctx context.Context, obj model.LogObject) (string, error) {
	rc, err := l.store.Get(ctx, l.bucket, obj.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", model.ErrFetch, obj.Name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", model.ErrFetch, obj.Name, err)
	}

	content, err := codec.Decompress(raw, obj.Name)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: %s", model.ErrEncoding, obj.Name)
	}
	return string(content), nil
}
