package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"logsearch-backend/config"
	"logsearch-backend/internal/dto"
	"logsearch-backend/internal/metrics"
	"logsearch-backend/internal/model"
	"logsearch-backend/internal/repository"
)

const (
	DefaultLimit       = 100
	DefaultSampleLines = 5

	// records filtered between cancellation checks
	cancelCheckInterval = 1024
)

var (
	ErrInvalidQuery      = errors.New("invalid search query")
	ErrNoLogObjects      = errors.New("no log files found")
	ErrSampleUnavailable = errors.New("sample object could not be read")
)

// SearchResult is the ordered, bounded output of one search together with everything that was skipped.
type SearchResult struct {
	Records        []model.LogRecord
	Diagnostics    []model.Diagnostic
	ObjectsTotal   int
	ObjectsScanned int
}

type LogQueryService interface {
	// SearchLogs returns at most req.Limit matching records in object order, then line order.
	// Only model.ErrStoreUnavailable, ErrInvalidQuery and context errors are returned;
	// every other failure ends up in SearchResult.Diagnostics.
	SearchLogs(ctx context.Context, req dto.LogSearchRequest) (*SearchResult, error)
	// Sample returns the first raw lines of the most recent object.
	Sample(ctx context.Context) (*dto.LogSampleResponse, error)
}

type logQueryService struct {
	objects      repository.LogObjectRepository
	loader       repository.LogLoader
	defaultLimit int
	maxLimit     int
	prefetch     int
	sampleLines  int
}

func NewLogQueryService(cfg *config.Config, objects repository.LogObjectRepository, loader repository.LogLoader) LogQueryService {
	s := &logQueryService{
		objects:      objects,
		loader:       loader,
		defaultLimit: cfg.Search.DefaultLimit,
		maxLimit:     cfg.Search.MaxLimit,
		prefetch:     cfg.Search.Prefetch,
		sampleLines:  cfg.Search.SampleLines,
	}
	if s.defaultLimit <= 0 {
		s.defaultLimit = DefaultLimit
	}
	if s.prefetch <= 0 {
		s.prefetch = 1
	}
	if s.sampleLines <= 0 {
		s.sampleLines = DefaultSampleLines
	}
	return s
}

func (s *logQueryService) SearchLogs(ctx context.Context, req dto.LogSearchRequest) (*SearchResult, error) {
	started := time.Now()

	req, err := s.normalize(req)
	if err != nil {
		metrics.ObserveSearch("invalid", time.Since(started), 0, 0)
		return nil, err
	}
	filter, err := newRecordFilter(req)
	if err != nil {
		metrics.ObserveSearch("invalid", time.Since(started), 0, 0)
		return nil, err
	}

	searchID := uuid.NewString()
	logger := log.With().Str("search_id", searchID).Logger()
	event := logger.Info().Str("query", req.Query).Int("limit", req.Limit).Str("where", req.Where)
	if req.Level != nil {
		event = event.Str("query_level", *req.Level)
	}
	if req.StartTime != nil {
		event = event.Time("start_time", *req.StartTime)
	}
	if req.EndTime != nil {
		event = event.Time("end_time", *req.EndTime)
	}
	event.Msg("Searching logs")

	objects, err := s.objects.List(ctx)
	if err != nil {
		outcome := "store_unavailable"
		if ctx.Err() != nil {
			outcome = "cancelled"
		}
		metrics.ObserveSearch(outcome, time.Since(started), 0, 0)
		return nil, err
	}

	result, err := s.scan(ctx, objects, filter, req.Limit)
	if err != nil {
		metrics.ObserveSearch("cancelled", time.Since(started), result.ObjectsScanned, 0)
		metrics.ObserveDiagnostics(result.Diagnostics)
		logger.Warn().Err(err).Int("objects_scanned", result.ObjectsScanned).Msg("Search aborted")
		return nil, err
	}

	metrics.ObserveSearch("ok", time.Since(started), result.ObjectsScanned, len(result.Records))
	metrics.ObserveDiagnostics(result.Diagnostics)
	logger.Info().
		Int("objects_total", result.ObjectsTotal).
		Int("objects_scanned", result.ObjectsScanned).
		Int("results", len(result.Records)).
		Int("skipped", len(result.Diagnostics)).
		Dur("duration", time.Since(started)).
		Msg("Search finished")
	return result, nil
}

func (s *logQueryService) normalize(req dto.LogSearchRequest) (dto.LogSearchRequest, error) {
	if req.Limit < 0 {
		return req, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, req.Limit)
	}
	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}
	if s.maxLimit > 0 && req.Limit > s.maxLimit {
		log.Debug().Int("requested", req.Limit).Int("max", s.maxLimit).Msg("Clamping search limit")
		req.Limit = s.maxLimit
	}
	if req.StartTime != nil && req.EndTime != nil && req.EndTime.Before(*req.StartTime) {
		return req, fmt.Errorf("%w: end time cannot be before start time", ErrInvalidQuery)
	}
	return req, nil
}

// scan consumes objects strictly in enumeration order and stops as soon as limit records matched.
// Loads may run ahead of the filter, but results are only committed in order.
func (s *logQueryService) scan(ctx context.Context, objects []model.LogObject, filter *recordFilter, limit int) (*SearchResult, error) {
	result := &SearchResult{
		ObjectsTotal: len(objects),
		Records:      make([]model.LogRecord, 0, min(limit, 256)),
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	next := s.loadInOrder(scanCtx, objects)

	for i := range objects {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		loaded, err := next(i)
		if err != nil {
			return result, err
		}
		result.ObjectsScanned++
		result.Diagnostics = append(result.Diagnostics, loaded.Diagnostics...)

		for j, record := range loaded.Records {
			if j > 0 && j%cancelCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return result, err
				}
			}
			matched, err := filter.match(record)
			if err != nil {
				result.Diagnostics = append(result.Diagnostics,
					model.NewDiagnostic(loaded.Object.Name, loaded.RecordLines[j], model.ErrTimestampParse, err))
				continue
			}
			if !matched {
				continue
			}
			result.Records = append(result.Records, record)
			if len(result.Records) >= limit {
				log.Debug().Int("limit", limit).Str("object", loaded.Object.Name).Msg("Reached search limit")
				return result, nil
			}
		}
	}
	return result, nil
}

// loadInOrder returns a function yielding the load result of objects[i]. With prefetch > 1 up to
// prefetch objects are loaded concurrently ahead of the consumer; a slot is freed only when the
// consumer takes its result, so memory stays bounded by the window.
func (s *logQueryService) loadInOrder(ctx context.Context, objects []model.LogObject) func(i int) (repository.LoadResult, error) {
	if s.prefetch <= 1 {
		return func(i int) (repository.LoadResult, error) {
			loaded := s.loader.Load(ctx, objects[i])
			return loaded, ctx.Err()
		}
	}

	slots := make([]chan repository.LoadResult, len(objects))
	for i := range slots {
		slots[i] = make(chan repository.LoadResult, 1)
	}
	window := semaphore.NewWeighted(int64(s.prefetch))

	go func() {
		for i, obj := range objects {
			if err := window.Acquire(ctx, 1); err != nil {
				return
			}
			go func(slot chan<- repository.LoadResult, obj model.LogObject) {
				slot <- s.loader.Load(ctx, obj)
			}(slots[i], obj)
		}
	}()

	return func(i int) (repository.LoadResult, error) {
		select {
		case loaded := <-slots[i]:
			window.Release(1)
			return loaded, ctx.Err()
		case <-ctx.Done():
			return repository.LoadResult{}, ctx.Err()
		}
	}
}

func (s *logQueryService) Sample(ctx context.Context) (*dto.LogSampleResponse, error) {
	objects, err := s.objects.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, ErrNoLogObjects
	}

	latest := objects[0]
	log.Info().Str("object", latest.Name).Msg("Reading sample from latest log object")

	lines, err := s.loader.ReadLines(ctx, latest, s.sampleLines)
	if err != nil {
		log.Error().Err(err).Str("object", latest.Name).Msg("Failed to read sample lines")
		return nil, fmt.Errorf("%w: %w", ErrSampleUnavailable, err)
	}
	return &dto.LogSampleResponse{
		Filename:    latest.Name,
		SampleLines: lines,
	}, nil
}
