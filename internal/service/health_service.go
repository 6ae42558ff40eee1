package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"logsearch-backend/config"
	"logsearch-backend/internal/dto"
	"logsearch-backend/internal/metrics"
	"logsearch-backend/internal/repository"
)

const (
	StatusUp      = "up"
	StatusDown    = "down"
	StatusUnknown = "unknown"
)

// HealthService probes the object store and remembers the latest outcome.
type HealthService interface {
	Probe(ctx context.Context) dto.HealthResponse
	Latest() dto.HealthResponse
}

type healthService struct {
	objects repository.LogObjectRepository
	bucket  string
	timeout time.Duration

	mu   sync.RWMutex
	last dto.HealthResponse
}

func NewHealthService(cfg *config.Config, objects repository.LogObjectRepository) HealthService {
	timeout := cfg.ObjectStore.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &healthService{
		objects: objects,
		bucket:  cfg.ObjectStore.Bucket,
		timeout: timeout,
		last:    dto.HealthResponse{Status: StatusUnknown, Bucket: cfg.ObjectStore.Bucket},
	}
}

func (s *healthService) Probe(ctx context.Context) dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status := dto.HealthResponse{Bucket: s.bucket, CheckedAt: time.Now().UTC()}
	objects, err := s.objects.List(ctx)
	if err != nil {
		status.Status = StatusDown
		status.Error = err.Error()
		log.Warn().Err(err).Str("bucket", s.bucket).Msg("Object store probe failed")
	} else {
		status.Status = StatusUp
		status.Objects = len(objects)
		log.Debug().Str("bucket", s.bucket).Int("objects", len(objects)).Msg("Object store probe succeeded")
	}
	metrics.ObserveProbe(err == nil, status.Objects)

	s.mu.Lock()
	s.last = status
	s.mu.Unlock()
	return status
}

func (s *healthService) Latest() dto.HealthResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
