package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"logsearch-backend/config"
	"logsearch-backend/internal/objectstore"
	"logsearch-backend/internal/repository"
	"logsearch-backend/internal/service"
)

func TestHealthService_Probe(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore(bucket)
	cfg := &config.Config{}
	cfg.ObjectStore.Bucket = bucket
	health := service.NewHealthService(cfg, repository.NewLogObjectRepository(store, bucket, nil))

	assert.Equal(t, service.StatusUnknown, health.Latest().Status)

	assert.NoError(t, store.Put(ctx, bucket, "a", []byte("x")))
	status := health.Probe(ctx)
	assert.Equal(t, service.StatusUp, status.Status)
	assert.Equal(t, 1, status.Objects)
	assert.Equal(t, bucket, status.Bucket)
	assert.False(t, status.CheckedAt.IsZero())
	assert.Equal(t, status, health.Latest())

	store.FailList(errors.New("connection refused"))
	status = health.Probe(ctx)
	assert.Equal(t, service.StatusDown, status.Status)
	assert.Contains(t, status.Error, "connection refused")
	assert.Equal(t, service.StatusDown, health.Latest().Status)
}
