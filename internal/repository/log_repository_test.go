package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsearch-backend/config"
	"logsearch-backend/internal/model"
	"logsearch-backend/internal/objectstore"
	"logsearch-backend/internal/repository"
)

func names(objects []model.LogObject) []string {
	out := make([]string, len(objects))
	for i, obj := range objects {
		out[i] = obj.Name
	}
	return out
}

func TestLogObjectRepository_ListNameDescending(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore("logs")
	for _, name := range []string{
		"2024-01-02T00-0001",
		"2024-01-10T00-0001.log.gz",
		"2023-12-31T23-0009",
		"2024-01-02T00-0002",
	} {
		require.NoError(t, store.Put(ctx, "logs", name, []byte("{}")))
	}

	repo := repository.NewLogObjectRepository(store, "logs", nil)
	objects, err := repo.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-01-10T00-0001.log.gz",
		"2024-01-02T00-0002",
		"2024-01-02T00-0001",
		"2023-12-31T23-0009",
	}, names(objects))

	again, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, names(objects), names(again))
}

func TestLogObjectRepository_ListLastModified(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore("logs")
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutAt(ctx, "logs", "b", nil, base))
	require.NoError(t, store.PutAt(ctx, "logs", "a", nil, base.Add(time.Hour)))
	require.NoError(t, store.PutAt(ctx, "logs", "c", nil, base))

	ordering, err := repository.OrderingByName("modified")
	require.NoError(t, err)

	objects, err := repository.NewLogObjectRepository(store, "logs", ordering).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "b"}, names(objects))
}

func TestLogObjectRepository_StoreUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing Bucket", func(t *testing.T) {
		repo := repository.NewLogObjectRepository(objectstore.NewMemoryStore(), "logs", nil)
		_, err := repo.List(ctx)
		assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	})

	t.Run("Unreachable Store", func(t *testing.T) {
		store := objectstore.NewMemoryStore("logs")
		store.FailList(errors.New("dial tcp: connection refused"))
		_, err := repository.NewLogObjectRepository(store, "logs", nil).List(ctx)
		assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	})
}

func TestOrderingByName(t *testing.T) {
	_, err := repository.OrderingByName("random")
	assert.Error(t, err)

	cfg := &config.Config{}
	cfg.Search.Ordering = "name"
	cfg.ObjectStore.Bucket = "logs"
	_, err = repository.NewConfiguredLogObjectRepository(cfg, objectstore.NewMemoryStore("logs"))
	assert.NoError(t, err)
}
