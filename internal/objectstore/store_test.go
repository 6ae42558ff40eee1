package objectstore

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsearch-backend/config"
)

func TestStores_PutListGet(t *testing.T) {
	dirStore, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemoryStore("logs"),
		"dir":    dirStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Put(ctx, "logs", "2024/01/02/a.log.gz", []byte("first")))
			require.NoError(t, store.Put(ctx, "logs", "2024/01/03/b.log", []byte("second")))

			objects, err := store.List(ctx, "logs")
			require.NoError(t, err)

			var names []string
			for _, obj := range objects {
				names = append(names, obj.Name)
			}
			sort.Strings(names)
			assert.Contains(t, names, "2024/01/02/a.log.gz")
			assert.Contains(t, names, "2024/01/03/b.log")

			rc, err := store.Get(ctx, "logs", "2024/01/03/b.log")
			require.NoError(t, err)
			defer rc.Close()
			body, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "second", string(body))

			_, err = store.Get(ctx, "logs", "missing")
			assert.ErrorIs(t, err, ErrObjectNotFound)

			_, err = store.List(ctx, "no-such-bucket")
			assert.ErrorIs(t, err, ErrBucketNotFound)
		})
	}
}

func TestMemoryStore_Failures(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("logs")
	require.NoError(t, store.Put(ctx, "logs", "a", []byte("x")))

	boom := errors.New("connection refused")
	store.FailGet("a", boom)
	_, err := store.Get(ctx, "logs", "a")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, store.Gets("a"))

	store.FailList(boom)
	_, err = store.List(ctx, "logs")
	assert.ErrorIs(t, err, boom)

	store.FailList(nil)
	objects, err := store.List(ctx, "logs")
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}

func TestMemoryStore_PutRequiresBucket(t *testing.T) {
	err := NewMemoryStore().Put(context.Background(), "logs", "a", nil)
	assert.ErrorIs(t, err, ErrBucketNotFound)
}

func TestDirStore_RejectsEscapingNames(t *testing.T) {
	root := t.TempDir()
	store, err := NewDirStore(root)
	require.NoError(t, err)

	p, err := store.objectPath("logs", "../../etc/passwd")
	require.NoError(t, err)
	assert.Contains(t, p, root)

	_, err = store.bucketDir("../outside")
	assert.ErrorIs(t, err, ErrBucketNotFound)
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000", endpointURL("minio:9000", false))
	assert.Equal(t, "https://s3.amazonaws.com", endpointURL("s3.amazonaws.com", true))
	assert.Equal(t, "http://localhost:9000", endpointURL("http://localhost:9000", true))
}

func TestNewStore_Drivers(t *testing.T) {
	cfg := &config.Config{}
	cfg.ObjectStore.Driver = DriverMemory
	cfg.ObjectStore.Bucket = "logs"
	store, err := NewStore(cfg)
	require.NoError(t, err)
	_, err = store.List(context.Background(), "logs")
	assert.NoError(t, err)

	cfg.ObjectStore.Driver = "ftp"
	_, err = NewStore(cfg)
	assert.Error(t, err)
}
