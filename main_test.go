package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsearch-backend/internal/model"
	"logsearch-backend/internal/objectstore"
	"logsearch-backend/internal/parser"
	"logsearch-backend/internal/repository"
)

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "orders"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders", "2024-01-02T00-0001"),
		[]byte(`{"timestamp":"2024-01-02T00:00:00Z","level":"error","event":"order_failed","data":{}}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-01T00-0001.log.zst"), []byte("already compressed"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o644))

	ctx := context.Background()
	store := objectstore.NewMemoryStore("logs")
	uploaded, err := seed(ctx, store, "logs", dir, ".gz")
	require.NoError(t, err)
	assert.Equal(t, 2, uploaded)

	objects, err := store.List(ctx, "logs")
	require.NoError(t, err)
	names := make([]string, 0, len(objects))
	for _, o := range objects {
		names = append(names, o.Name)
	}
	assert.ElementsMatch(t, []string{"orders/2024-01-02T00-0001.gz", "2024-01-01T00-0001.log.zst"}, names)

	loader := repository.NewLogLoader(store, "logs", parser.NewJSONLineParser())
	loaded := loader.Load(ctx, model.LogObject{Name: "orders/2024-01-02T00-0001.gz"})
	require.Len(t, loaded.Records, 1)
	assert.Equal(t, "order_failed", loaded.Records[0].Event)
}

type recordingProducer struct {
	records []model.LogRecord
}

func (p *recordingProducer) Produce(_ context.Context, records []model.LogRecord) error {
	p.records = append(p.records, records...)
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func TestPublishRecords(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte(
		`{"level":"info","event":"a"}`+"\nnot json\n"+"2024-01-02T00:00:00Z\tapp\t{\"level\":\"warn\",\"event\":\"b\"}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.gz"), []byte("not gzip"), 0o644))

	producer := &recordingProducer{}
	published, err := publishRecords(context.Background(), producer, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, published)
	require.Len(t, producer.records, 2)
	assert.Equal(t, "a", producer.records[0].Event)
	assert.Equal(t, "b", producer.records[1].Event)
}
