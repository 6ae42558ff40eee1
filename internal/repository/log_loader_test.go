package repository_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsearch-backend/internal/codec"
	"logsearch-backend/internal/model"
	"logsearch-backend/internal/objectstore"
	"logsearch-backend/internal/parser"
	"logsearch-backend/internal/repository"
)

const validLines = `{"timestamp":"2024-01-02T00:00:01Z","level":"info","event":"a","data":{}}
{"timestamp":"2024-01-02T00:00:02Z","level":"error","event":"b","data":{}}
not structured data
{"timestamp":"2024-01-02T00:00:03Z","level":"info","event":"c","data":{}}
`

func newLoader(store objectstore.Store) repository.LogLoader {
	return repository.NewLogLoader(store, "logs", parser.NewJSONLineParser())
}

func events(records []model.LogRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Event
	}
	return out
}

func TestLogLoader_Load(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore("logs")

	gz, err := codec.Compress([]byte(validLines), "b.log.gz")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "logs", "a.log", []byte(validLines)))
	require.NoError(t, store.Put(ctx, "logs", "b.log.gz", gz))
	require.NoError(t, store.Put(ctx, "logs", "c.log", []byte("x\r\n{\"event\":\"crlf\"}\r{\"event\":\"cr\"}")))

	loader := newLoader(store)

	tests := []struct {
		name           string
		object         string
		expectedEvents []string
		skippedLines   []int
	}{
		{name: "Plain", object: "a.log", expectedEvents: []string{"a", "b", "c"}, skippedLines: []int{3}},
		{name: "Gzip", object: "b.log.gz", expectedEvents: []string{"a", "b", "c"}, skippedLines: []int{3}},
		{name: "Mixed Terminators", object: "c.log", expectedEvents: []string{"crlf", "cr"}, skippedLines: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := loader.Load(ctx, model.LogObject{Name: tt.object})

			assert.False(t, result.Failed())
			assert.Equal(t, tt.expectedEvents, events(result.Records))
			require.Len(t, result.Diagnostics, len(tt.skippedLines))
			for i, line := range tt.skippedLines {
				assert.Equal(t, line, result.Diagnostics[i].Line)
				assert.Equal(t, model.ErrLineDecode, result.Diagnostics[i].Kind)
			}
		})
	}
}

func TestLogLoader_LoadDiscardsBrokenObjects(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore("logs")

	gz, err := codec.Compress([]byte(validLines), "ok.gz")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "logs", "corrupt.log.gz", gz[:len(gz)-10]))
	require.NoError(t, store.Put(ctx, "logs", "latin1.log", []byte("{\"event\":\"caf\xe9\"}\n")))
	require.NoError(t, store.Put(ctx, "logs", "offline.log", []byte(validLines)))
	store.FailGet("offline.log", errors.New("connection reset by peer"))

	loader := newLoader(store)

	tests := []struct {
		name   string
		object string
		kind   error
	}{
		{name: "Corrupt Gzip", object: "corrupt.log.gz", kind: model.ErrDecompression},
		{name: "Invalid UTF-8", object: "latin1.log", kind: model.ErrEncoding},
		{name: "Fetch Failure", object: "offline.log", kind: model.ErrFetch},
		{name: "Missing Object", object: "gone.log", kind: model.ErrFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := loader.Load(ctx, model.LogObject{Name: tt.object})

			assert.Empty(t, result.Records)
			assert.True(t, result.Failed())
			require.Len(t, result.Diagnostics, 1)
			assert.Equal(t, tt.kind, result.Diagnostics[0].Kind)
			assert.Zero(t, result.Diagnostics[0].Line)
		})
	}
}

func TestLogLoader_ReadLines(t *testing.T) {
	ctx := context.Background()
	store := objectstore.NewMemoryStore("logs")
	gz, err := codec.Compress([]byte("1\n2\n3\n4\n5\n6\n7\n"), "s.gz")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "logs", "s.gz", gz))
	require.NoError(t, store.Put(ctx, "logs", "short", []byte("only\n")))

	loader := newLoader(store)

	lines, err := loader.ReadLines(ctx, model.LogObject{Name: "s.gz"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, lines)

	lines, err = loader.ReadLines(ctx, model.LogObject{Name: "short"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, lines)

	_, err = loader.ReadLines(ctx, model.LogObject{Name: "missing"}, 5)
	assert.ErrorIs(t, err, model.ErrFetch)
}

// cancelOnGet cancels the search once the object body has been fetched.
type cancelOnGet struct {
	objectstore.Store
	cancel context.CancelFunc
}

func (s *cancelOnGet) Get(_ context.Context, bucket, name string) (io.ReadCloser, error) {
	body, err := s.Store.Get(context.Background(), bucket, name)
	s.cancel()
	return body, err
}

func TestLogLoader_LoadCancelledIsNotDiagnosed(t *testing.T) {
	store := objectstore.NewMemoryStore("logs")
	var sb strings.Builder
	for i := 0; i < 3000; i++ {
		fmt.Fprintf(&sb, "{\"event\":\"e%d\"}\n", i)
	}
	require.NoError(t, store.Put(context.Background(), "logs", "big.log", []byte(sb.String())))

	t.Run("Mid Object", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		loader := newLoader(&cancelOnGet{Store: store, cancel: cancel})

		result := loader.Load(ctx, model.LogObject{Name: "big.log"})
		assert.Empty(t, result.Diagnostics)
		assert.False(t, result.Failed())
		assert.Less(t, len(result.Records), 3000)
	})

	t.Run("Before Fetch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := newLoader(store).Load(ctx, model.LogObject{Name: "big.log"})
		assert.Empty(t, result.Diagnostics)
		assert.Empty(t, result.Records)
	})
}
