package codec_test

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logsearch-backend/internal/codec"
	"logsearch-backend/internal/model"
)

const sample = "{\"level\":\"info\"}\n{\"level\":\"error\"}\n"

func TestDecompress_RoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		objectName string
	}{
		{name: "Gzip", objectName: "2024-01-02T00-0001.log.gz"},
		{name: "Zstd", objectName: "2024-01-02T00-0001.log.zst"},
		{name: "Plain", objectName: "2024-01-02T00-0001.log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := codec.Compress([]byte(sample), tt.objectName)
			require.NoError(t, err)

			out, err := codec.Decompress(compressed, tt.objectName)
			require.NoError(t, err)
			assert.Equal(t, sample, string(out))
		})
	}
}

func TestDecompress_PlainIsUnchanged(t *testing.T) {
	raw := []byte{0x1f, 0x8b, 0x00}
	out, err := codec.Decompress(raw, "no-suffix")
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestDecompress_ConcatenatedGzipMembers(t *testing.T) {
	var buf bytes.Buffer
	for _, part := range []string{"first\n", "second\n"} {
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(part))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	}

	out, err := codec.Decompress(buf.Bytes(), "chunked.gz")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(out))
}

func TestDecompress_Corrupt(t *testing.T) {
	good, err := codec.Compress([]byte(sample), "a.gz")
	require.NoError(t, err)

	tests := []struct {
		name       string
		raw        []byte
		objectName string
	}{
		{name: "Wrong magic", raw: []byte("definitely not gzip"), objectName: "a.gz"},
		{name: "Truncated stream", raw: good[:len(good)/2], objectName: "a.gz"},
		{name: "Empty gzip", raw: nil, objectName: "a.gz"},
		{name: "Bad zstd", raw: []byte("not zstd at all"), objectName: "a.zst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := codec.Decompress(tt.raw, tt.objectName)
			assert.ErrorIs(t, err, model.ErrDecompression)
			assert.Nil(t, out)
		})
	}
}
