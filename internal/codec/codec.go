package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"logsearch-backend/internal/model"
)

// zstd decoders and encoders are safe for concurrent DecodeAll/EncodeAll calls.
var (
	zstdDecoder, _ = zstd.NewReader(nil)
	zstdEncoder, _ = zstd.NewWriter(nil)
)

// Decompress returns the decoded content of an object. The codec is picked from the name suffix;
// objects without a recognised suffix are returned unchanged. Any codec failure wraps model.ErrDecompression.
func Decompress(raw []byte, objectName string) ([]byte, error) {
	switch model.CompressionForName(objectName) {
	case model.CompressionGzip:
		return gunzip(raw)
	case model.CompressionZstd:
		out, err := zstdDecoder.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", model.ErrDecompression, err)
		}
		return out, nil
	default:
		return raw, nil
	}
}

// gunzip reads every gzip member; appended chunks are common for logs written by shippers.
func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %v", model.ErrDecompression, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %v", model.ErrDecompression, err)
	}
	return out, nil
}

// Compress encodes data with the codec implied by objectName.
func Compress(data []byte, objectName string) ([]byte, error) {
	switch model.CompressionForName(objectName) {
	case model.CompressionGzip:
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("gzip write: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("gzip close: %w", err)
		}
		return buf.Bytes(), nil
	case model.CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	default:
		return data, nil
	}
}
