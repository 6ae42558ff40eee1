package model

import (
	"strings"
	"time"
)

const (
	CompressionNone = ""
	CompressionGzip = "gzip"
	CompressionZstd = "zstd"
)

var compressionSuffixes = map[string]string{
	".gz":  CompressionGzip,
	".zst": CompressionZstd,
}

// LogObject identifies one stored log file.
type LogObject struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Compression returns the codec implied by the object name suffix.
func (o LogObject) Compression() string {
	return CompressionForName(o.Name)
}

func (o LogObject) IsCompressed() bool {
	return o.Compression() != CompressionNone
}

func CompressionForName(name string) string {
	for suffix, codec := range compressionSuffixes {
		if strings.HasSuffix(name, suffix) {
			return codec
		}
	}
	return CompressionNone
}
