package model

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable is the only failure that aborts a search.
	ErrStoreUnavailable = errors.New("object store unavailable")

	ErrFetch          = errors.New("object fetch failed")
	ErrDecompression  = errors.New("object decompression failed")
	ErrEncoding       = errors.New("object is not valid UTF-8")
	ErrLineDecode     = errors.New("line decode failed")
	ErrTimestampParse = errors.New("timestamp parse failed")
)

var diagnosticKinds = []error{ErrFetch, ErrDecompression, ErrEncoding, ErrLineDecode, ErrTimestampParse}

// Diagnostic records one unit of work that contributed nothing to a search.
// Line is 1-based and zero for object-level failures.
type Diagnostic struct {
	Object string `json:"object"`
	Line   int    `json:"line,omitempty"`
	Kind   error  `json:"-"`
	Err    error  `json:"-"`
}

func NewDiagnostic(object string, line int, kind, err error) Diagnostic {
	return Diagnostic{Object: object, Line: line, Kind: kind, Err: err}
}

// KindName is a short label for the diagnostic kind, used in logs and metrics.
func (d Diagnostic) KindName() string {
	return KindName(d.Kind)
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", d.Object, d.Line, d.Err)
	}
	return fmt.Sprintf("%s: %v", d.Object, d.Err)
}

func KindName(err error) string {
	switch {
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrDecompression):
		return "decompression"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrLineDecode):
		return "line_decode"
	case errors.Is(err, ErrTimestampParse):
		return "timestamp_parse"
	default:
		return "unknown"
	}
}

// KindOf returns the sentinel that err wraps, or nil.
func KindOf(err error) error {
	for _, kind := range diagnosticKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return ErrStoreUnavailable
	}
	return nil
}
