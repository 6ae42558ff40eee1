package model

import (
	"errors"
	"strings"
	"time"
)

var ErrNotAnObject = errors.New("log payload is not a JSON object")

// LogRecord is one decoded log event. Payload holds the complete decoded object and is what gets serialized;
// Timestamp, Level, Event and Data are pulled out of it for filtering.
type LogRecord struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Event     string `json:"event"`
	Data      Value  `json:"data" swaggertype:"object"`
	Payload   Value  `json:"-"`
}

// NewLogRecord builds a record from a decoded payload. Missing or non-string timestamp/level/event
// fields are left empty; the payload itself must be an object.
func NewLogRecord(payload Value) (LogRecord, error) {
	if payload.Kind != KindObject {
		return LogRecord{}, ErrNotAnObject
	}
	data, ok := payload.Get("data")
	if !ok {
		data = Null()
	}
	return LogRecord{
		Timestamp: payload.GetString("timestamp"),
		Level:     payload.GetString("level"),
		Event:     payload.GetString("event"),
		Data:      data,
		Payload:   payload,
	}, nil
}

func (r LogRecord) MarshalJSON() ([]byte, error) {
	if r.Payload.Kind == KindObject {
		return r.Payload.MarshalJSON()
	}
	return Object(
		Field{Key: "timestamp", Value: String(r.Timestamp)},
		Field{Key: "level", Value: String(r.Level)},
		Field{Key: "event", Value: String(r.Event)},
		Field{Key: "data", Value: r.Data},
	).MarshalJSON()
}

// Serialized returns the compact JSON form used by text search.
func (r LogRecord) Serialized() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}

// ParsedTime parses the record timestamp. A trailing "Z" is read as "+00:00" and
// timestamps without an offset are taken as UTC.
func (r LogRecord) ParsedTime() (time.Time, error) {
	return ParseTimestamp(r.Timestamp)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp as written by log producers.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
