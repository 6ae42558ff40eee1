package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"logsearch-backend/internal/model"
)

// ParseTimeFlexible accepts the timestamp forms records carry (ISO-8601 with or without an offset,
// naive values are UTC) as well as epoch milliseconds.
func ParseTimeFlexible(timeStr string) (time.Time, error) {
	timeStr = strings.TrimSpace(timeStr)
	if t, err := model.ParseTimestamp(timeStr); err == nil {
		return t.UTC(), nil
	}

	// Try parsing as epoch milliseconds
	if ms, err := strconv.ParseInt(timeStr, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %q", timeStr)
}
