package dto

import (
	"time"

	"logsearch-backend/internal/model"
)

// LogSearchRequest is the user-supplied filter. Nil pointers mean the clause is not applied;
// Limit 0 means the configured default.
type LogSearchRequest struct {
	Query     string
	Level     *string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Where     string
}

type LogSearchResponse struct {
	Results []model.LogRecord `json:"results"`
}

type LogSampleResponse struct {
	Filename    string   `json:"filename"`
	SampleLines []string `json:"sample_lines"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Bucket    string    `json:"bucket"`
	Objects   int       `json:"objects"`
	CheckedAt time.Time `json:"checkedAt"`
	Error     string    `json:"error,omitempty"`
}
