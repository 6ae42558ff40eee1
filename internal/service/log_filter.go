package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"logsearch-backend/internal/dto"
	"logsearch-backend/internal/model"
)

// recordFilter holds the compiled clauses of one search. Clauses run in a fixed order
// (text, level, time, where) and stop at the first that rejects.
type recordFilter struct {
	text  string
	level *string
	start *time.Time
	end   *time.Time
	where *vm.Program
}

func newRecordFilter(req dto.LogSearchRequest) (*recordFilter, error) {
	f := &recordFilter{
		text:  strings.ToLower(req.Query),
		level: req.Level,
		start: req.StartTime,
		end:   req.EndTime,
	}
	if strings.TrimSpace(req.Where) != "" {
		program, err := expr.Compile(req.Where, expr.Env(whereEnv(model.LogRecord{})), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("%w: where: %v", ErrInvalidQuery, err)
		}
		f.where = program
	}
	return f, nil
}

// match reports whether r passes every active clause. A non-nil error means the record was
// excluded because its timestamp could not be parsed.
func (f *recordFilter) match(r model.LogRecord) (bool, error) {
	if f.text != "" && !strings.Contains(strings.ToLower(r.Serialized()), f.text) {
		return false, nil
	}

	if f.level != nil && r.Level != *f.level {
		return false, nil
	}

	if f.start != nil || f.end != nil {
		ts, err := r.ParsedTime()
		if err != nil {
			return false, fmt.Errorf("%w: %q: %v", model.ErrTimestampParse, r.Timestamp, err)
		}
		if f.start != nil && ts.Before(*f.start) {
			return false, nil
		}
		if f.end != nil && ts.After(*f.end) {
			return false, nil
		}
	}

	if f.where != nil {
		out, err := expr.Run(f.where, whereEnv(r))
		if err != nil {
			return false, nil
		}
		if matched, ok := out.(bool); !ok || !matched {
			return false, nil
		}
	}
	return true, nil
}

func whereEnv(r model.LogRecord) map[string]any {
	data, ok := r.Data.Interface().(map[string]any)
	if !ok {
		data = map[string]any{}
	}
	return map[string]any{
		"timestamp": r.Timestamp,
		"level":     r.Level,
		"event":     r.Event,
		"data":      data,
	}
}
