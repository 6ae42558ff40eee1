package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fastjson"

	"logsearch-backend/internal/model"
)

// Fields in a shipper-framed line: time<TAB>tag<TAB>json.
const framedFieldCount = 3

type LogParser interface {
	// Parse decodes one line into a record. Failures wrap model.ErrLineDecode.
	Parse(line string) (model.LogRecord, error)
}

type jsonLineParser struct {
	pool fastjson.ParserPool
}

func NewJSONLineParser() LogParser {
	return &jsonLineParser{}
}

func (p *jsonLineParser) Parse(line string) (model.LogRecord, error) {
	payload, err := payloadField(line)
	if err != nil {
		log.Debug().Err(err).Str("line", line).Msg("Log line rejected")
		return model.LogRecord{}, err
	}

	fp := p.pool.Get()
	defer p.pool.Put(fp)

	v, err := fp.Parse(payload)
	if err != nil {
		log.Debug().Err(err).Str("line", line).Msg("Log line payload is not valid JSON")
		return model.LogRecord{}, fmt.Errorf("%w: %v", model.ErrLineDecode, err)
	}
	if v.Type() != fastjson.TypeObject {
		log.Debug().Str("type", v.Type().String()).Str("line", line).Msg("Log line payload is not a JSON object")
		return model.LogRecord{}, fmt.Errorf("%w: payload is a JSON %s", model.ErrLineDecode, v.Type())
	}

	record, err := model.NewLogRecord(convert(v))
	if err != nil {
		return model.LogRecord{}, fmt.Errorf("%w: %v", model.ErrLineDecode, err)
	}
	return record, nil
}

// Decode is the silent form of Parse: malformed lines yield ok == false.
func Decode(p LogParser, line string) (model.LogRecord, bool) {
	record, err := p.Parse(line)
	return record, err == nil
}

func payloadField(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%w: empty line", model.ErrLineDecode)
	}
	parts := strings.Split(line, "\t")
	switch len(parts) {
	case 1:
		return parts[0], nil
	case framedFieldCount:
		return parts[framedFieldCount-1], nil
	default:
		return "", fmt.Errorf("%w: expected %d tab-separated fields, got %d", model.ErrLineDecode, framedFieldCount, len(parts))
	}
}

// convert copies a fastjson value into a model.Value; fastjson values die with their parser.
func convert(v *fastjson.Value) model.Value {
	switch v.Type() {
	case fastjson.TypeObject:
		obj, _ := v.Object()
		fields := make([]model.Field, 0, obj.Len())
		obj.Visit(func(key []byte, child *fastjson.Value) {
			fields = append(fields, model.Field{Key: string(key), Value: convert(child)})
		})
		return model.Object(fields...)
	case fastjson.TypeArray:
		arr, _ := v.Array()
		items := make([]model.Value, len(arr))
		for i, child := range arr {
			items[i] = convert(child)
		}
		return model.Array(items...)
	case fastjson.TypeString:
		return model.String(string(v.GetStringBytes()))
	case fastjson.TypeNumber:
		return model.Number(v.String())
	case fastjson.TypeTrue:
		return model.Bool(true)
	case fastjson.TypeFalse:
		return model.Bool(false)
	default:
		return model.Null()
	}
}
