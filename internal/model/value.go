package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is one key/value pair of an object Value. Objects keep the key order of the source document.
type Field struct {
	Key   string
	Value Value
}

// Value is an opaque JSON value. Numbers keep their literal text so large integers survive a round trip.
type Value struct {
	Kind   Kind
	Bool   bool
	Number string
	Str    string
	Items  []Value
	Fields []Field
}

func Null() Value                { return Value{Kind: KindNull} }
func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func String(s string) Value      { return Value{Kind: KindString, Str: s} }
func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }
func Object(fields ...Field) Value {
	return Value{Kind: KindObject, Fields: fields}
}

func Number(literal string) Value { return Value{Kind: KindNumber, Number: literal} }

func Int(n int64) Value { return Number(strconv.FormatInt(n, 10)) }

func Float(f float64) Value { return Number(strconv.FormatFloat(f, 'g', -1, 64)) }

// Get returns the value stored under key when v is an object.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	for _, f := range v.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// GetString returns the string stored under key, or "" if it is missing or not a string.
func (v Value) GetString(key string) string {
	child, ok := v.Get(key)
	if !ok || child.Kind != KindString {
		return ""
	}
	return child.Str
}

// Interface converts v into the plain Go types encoding/json produces
// (map[string]any, []any, string, bool, float64, nil).
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		if i, err := strconv.ParseInt(v.Number, 10, 64); err == nil {
			return i
		}
		f, err := strconv.ParseFloat(v.Number, 64)
		if err != nil {
			return v.Number
		}
		return f
	case KindString:
		return v.Str
	case KindArray:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Key] = f.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		if v.Number == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(v.Number)
		}
	case KindString:
		if err := writeString(buf, v.Str); err != nil {
			return err
		}
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, f.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// writeString quotes s without HTML escaping so text searches see '<', '>' and '&' as written.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
