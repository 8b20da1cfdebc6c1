package pantry

import (
	"encoding/json"
	"fmt"
	"math"
)

// Elements returns doc[key] when doc is an object holding an array there.
func Elements(doc any, key string) ([]any, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, NewInvalidStructure(key)
	}
	items, ok := obj[key].([]any)
	if !ok {
		return nil, NewInvalidStructure(key)
	}
	return items, nil
}

// Record reads typed fields from one element of a decoded collection. Every
// accessor fails with an InvalidField error naming the dotted field path and
// the element index.
type Record struct {
	key    string
	index  int
	prefix string
	values map[string]any
}

// NewRecord wraps element index of collection key. label names the element in
// the error when it is not a JSON object.
func NewRecord(key string, index int, v any, label string) (Record, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Record{}, NewInvalidField(key, label, index, "must be an object")
	}
	return Record{key: key, index: index, values: m}, nil
}

func (r Record) fail(field, reason string) error {
	return NewInvalidField(r.key, r.prefix+field, r.index, reason)
}

// Text returns a non-empty string field.
func (r Record) Text(field string) (string, error) {
	v, ok := r.values[field]
	if !ok {
		return "", r.fail(field, "missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", r.fail(field, "must be a string")
	}
	if s == "" {
		return "", r.fail(field, "must not be empty")
	}
	return s, nil
}

// Number returns a numeric field within [min, max].
func (r Record) Number(field string, min, max float64) (float64, error) {
	v, ok := r.values[field]
	if !ok {
		return 0, r.fail(field, "missing")
	}
	n, ok := toFloat(v)
	if !ok {
		return 0, r.fail(field, "must be a number")
	}
	if n < min || n > max {
		return 0, r.fail(field, fmt.Sprintf("%v is out of range [%v, %v]", n, min, max))
	}
	return n, nil
}

// Whole returns a non-negative whole-number field.
func (r Record) Whole(field string) (int, error) {
	n, err := r.Number(field, 0, math.MaxInt32)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, r.fail(field, "must be a whole number")
	}
	return int(n), nil
}

// Object returns a nested object field; fields read from it are reported as
// "field.child".
func (r Record) Object(field string) (Record, error) {
	v, ok := r.values[field]
	if !ok {
		return Record{}, r.fail(field, "missing")
	}
	m, ok := v.(map[string]any)
	if !ok {
		return Record{}, r.fail(field, "must be an object")
	}
	return Record{key: r.key, index: r.index, prefix: r.prefix + field + ".", values: m}, nil
}

// TextList returns an array field whose items are all non-empty strings. An
// empty array is valid.
func (r Record) TextList(field string) ([]string, error) {
	v, ok := r.values[field]
	if !ok {
		return nil, r.fail(field, "missing")
	}
	items, ok := v.([]any)
	if !ok {
		return nil, r.fail(field, "must be an array")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, r.fail(field, fmt.Sprintf("item %d must be a non-empty string", i))
		}
		out = append(out, s)
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
