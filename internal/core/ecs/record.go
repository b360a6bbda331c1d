package ecs

import (
	"fmt"

	"github.com/survivethenight/server/internal/geom"
)

// Record is the flat serialized form of an entity: id, type, the list of
// attached extension kinds and every extension's own fields.
//
// Values are either native Go values (in-process) or the generic shapes
// produced by encoding/json (float64, map[string]any, []any); the accessors
// accept both.
type Record map[string]any

func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (r Record) Bool(key string) (bool, bool) {
	v, ok := r[key].(bool)
	return v, ok
}

func (r Record) Text(key string) (string, bool) {
	switch v := r[key].(type) {
	case string:
		return v, true
	case Type:
		return string(v), true
	}
	return "", false
}

func (r Record) Vector(key string) (geom.Vector2, bool) {
	switch v := r[key].(type) {
	case geom.Vector2:
		return v, true
	case map[string]any:
		x, okx := Record(v).Float("x")
		y, oky := Record(v).Float("y")
		return geom.Vector2{X: x, Y: y}, okx && oky
	}
	return geom.Vector2{}, false
}

func (r Record) Strings(key string) ([]string, bool) {
	switch v := r[key].(type) {
	case []string:
		return v, true
	case []Kind:
		out := make([]string, len(v))
		for i, k := range v {
			out[i] = string(k)
		}
		return out, true
	case []Type:
		out := make([]string, len(v))
		for i, k := range v {
			out[i] = string(k)
		}
		return out, true
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			s, ok := x.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// RequireFloat is Float for mandatory fields.
func (r Record) RequireFloat(key string) (float64, error) {
	v, ok := r.Float(key)
	if !ok {
		return 0, fmt.Errorf("record field %q: missing or not a number", key)
	}
	return v, nil
}

// RequireVector is Vector for mandatory fields.
func (r Record) RequireVector(key string) (geom.Vector2, error) {
	v, ok := r.Vector(key)
	if !ok {
		return geom.Vector2{}, fmt.Errorf("record field %q: missing or not a vector", key)
	}
	return v, nil
}
