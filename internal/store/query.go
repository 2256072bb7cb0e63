package store

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Where is an exact-match predicate over a record's JSON form. Keys may use
// dotted paths to reach nested fields, e.g. "address.city".
type Where map[string]any

// Direction selects sort order for FindAll.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// OrderBy sorts by a possibly-nested field. Ties keep filtered order.
type OrderBy struct {
	Field     string
	Direction Direction
}

// Options filters, sorts and slices a FindAll listing. A zero Limit means
// no slicing is applied.
type Options struct {
	Where   Where
	OrderBy *OrderBy
	Limit   int
	Offset  int
}

// toDoc converts a record to its generic JSON form for predicate
// evaluation and partial updates.
func toDoc(record any) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDoc[T Record](doc map[string]any) (T, error) {
	var record T
	raw, err := json.Marshal(doc)
	if err != nil {
		return record, err
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return record, err
	}
	return record, nil
}

// lookup resolves a dotted path against a JSON document.
func lookup(doc map[string]any, path string) (any, bool) {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func matches(doc map[string]any, where Where) bool {
	for path, want := range where {
		got, ok := lookup(doc, path)
		if !ok || !equalValues(got, want) {
			return false
		}
	}
	return true
}

// normalize reduces numeric values to float64 and named string/bool types
// to their underlying kind so criteria supplied as domain types (e.g. a
// status constant) match the decoded JSON values.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func equalValues(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// compareValues orders two JSON values: nil first, then numbers, strings
// and booleans by their natural order. Mixed types compare equal, leaving
// the pre-sort order in place.
func compareValues(a, b any) int {
	a, b = normalize(a), normalize(b)
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}
