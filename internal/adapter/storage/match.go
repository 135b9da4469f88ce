package storage

import (
	"encoding/json"
	"reflect"

	"github.com/rl1809/library/internal/core/domain"
)

// fieldEquals compares a stored field against a filter value. Numbers are
// compared by value because decoded JSON turns every number into float64.
func fieldEquals(doc domain.Document, field string, want any) bool {
	got, ok := doc[field]
	if !ok {
		return false
	}
	if a, ok := toFloat(got); ok {
		if b, ok := toFloat(want); ok {
			return a == b
		}
		return false
	}
	return reflect.DeepEqual(got, want)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
