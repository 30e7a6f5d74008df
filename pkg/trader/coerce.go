package trader

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// priceKeys are tried in order when a price payload is an object.
var priceKeys = []string{"markPx", "markPrice", "mark_price", "price", "px"}

// CoercePrice decodes a price from any JSON-shaped payload:
//
//	number | numeric string          -> the number
//	object                           -> first present key of priceKeys
//	array                            -> first element that decodes
//
// ok is false when nothing in the payload decodes to a finite number.
func CoercePrice(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case map[string]any:
		for _, key := range priceKeys {
			if inner, present := v[key]; present {
				// A present key decides the object, like a dict lookup would.
				return scalarPrice(inner)
			}
		}
		return 0, false
	case []any:
		for _, item := range v {
			if px, ok := CoercePrice(item); ok {
				return px, true
			}
		}
		return 0, false
	case []map[string]any:
		for _, item := range v {
			if px, ok := CoercePrice(item); ok {
				return px, true
			}
		}
		return 0, false
	case []string:
		for _, item := range v {
			if px, ok := CoercePrice(item); ok {
				return px, true
			}
		}
		return 0, false
	default:
		return scalarPrice(v)
	}
}

func scalarPrice(raw any) (float64, bool) {
	f, err := toFloat(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toFloat converts numbers and numeric strings.
func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	}
	return 0, fmt.Errorf("unsupported type %T", raw)
}

// ToFloat coerces caller input for a numeric field.
func ToFloat(raw any, field string) (float64, error) {
	f, err := toFloat(raw)
	if err != nil {
		return 0, validationError(fmt.Sprintf("%s must be numeric, got %s", field, repr(raw)))
	}
	return f, nil
}

// ToInt coerces caller input for an integer field. Floats are accepted only
// when they carry no fractional part.
func ToInt(raw any, field string) (int64, error) {
	bad := validationError(fmt.Sprintf("%s must be an integer, got %s", field, repr(raw)))
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > 1<<53 {
			return 0, bad
		}
		return int64(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		return 0, bad
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, bad
		}
		return n, nil
	}
	return 0, bad
}

func repr(raw any) string {
	if s, ok := raw.(string); ok {
		return strconv.Quote(s)
	}
	if raw == nil {
		return "null"
	}
	return fmt.Sprintf("%v", raw)
}
