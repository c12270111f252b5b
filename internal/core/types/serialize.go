// Package types provides common value utilities shared by sources and the
// cache codec.
package types

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Serialize converts an arbitrary backend value into a JSON-safe one:
// nil, bool, int64, float64, string, []any or map[string]any.
//
// The function is total: any type it does not recognize falls through to its
// default textual representation. Fixed-point decimals are converted to
// float64 — the precision loss is accepted, not hidden. NaN and infinities
// map to nil because JSON has no representation for them.
func Serialize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		return val
	case string:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return serializeFloat(float64(val))
	case float64:
		return serializeFloat(val)
	case []byte:
		return decodeUTF8(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case decimal.Decimal:
		return val.InexactFloat64()
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return val.InexactFloat64()
	case decimal.NullDecimal:
		if !val.Valid {
			return nil
		}
		return val.Decimal.InexactFloat64()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Serialize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Serialize(item)
		}
		return out
	}

	// Driver wrapper types (pgtype and friends) expose their native scalar
	// through Valuer; extract and recurse.
	if valuer, ok := v.(driver.Valuer); ok {
		if extracted, err := valuer.Value(); err == nil {
			if _, again := extracted.(driver.Valuer); !again {
				return Serialize(extracted)
			}
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return Serialize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Serialize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprintf("%v", iter.Key().Interface())] = Serialize(iter.Value().Interface())
		}
		return out
	}

	return fmt.Sprintf("%v", v)
}

// SerializeRow serializes every value of a record, preserving keys.
func SerializeRow(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = Serialize(v)
	}
	return out
}

func serializeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// decodeUTF8 decodes bytes as UTF-8, replacing invalid sequences rather than
// failing.
func decodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.WriteRune(r)
		}
		b = b[size:]
	}
	return sb.String()
}

// ToFloat attempts a numeric view of v. It accepts every Go numeric type,
// decimals and numeric strings; anything else reports false.
func ToFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case bool:
		return 0, false
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		if math.IsNaN(val) {
			return 0, false
		}
		return val, true
	case decimal.Decimal:
		return val.InexactFloat64(), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return d.InexactFloat64(), true
	}
	return 0, false
}

// Stringify renders a cell for string-form comparisons. Floats that carry an
// integral value render without the trailing ".0"-style noise, so "157"
// matches a cell parsed as 157.0.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return decodeUTF8(val)
	case float64:
		return decimal.NewFromFloat(val).String()
	case float32:
		return decimal.NewFromFloat32(val).String()
	case decimal.Decimal:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", v)
}
