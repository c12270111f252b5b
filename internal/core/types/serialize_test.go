package types

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSerialize(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "hello", "hello"},
		{"int", 42, int64(42)},
		{"int32", int32(-7), int64(-7)},
		{"uint16", uint16(9), int64(9)},
		{"float", 10.5, 10.5},
		{"nan becomes nil", math.NaN(), nil},
		{"positive infinity becomes nil", math.Inf(1), nil},
		{"negative infinity becomes nil", math.Inf(-1), nil},
		{"bytes decode as utf8", []byte("héllo"), "héllo"},
		{"invalid utf8 is replaced", []byte{0x68, 0xff, 0x69}, "h�i"},
		{"time renders rfc3339", ts, "2024-03-01T12:30:00Z"},
		{"decimal becomes float", decimal.NewFromFloat(10.5), 10.5},
		{"nested list", []any{1, "a", nil}, []any{int64(1), "a", nil}},
		{
			"nested map",
			map[string]any{"n": 3, "xs": []any{1.5}},
			map[string]any{"n": int64(3), "xs": []any{1.5}},
		},
		{"typed slice via reflection", []int{1, 2}, []any{int64(1), int64(2)}},
		{"unknown type falls back to text", struct{ A int }{A: 1}, "{1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Serialize(tt.in))
		})
	}
}

func TestSerialize_NilPointer(t *testing.T) {
	var p *int
	assert.Nil(t, Serialize(p))

	n := 5
	assert.Equal(t, int64(5), Serialize(&n))
}

func TestSerializeRow(t *testing.T) {
	row := map[string]any{"id": 1, "score": math.NaN(), "name": []byte("x")}
	assert.Equal(t, map[string]any{"id": int64(1), "score": nil, "name": "x"}, SerializeRow(row))
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"int", 3, 3, true},
		{"float", 2.5, 2.5, true},
		{"decimal", decimal.NewFromInt(7), 7, true},
		{"numeric string", " 4.25 ", 4.25, true},
		{"non-numeric string", "abc", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
		{"nan", math.NaN(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"integral float drops the fraction", 157.0, "157"},
		{"fractional float keeps it", 10.5, "10.5"},
		{"int", 42, "42"},
		{"decimal", decimal.NewFromFloat(3.14), "3.14"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}
