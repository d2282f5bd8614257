// Package models contains shared data models used across the datahound codebase.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind discriminates the cell variants of a Row.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindNumber
	KindText
)

// Value is a single cell of a row: a number, a text string, or missing.
// Columns are not statically typed; numeric extraction filters to the
// Number variant and ignores the rest.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Number returns the numeric payload and whether the value is a finite number.
func (v Value) Number() (float64, bool) {
	if v.Kind != KindNumber || math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
		return 0, false
	}
	return v.Num, true
}

// NumberOrZero returns the numeric payload, defaulting to 0 for
// missing/non-numeric values.
func (v Value) NumberOrZero() float64 {
	n, ok := v.Number()
	if !ok {
		return 0
	}
	return n
}

// Text returns a string rendering of the value. Missing renders as "".
func (v Value) Text() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Str
	default:
		return ""
	}
}

// Num returns a numeric Value.
func Num(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// Text returns a text Value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Missing returns an absent Value.
func Missing() Value { return Value{Kind: KindMissing} }

// MarshalJSON renders Number as a JSON number, Text as a string and
// Missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.Num)
	case KindText:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts numbers, strings, booleans and null. Booleans are
// kept as text so they never leak into numeric aggregation.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Missing()
	case float64:
		*v = Num(t)
	case string:
		*v = Text(t)
	case bool:
		*v = Text(strconv.FormatBool(t))
	default:
		return fmt.Errorf("unsupported cell type %T", raw)
	}
	return nil
}

// Row is one record of a dataset: a mapping from column name to cell value.
// Rows are immutable inputs; the engine never mutates caller rows.
type Row map[string]Value

// Num looks up a cell and returns its numeric payload, if any.
func (r Row) Num(column string) (float64, bool) {
	return r[column].Number()
}

// NumOrZero looks up a cell, defaulting to 0 for missing/non-numeric values.
func (r Row) NumOrZero(column string) float64 {
	return r[column].NumberOrZero()
}
