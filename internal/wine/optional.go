// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package wine

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Optional holds a value together with an explicit presence flag.
// The zero value is absent.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// OrElse returns the value if present, otherwise fallback.
func (o Optional[T]) OrElse(fallback T) T {
	if o.Valid {
		return o.Value
	}
	return fallback
}

// MarshalJSON encodes an absent value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes a value with lenient coercion.
//
// Numeric targets accept JSON numbers and numeric strings; anything else
// (null, "", "None", "nan", free text) decodes as absent rather than failing.
// String targets accept strings and bare scalars; blank and "None" are absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var zero T
	o.Value = zero
	o.Valid = false

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch p := any(&o.Value).(type) {
	case *float64:
		v, ok := coerceFloat(data)
		if !ok {
			return nil
		}
		*p = v
		o.Valid = true
	case *string:
		s, ok := coerceString(data)
		if !ok {
			return nil
		}
		*p = s
		o.Valid = true
	default:
		if err := json.Unmarshal(data, &o.Value); err != nil {
			return err
		}
		o.Valid = true
	}
	return nil
}

// ParseNumber coerces a raw string to a finite float.
// Non-numeric input reports false.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || isNoneLiteral(raw) {
		return 0, false
	}
	// decimal commas show up in scraped technical sheets ("13,5")
	raw = strings.Replace(raw, ",", ".", 1)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func coerceFloat(data []byte) (float64, bool) {
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		return ParseNumber(s)
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func coerceString(data []byte) (string, bool) {
	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
	} else {
		s = string(data)
	}
	s = strings.TrimSpace(s)
	if s == "" || isNoneLiteral(s) {
		return "", false
	}
	return s, true
}

func isNoneLiteral(s string) bool {
	switch strings.ToLower(s) {
	case "none", "null", "nan", "n/a":
		return true
	}
	return false
}
