// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ToBool interprets s as exactly one of true/True/TRUE/false/False/FALSE.
func ToBool(s string) (bool, error) {
	switch s {
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	}
	return false, ErrValueFormat
}

// ToInt64 parses s as a signed integer of bitSize bits (8/16/32/64),
// with base autodetection (0x/0o/0b, default 10; a bare leading 0 is
// not an octal prefix). If base is 10 and
// the first non-digit byte is '.', 'e', or 'E', s is retried as a
// float and truncated; a nonzero fractional part reports
// ErrValueRange. Overflow clamps to the bitSize range and reports
// ErrValueRange.
func ToInt64(s string, bitSize int) (int64, error) {
	rest := strings.TrimSpace(s)
	unsigned := strings.TrimPrefix(rest, "-")
	prefixed := strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X") ||
		strings.HasPrefix(unsigned, "0o") || strings.HasPrefix(unsigned, "0O") ||
		strings.HasPrefix(unsigned, "0b") || strings.HasPrefix(unsigned, "0B")
	base := 10
	if prefixed {
		base = 0
	}
	v, err := strconv.ParseInt(rest, base, bitSize)
	if err == nil {
		return v, nil
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		return v, ErrValueRange
	}
	tail := strings.TrimLeft(strings.TrimLeft(rest, "+-"), "0123456789")
	if !prefixed && tail != "" && strings.IndexByte(".eE", tail[0]) >= 0 {
		f, ferr := strconv.ParseFloat(rest, 64)
		if ferr == nil {
			truncated := math.Trunc(f)
			out := clampFloatToInt(truncated, bitSize)
			if truncated != f {
				return out, ErrValueRange
			}
			if float64(out) != truncated {
				return out, ErrValueRange
			}
			return out, nil
		}
	}
	return 0, ErrValueFormat
}

func clampFloatToInt(f float64, bitSize int) int64 {
	min, max := intRange(bitSize)
	if f < float64(min) {
		return min
	}
	if f > float64(max) {
		return max
	}
	return int64(f)
}

func intRange(bitSize int) (min, max int64) {
	switch bitSize {
	case 8:
		return math.MinInt8, math.MaxInt8
	case 16:
		return math.MinInt16, math.MaxInt16
	case 32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func uintRange(bitSize int) (max uint64) {
	switch bitSize {
	case 8:
		return math.MaxUint8
	case 16:
		return math.MaxUint16
	case 32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// ToUint64 is ToInt64's unsigned counterpart, with the same base
// detection. An unprefixed string that is not an unsigned integer is
// retried as a float and truncated; a negative value clamps to 0 and a
// value above the bitSize range clamps to its maximum, both reporting
// ErrValueRange.
func ToUint64(s string, bitSize int) (uint64, error) {
	rest := strings.TrimSpace(s)
	isPrefixed := strings.HasPrefix(rest, "0x") || strings.HasPrefix(rest, "0X") ||
		strings.HasPrefix(rest, "0o") || strings.HasPrefix(rest, "0O") ||
		strings.HasPrefix(rest, "0b") || strings.HasPrefix(rest, "0B")
	base := 10
	if isPrefixed {
		base = 0
	}
	v, err := strconv.ParseUint(rest, base, bitSize)
	if err == nil {
		return v, nil
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		return v, ErrValueRange
	}
	if !isPrefixed {
		f, ferr := strconv.ParseFloat(rest, 64)
		if ferr == nil {
			truncated := math.Trunc(f)
			if truncated < 0 {
				return 0, ErrValueRange
			}
			max := uintRange(bitSize)
			if truncated > float64(max) {
				return max, ErrValueRange
			}
			out := uint64(truncated)
			if truncated != f {
				return out, ErrValueRange
			}
			return out, nil
		}
	}
	return 0, ErrValueFormat
}

// ToFloat64 parses s as a base-10 float of bitSize bits (32 or 64).
func ToFloat64(s string, bitSize int) (float64, error) {
	rest := strings.TrimSpace(s)
	v, err := strconv.ParseFloat(rest, bitSize)
	if err == nil {
		return v, nil
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		return v, ErrValueRange
	}
	return 0, ErrValueFormat
}

// RefKind is the section kind carried by a reference value's prefix.
type RefKind int

const (
	RefAny RefKind = iota
	RefTable
	RefArray
)

// ToRef interprets s as a section-reference value: a leading "{}" or
// "[]" followed by a literal (unescaped, unparsed) section name.
func ToRef(s string) (name string, kind RefKind, err error) {
	rest := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(rest, "{}"):
		return rest[2:], RefTable, nil
	case strings.HasPrefix(rest, "[]"):
		return rest[2:], RefArray, nil
	}
	return "", RefAny, ErrValueFormat
}
