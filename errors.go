// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

// Err is an LSML error kind. The zero value means success.
type Err int

const (
	OK Err = iota

	// System errors.
	ErrOutOfMemory
	ErrParseAborted

	// Retrieval errors.
	ErrNotFound
	ErrInvalidData
	ErrInvalidKey
	ErrInvalidSection
	ErrSectionType

	// Value errors.
	ErrValueNull
	ErrValueFormat
	ErrValueRange

	// Parse errors.
	ErrMissingEndQuote
	ErrTextInvalidEscape
	ErrTextOutsideSection
	ErrTextAfterEndQuote
	ErrTextAfterSectionHeader
	ErrSectionHeaderUnclosed
	ErrSectionNameEmpty
	ErrSectionNameReused
	ErrTableKeyReused
	ErrTableEntryMissingEquals
)

var errText = [...]string{
	OK:                         "ok",
	ErrOutOfMemory:             "out of memory",
	ErrParseAborted:            "parse aborted",
	ErrNotFound:                "not found",
	ErrInvalidData:             "invalid data",
	ErrInvalidKey:              "invalid key",
	ErrInvalidSection:          "invalid section",
	ErrSectionType:             "wrong section type",
	ErrValueNull:               "value is null",
	ErrValueFormat:             "value has invalid format",
	ErrValueRange:              "value out of range",
	ErrMissingEndQuote:         "missing end quote",
	ErrTextInvalidEscape:       "invalid escape sequence",
	ErrTextOutsideSection:      "text outside any section",
	ErrTextAfterEndQuote:       "text after end quote",
	ErrTextAfterSectionHeader:  "text after section header",
	ErrSectionHeaderUnclosed:   "section header unclosed",
	ErrSectionNameEmpty:        "section name is empty",
	ErrSectionNameReused:       "section name reused",
	ErrTableKeyReused:          "table key reused",
	ErrTableEntryMissingEquals: "table entry missing '='",
}

// Error satisfies the standard error interface. OK.Error() still
// returns a description, but the functions of this package never
// return OK as an error: they report success with a nil error, so
// callers test for success with `err == nil`.
func (e Err) Error() string {
	if int(e) < 0 || int(e) >= len(errText) {
		return "unknown lsml error"
	}
	return errText[e]
}
