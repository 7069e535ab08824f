// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lsml reads and writes LSML ("Listed Sections Markup
// Language") documents: a flat list of named sections, each either a
// table (unordered key/value map) or an array (ordered list of
// values, optionally grouped into rows).
//
// A Data holds every allocation for one parsed or programmatically
// built document inside a single fixed-capacity Arena. Strings are
// interned: two byte-equal strings intern to the same *RegString, so
// callers may compare keys and values by pointer. Nothing returned by
// Data is ever relocated or freed piecewise; the only way to release
// memory is to discard the Arena's backing buffer entirely.
package lsml
