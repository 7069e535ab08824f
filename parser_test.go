// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string, opts ParseOptions) *Data {
	t.Helper()
	d := newTestData(t)
	err := Parse(d, bufio.NewReader(strings.NewReader(src)), opts)
	require.NoError(t, err)
	return d
}

func TestParseTableSection(t *testing.T) {
	d := parseString(t, `{server}
host = localhost
port = 8080
`, ParseAll)

	sec, ok := d.GetSection("server")
	require.True(t, ok)
	require.Equal(t, SectionTable, sec.Kind())

	v, ok := sec.GetTableEntry("host")
	require.True(t, ok)
	require.Equal(t, "localhost", v.String())

	v, ok = sec.GetTableEntry("port")
	require.True(t, ok)
	require.Equal(t, "8080", v.String())
}

func TestParseArraySection(t *testing.T) {
	d := parseString(t, `[grid]
1, 2, 3
4, 5, 6
`, ParseAll)

	sec, ok := d.GetSection("grid")
	require.True(t, ok)
	require.Equal(t, SectionArray, sec.Kind())
	require.Equal(t, 6, sec.ElemCount())

	rows, cols, err := sec.Array2DSize(false)
	require.NoError(t, err)
	require.Equal(t, 2, rows)
	require.Equal(t, 3, cols)

	v, err := sec.ArrayGet2D(1, 2)
	require.NoError(t, err)
	require.Equal(t, "6", v.String())
}

func TestParseQuotedStrings(t *testing.T) {
	d := parseString(t, "{opts}\nname = \"hello, world\"\n", ParseAll)
	sec, ok := d.GetSection("opts")
	require.True(t, ok)
	v, ok := sec.GetTableEntry("name")
	require.True(t, ok)
	require.Equal(t, "hello, world", v.String())
}

func TestParseEscapes(t *testing.T) {
	d := parseString(t, `{opts}
tab = "a\tb"
nl = "a\nb"
hex = "\x41"
uni = "\u00e9"
oct = "\101"
`, ParseAll)
	sec, _ := d.GetSection("opts")

	v, _ := sec.GetTableEntry("tab")
	require.Equal(t, "a\tb", v.String())

	v, _ = sec.GetTableEntry("nl")
	require.Equal(t, "a\nb", v.String())

	v, _ = sec.GetTableEntry("hex")
	require.Equal(t, "A", v.String())

	v, _ = sec.GetTableEntry("uni")
	require.Equal(t, "é", v.String())

	v, _ = sec.GetTableEntry("oct")
	require.Equal(t, "A", v.String())
}

func TestParseUnicodeEscapePartialDigits(t *testing.T) {
	var errs []Err
	opts := ParseOptions{ErrLog: func(e Err, line int) bool {
		errs = append(errs, e)
		return false
	}}
	d := parseString(t, `{opts}
short = "\u12"
`, opts)
	sec, _ := d.GetSection("opts")
	v, ok := sec.GetTableEntry("short")
	require.True(t, ok)
	require.Equal(t, `\u12`, v.String())
	require.Empty(t, errs)
}

func TestParseUnicodeEscapeSurrogate(t *testing.T) {
	d := parseString(t, `{opts}
surrogate = "\ud800"
`, ParseAll)
	sec, _ := d.GetSection("opts")
	v, ok := sec.GetTableEntry("surrogate")
	require.True(t, ok)
	require.Equal(t, []byte{0xED, 0xA0, 0x80}, []byte(v.String()))
}

func TestParseUnicodeEscapeOutOfRange(t *testing.T) {
	var errs []Err
	opts := ParseOptions{ErrLog: func(e Err, line int) bool {
		errs = append(errs, e)
		return false
	}}
	d := parseString(t, `{opts}
big = "\U00110000"
`, opts)
	sec, _ := d.GetSection("opts")
	v, ok := sec.GetTableEntry("big")
	require.True(t, ok)
	require.Equal(t, `\U00110000`, v.String())
	require.Contains(t, errs, ErrTextInvalidEscape)
}

func TestParseRawStringSharesEscapeGrammar(t *testing.T) {
	d := parseString(t, "{opts}\nname = `a\\tb`\n", ParseAll)
	sec, _ := d.GetSection("opts")
	v, ok := sec.GetTableEntry("name")
	require.True(t, ok)
	require.Equal(t, "a\tb", v.String())
}

func TestParseComments(t *testing.T) {
	d := parseString(t, `# a top-level comment
{server} # trailing comment
host = localhost # another comment
`, ParseAll)
	sec, ok := d.GetSection("server")
	require.True(t, ok)
	v, ok := sec.GetTableEntry("host")
	require.True(t, ok)
	require.Equal(t, "localhost", v.String())
}

func TestParseSectionReferencePrefix(t *testing.T) {
	d := parseString(t, "{server}\nbackend = {} other\n", ParseAll)
	sec, _ := d.GetSection("server")
	v, ok := sec.GetTableEntry("backend")
	require.True(t, ok)
	name, kind, err := ToRef(v.String())
	require.NoError(t, err)
	require.Equal(t, "other", strings.TrimSpace(name))
	require.Equal(t, RefTable, kind)
}

func TestParseMissingEquals(t *testing.T) {
	var errs []Err
	opts := ParseOptions{ErrLog: func(e Err, line int) bool {
		errs = append(errs, e)
		return false
	}}
	parseString(t, "{server}\nhost localhost\nport = 80\n", opts)
	require.Contains(t, errs, ErrTableEntryMissingEquals)
}

func TestParseDuplicateTableKey(t *testing.T) {
	var errs []Err
	opts := ParseOptions{ErrLog: func(e Err, line int) bool {
		errs = append(errs, e)
		return false
	}}
	d := parseString(t, "{server}\nhost = a\nhost = b\n", opts)
	require.Contains(t, errs, ErrTableKeyReused)
	sec, _ := d.GetSection("server")
	v, _ := sec.GetTableEntry("host")
	require.Equal(t, "a", v.String())
}

func TestParseTextOutsideSection(t *testing.T) {
	var errs []Err
	opts := ParseOptions{ErrLog: func(e Err, line int) bool {
		errs = append(errs, e)
		return false
	}}
	parseString(t, "stray text\n{server}\nhost = a\n", opts)
	require.Contains(t, errs, ErrTextOutsideSection)
}

func TestParseAbort(t *testing.T) {
	d := newTestData(t)
	opts := ParseOptions{ErrLog: func(e Err, line int) bool { return true }}
	err := Parse(d, bufio.NewReader(strings.NewReader("stray\n{server}\nhost = a\n")), opts)
	require.ErrorIs(t, err, ErrParseAborted)
	_, ok := d.GetSection("server")
	require.False(t, ok)
}

func TestParseSectionAccept(t *testing.T) {
	d := newTestData(t)
	opts := ParseOptions{SectionAccept: func(name string, kind SectionKind) bool {
		return name == "keep"
	}}
	err := Parse(d, bufio.NewReader(strings.NewReader("{keep}\na = 1\n{drop}\nb = 2\n")), opts)
	require.NoError(t, err)
	_, ok := d.GetSection("keep")
	require.True(t, ok)
	_, ok = d.GetSection("drop")
	require.False(t, ok)
}

func TestParseNSectionsCap(t *testing.T) {
	d := newTestData(t)
	opts := ParseOptions{NSections: 1}
	err := Parse(d, bufio.NewReader(strings.NewReader("{one}\na = 1\n{two}\nb = 2\n")), opts)
	require.NoError(t, err)
	_, ok := d.GetSection("one")
	require.True(t, ok)
	_, ok = d.GetSection("two")
	require.False(t, ok)
}
