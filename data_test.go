// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestData(t *testing.T) *Data {
	t.Helper()
	d, err := NewData(make([]byte, 64*1024))
	require.NoError(t, err)
	return d
}

func TestAddSectionAndLookup(t *testing.T) {
	d := newTestData(t)
	sec, err := d.AddSection(SectionTable, "server")
	require.NoError(t, err)
	require.Equal(t, SectionTable, sec.Kind())
	require.Equal(t, "server", sec.Name().String())

	got, ok := d.GetSection("server")
	require.True(t, ok)
	require.Same(t, sec, got)

	_, err = d.AddSection(SectionTable, "server")
	require.ErrorIs(t, err, ErrSectionNameReused)
}

func TestAddSectionEmptyName(t *testing.T) {
	d := newTestData(t)
	_, err := d.AddSection(SectionTable, "")
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestTableEntries(t *testing.T) {
	d := newTestData(t)
	sec, err := d.AddSection(SectionTable, "server")
	require.NoError(t, err)

	require.NoError(t, d.AddTableEntry(sec, "host", "localhost"))
	require.NoError(t, d.AddTableEntry(sec, "port", "8080"))

	v, ok := sec.GetTableEntry("host")
	require.True(t, ok)
	require.Equal(t, "localhost", v.String())

	err = d.AddTableEntry(sec, "host", "other")
	require.ErrorIs(t, err, ErrTableKeyReused)
}

func TestTableEntryAgainstArraySection(t *testing.T) {
	d := newTestData(t)
	sec, err := d.AddSection(SectionArray, "nums")
	require.NoError(t, err)
	err = d.AddTableEntry(sec, "a", "b")
	require.ErrorIs(t, err, ErrSectionType)
}

func TestArrayAppendAnd2D(t *testing.T) {
	d := newTestData(t)
	sec, err := d.AddSection(SectionArray, "grid")
	require.NoError(t, err)

	require.NoError(t, d.ArrayAppend(sec, "1", false))
	require.NoError(t, d.ArrayAppend(sec, "2", false))
	require.NoError(t, d.ArrayAppend(sec, "3", true))
	require.NoError(t, d.ArrayAppend(sec, "4", false))

	require.Equal(t, 4, sec.ElemCount())
	rows, cols, err := sec.Array2DSize(false)
	require.NoError(t, err)
	require.Equal(t, 2, rows)
	require.Equal(t, 2, cols)

	v, err := sec.ArrayGet2D(1, 0)
	require.NoError(t, err)
	require.Equal(t, "3", v.String())

	_, err = sec.ArrayGet2D(2, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStringInterning(t *testing.T) {
	d := newTestData(t)
	a, err := d.intern([]byte("hello"))
	require.NoError(t, err)
	b, err := d.intern([]byte("hello"))
	require.NoError(t, err)
	require.Same(t, a, b)
}

func TestCopyIntoSkipConflicts(t *testing.T) {
	dst := newTestData(t)
	src := newTestData(t)

	dstSec, err := dst.AddSection(SectionTable, "server")
	require.NoError(t, err)
	require.NoError(t, dst.AddTableEntry(dstSec, "host", "orig"))

	srcSec, err := src.AddSection(SectionTable, "server")
	require.NoError(t, err)
	require.NoError(t, src.AddTableEntry(srcSec, "host", "new"))
	require.NoError(t, src.AddTableEntry(srcSec, "port", "9090"))

	require.NoError(t, dst.CopyInto(src, false))

	v, ok := dstSec.GetTableEntry("host")
	require.True(t, ok)
	require.Equal(t, "orig", v.String())

	v, ok = dstSec.GetTableEntry("port")
	require.True(t, ok)
	require.Equal(t, "9090", v.String())
}

func TestCopyIntoOverwriteConflicts(t *testing.T) {
	dst := newTestData(t)
	src := newTestData(t)

	dstSec, err := dst.AddSection(SectionTable, "server")
	require.NoError(t, err)
	require.NoError(t, dst.AddTableEntry(dstSec, "host", "orig"))

	srcSec, err := src.AddSection(SectionTable, "server")
	require.NoError(t, err)
	require.NoError(t, src.AddTableEntry(srcSec, "host", "new"))

	require.NoError(t, dst.CopyInto(src, true))

	v, ok := dstSec.GetTableEntry("host")
	require.True(t, ok)
	require.Equal(t, "new", v.String())
}

func TestCopyIntoArraysAppend(t *testing.T) {
	dst := newTestData(t)
	src := newTestData(t)

	dstSec, err := dst.AddSection(SectionArray, "nums")
	require.NoError(t, err)
	require.NoError(t, dst.ArrayAppend(dstSec, "1", false))

	srcSec, err := src.AddSection(SectionArray, "nums")
	require.NoError(t, err)
	require.NoError(t, src.ArrayAppend(srcSec, "2", false))
	require.NoError(t, src.ArrayAppend(srcSec, "3", true))

	require.NoError(t, dst.CopyInto(src, false))
	require.Equal(t, 3, dstSec.ElemCount())
}

func TestMemCapAndUsed(t *testing.T) {
	d := newTestData(t)
	require.Equal(t, 64*1024, d.MemCap())
	used0 := d.MemUsed()
	_, err := d.AddSection(SectionTable, "x")
	require.NoError(t, err)
	require.Greater(t, d.MemUsed(), used0)
}

func TestOutOfMemory(t *testing.T) {
	d, err := NewData(make([]byte, 4096))
	require.NoError(t, err)
	var lastErr error
	name := "s"
	for i := 0; i < 1000; i++ {
		name += "x"
		_, lastErr = d.AddSection(SectionTable, name)
		if lastErr != nil {
			break
		}
	}
	require.ErrorIs(t, lastErr, ErrOutOfMemory)
}
