// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsml

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArray2DSizeEmpty(t *testing.T) {
	d := newTestData(t)
	sec, err := d.AddSection(SectionArray, "grid")
	require.NoError(t, err)

	rows, cols, err := sec.Array2DSize(false)
	require.NoError(t, err)
	require.Equal(t, 1, rows)
	require.Equal(t, 0, cols)

	_, err = sec.ArrayGet2D(0, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestArray2DSizeJagged(t *testing.T) {
	d := newTestData(t)
	sec, err := d.AddSection(SectionArray, "grid")
	require.NoError(t, err)

	require.NoError(t, d.ArrayAppend(sec, "1", false))
	require.NoError(t, d.ArrayAppend(sec, "2", false))
	require.NoError(t, d.ArrayAppend(sec, "3", false))
	require.NoError(t, d.ArrayAppend(sec, "4", true))
	require.NoError(t, d.ArrayAppend(sec, "5", false))

	rows, cols, err := sec.Array2DSize(true)
	require.NoError(t, err)
	require.Equal(t, 2, rows)
	require.Equal(t, 3, cols)

	rows, cols, err = sec.Array2DSize(false)
	require.NoError(t, err)
	require.Equal(t, 2, rows)
	require.Equal(t, 2, cols)

	v, err := sec.ArrayGet2D(0, 2)
	require.NoError(t, err)
	require.Equal(t, "3", v.String())

	_, err = sec.ArrayGet2D(1, 2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestArraySectionTypeMismatch(t *testing.T) {
	d := newTestData(t)
	sec, err := d.AddSection(SectionTable, "server")
	require.NoError(t, err)

	_, _, err = sec.Array2DSize(false)
	require.ErrorIs(t, err, ErrSectionType)

	_, err = sec.ArrayGet2D(0, 0)
	require.ErrorIs(t, err, ErrSectionType)
}
