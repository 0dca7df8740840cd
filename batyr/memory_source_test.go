// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func testRoadsLayer() *MemoryLayer {
	fields := []FieldDef{
		{Name: "id", Index: 0, Kind: FieldInteger},
		{Name: "name", Index: 1, Kind: FieldString},
		{Name: "length", Index: 2, Kind: FieldReal},
	}
	features := []*MemoryFeature{
		{Geom: geom.NewPointFlat(geom.XY, []float64{0, 0}), Values: []any{int64(1), "main st", 1.5}},
		{Geom: geom.NewPointFlat(geom.XY, []float64{1, 1}), Values: []any{int64(2), "oak ave", 2.25}},
		{Geom: geom.NewPointFlat(geom.XY, []float64{2, 2}), Values: []any{int64(3), "main st", 0.75}},
	}
	return NewMemoryLayer(fields, features)
}

func TestMemoryLayerIteration(t *testing.T) {
	layer := testRoadsLayer()
	count := 0
	for {
		_, ok := layer.Next()
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 3, count)

	layer.Reset()
	_, ok := layer.Next()
	assert.True(t, ok)
}

func TestMemoryLayerStringFilter(t *testing.T) {
	layer := testRoadsLayer()
	require.NoError(t, layer.SetFilter("name = 'main st'"))

	var ids []int64
	for {
		f, ok := layer.Next()
		if !ok {
			break
		}
		ids = append(ids, f.IntField(0))
	}
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestMemoryLayerNumericFilter(t *testing.T) {
	layer := testRoadsLayer()
	require.NoError(t, layer.SetFilter("id = 2"))

	f, ok := layer.Next()
	require.True(t, ok)
	assert.Equal(t, "oak ave", f.StringField(1))
	_, ok = layer.Next()
	assert.False(t, ok)
}

func TestMemoryLayerFilterErrors(t *testing.T) {
	layer := testRoadsLayer()

	err := layer.SetFilter("nope =")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse filter expression")

	err = layer.SetFilter("missing = 'x'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "missing"`)

	err = layer.SetFilter("name = 'unterminated")
	require.Error(t, err)
}

func TestMemoryLayerClearFilter(t *testing.T) {
	layer := testRoadsLayer()
	require.NoError(t, layer.SetFilter("id = 1"))
	require.NoError(t, layer.SetFilter(""))

	count := 0
	for {
		if _, ok := layer.Next(); !ok {
			break
		}
		count++
	}
	assert.Equal(t, 3, count)
}

func TestOpenDataset(t *testing.T) {
	ds := NewMemoryDataset()
	ds.AddLayer("roads", testRoadsLayer())
	DefaultMemoryDriver.Add("mem://open-test", ds)
	defer DefaultMemoryDriver.Remove("mem://open-test")

	opened, err := OpenDataset("mem://open-test")
	require.NoError(t, err)
	_, err = opened.Layer("roads")
	assert.NoError(t, err)
	_, err = opened.Layer("rivers")
	assert.Error(t, err)
}

func TestOpenDatasetUnknownScheme(t *testing.T) {
	_, err := OpenDataset("nope://anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no driver registered for scheme "nope"`)
}

func TestOpenDatasetNoScheme(t *testing.T) {
	_, err := OpenDataset("just-a-path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no scheme")
}
