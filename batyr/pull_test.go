// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestScratchTableName(t *testing.T) {
	name := scratchTableName("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "batyr_6ba7b8109dad11d180b400c04fd430c8", name)
}

func roadsTargetFields() []TargetField {
	return []TargetField{
		{Name: "id", TypeName: "int4", PrimaryKey: true},
		{Name: "name", TypeName: "varchar"},
		{Name: "length", TypeName: "float8"},
		{Name: "geom", TypeName: "geometry"},
	}
}

func roadsSourceFields() map[string]FieldDef {
	return map[string]FieldDef{
		"id":     {Name: "id", Index: 0, Kind: FieldInteger},
		"name":   {Name: "name", Index: 1, Kind: FieldString},
		"length": {Name: "length", Index: 2, Kind: FieldReal},
	}
}

func testLayer() *Layer {
	return &Layer{
		Name: "roads", Source: "mem://roads", SourceLayer: "roads",
		TargetSchema: "public", TargetTable: "roads",
	}
}

func TestBuildColumnPlan(t *testing.T) {
	plan, err := buildColumnPlan(testLayer(), roadsTargetFields(), roadsSourceFields())
	require.NoError(t, err)

	assert.Equal(t, []string{"id"}, plan.pkCols)
	assert.Equal(t, []string{"name", "length", "geom"}, plan.updateCols)
	assert.Equal(t, []string{"id", "name", "length", "geom"}, plan.insertCols)
	assert.Equal(t, "geom", plan.geometryColumn)
	assert.Equal(t, "int4", plan.typeOf["id"])
}

func TestBuildColumnPlanUnmatchedColumn(t *testing.T) {
	targets := append(roadsTargetFields(), TargetField{Name: "updated_by", TypeName: "varchar"})
	plan, err := buildColumnPlan(testLayer(), targets, roadsSourceFields())
	require.NoError(t, err)
	// Not fed from the source, but still part of the update projection.
	assert.NotContains(t, plan.insertCols, "updated_by")
	assert.Contains(t, plan.updateCols, "updated_by")
}

func TestBuildColumnPlanMissingPrimaryKey(t *testing.T) {
	src := roadsSourceFields()
	delete(src, "id")
	_, err := buildColumnPlan(testLayer(), roadsTargetFields(), src)
	require.ErrorIs(t, err, ErrIntrospection)
	assert.Contains(t, err.Error(), "missing the primary key column(s) id")
}

func TestBuildColumnPlanMissingCompositeKeys(t *testing.T) {
	targets := []TargetField{
		{Name: "a", TypeName: "int4", PrimaryKey: true},
		{Name: "b", TypeName: "int4", PrimaryKey: true},
		{Name: "geom", TypeName: "geometry"},
	}
	_, err := buildColumnPlan(testLayer(), targets, map[string]FieldDef{})
	require.ErrorIs(t, err, ErrIntrospection)
	assert.Contains(t, err.Error(), "a, b")
}

func TestBuildColumnPlanNoGeometryColumn(t *testing.T) {
	targets := []TargetField{
		{Name: "id", TypeName: "int4", PrimaryKey: true},
	}
	_, err := buildColumnPlan(testLayer(), targets, roadsSourceFields())
	require.ErrorIs(t, err, ErrIntrospection)
	assert.Contains(t, err.Error(), "no geometry column")
}

func TestBuildColumnPlanMultipleGeometryColumns(t *testing.T) {
	targets := append(roadsTargetFields(), TargetField{Name: "geom2", TypeName: "geometry"})
	_, err := buildColumnPlan(testLayer(), targets, roadsSourceFields())
	require.ErrorIs(t, err, ErrIntrospection)
	assert.Contains(t, err.Error(), "more than one geometry column")
}

func TestBuildColumnPlanNoPrimaryKey(t *testing.T) {
	targets := []TargetField{
		{Name: "name", TypeName: "varchar"},
		{Name: "geom", TypeName: "geometry"},
	}
	_, err := buildColumnPlan(testLayer(), targets, roadsSourceFields())
	require.ErrorIs(t, err, ErrIntrospection)
	assert.Contains(t, err.Error(), "no usable primary key")
}

func TestPullInvalidFilterFailsJob(t *testing.T) {
	ds := NewMemoryDataset()
	ds.AddLayer("roads", testRoadsLayer())
	DefaultMemoryDriver.Add("mem://pull-filter", ds)
	defer DefaultMemoryDriver.Remove("mem://pull-filter")

	layer := &Layer{
		Name: "roads", Source: "mem://pull-filter", SourceLayer: "roads",
		TargetSchema: "public", TargetTable: "roads",
	}
	job := NewJob("roads", "nope =")
	job.SetStatus(StatusInProcess)

	// The filter is rejected before any database work starts, so a
	// zero-value connection handle is never touched.
	err := pull(context.Background(), &database{}, layer, job, slog.Default())
	require.ErrorIs(t, err, ErrSource)
	assert.Contains(t, err.Error(), "unable to parse filter expression")
	assert.Contains(t, err.Error(), "the applied filter was [ nope = ]")

	job.Fail(err.Error())
	snap := job.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Contains(t, snap.Message, "nope =")
}

func TestFeatureValues(t *testing.T) {
	plan, err := buildColumnPlan(testLayer(), roadsTargetFields(), roadsSourceFields())
	require.NoError(t, err)

	f := &MemoryFeature{
		Geom:   geom.NewPointFlat(geom.XY, []float64{1, 2}),
		Values: []any{int64(7), "main st", 1.5},
	}
	values, err := featureValues(f, plan, roadsSourceFields(), 0)
	require.NoError(t, err)
	require.Len(t, values, 4)
	assert.Equal(t, "7", values[0])
	assert.Equal(t, "main st", values[1])
	assert.Equal(t, "1.5", values[2])
	assert.Equal(t, "0101000000000000000000f03f0000000000000040", values[3])
}

func TestFeatureValuesNilGeometry(t *testing.T) {
	plan, err := buildColumnPlan(testLayer(), roadsTargetFields(), roadsSourceFields())
	require.NoError(t, err)

	f := &MemoryFeature{Values: []any{int64(7), "main st", 1.5}}
	_, err = featureValues(f, plan, roadsSourceFields(), 4)
	require.ErrorIs(t, err, ErrEncoding)
	assert.Contains(t, err.Error(), "could not export the geometry from feature #4")
}

func TestFeatureValuesUnsupportedKind(t *testing.T) {
	src := roadsSourceFields()
	src["name"] = FieldDef{Name: "name", Index: 1, Kind: FieldOther}
	plan, err := buildColumnPlan(testLayer(), roadsTargetFields(), src)
	require.NoError(t, err)

	f := &MemoryFeature{
		Geom:   geom.NewPointFlat(geom.XY, []float64{0, 0}),
		Values: []any{int64(1), "x", 0.0},
	}
	_, err = featureValues(f, plan, src, 0)
	require.ErrorIs(t, err, ErrEncoding)
	assert.Contains(t, err.Error(), `unsupported source field type 4 for column "name"`)
}
