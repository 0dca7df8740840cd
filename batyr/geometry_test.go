// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestEncodeGeometryHexPoint(t *testing.T) {
	p := geom.NewPointFlat(geom.XY, []float64{1, 2})
	hexWKB, err := EncodeGeometryHex(p)
	require.NoError(t, err)
	assert.Equal(t, "0101000000000000000000f03f0000000000000040", hexWKB)
}

func TestEncodeGeometryHexLineString(t *testing.T) {
	ls := geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1})
	hexWKB, err := EncodeGeometryHex(ls)
	require.NoError(t, err)
	// Little-endian marker and the LineString type code.
	assert.Equal(t, "0102000000", hexWKB[:10])
}

func TestEncodeGeometryHexNil(t *testing.T) {
	_, err := EncodeGeometryHex(nil)
	assert.ErrorIs(t, err, ErrEncoding)
}
