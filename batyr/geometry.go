// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"encoding/hex"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// EncodeGeometryHex renders a geometry as hex-encoded little-endian WKB,
// the literal form PostGIS accepts in a geometry column.
func EncodeGeometryHex(g geom.T) (string, error) {
	if g == nil {
		return "", fmt.Errorf("%w: feature has no geometry", ErrEncoding)
	}
	raw, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return hex.EncodeToString(raw), nil
}
