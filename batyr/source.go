// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/twpayne/go-geom"
)

// FieldKind classifies a source attribute field.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldInteger
	FieldReal
	FieldGeometry
	FieldOther
)

func (k FieldKind) String() string {
	switch k {
	case FieldString:
		return "string"
	case FieldInteger:
		return "integer"
	case FieldReal:
		return "real"
	case FieldGeometry:
		return "geometry"
	default:
		return fmt.Sprintf("other(%d)", int(k))
	}
}

// FieldDef describes one attribute field of a source layer.
type FieldDef struct {
	Name  string
	Index int
	Kind  FieldKind
}

// Feature is one record streamed from a source layer. Field accessors
// take the index from the corresponding FieldDef.
type Feature interface {
	Geometry() geom.T
	StringField(i int) string
	IntField(i int) int64
	RealField(i int) float64
}

// SourceLayer is a readable layer inside an open dataset.
type SourceLayer interface {
	Fields() []FieldDef
	GeometryFieldCount() int
	Reset()
	SetFilter(expr string) error
	Next() (Feature, bool)
}

// Dataset is an open source dataset.
type Dataset interface {
	Layer(name string) (SourceLayer, error)
	Close() error
}

// Driver opens datasets for one locator scheme.
type Driver interface {
	Open(locator string) (Dataset, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver makes a driver available under the given locator
// scheme. Registering a scheme twice replaces the earlier driver.
func RegisterDriver(scheme string, drv Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[scheme] = drv
}

// OpenDataset opens the dataset addressed by a scheme-prefixed locator
// such as "mem://roads".
func OpenDataset(locator string) (Dataset, error) {
	scheme, _, ok := strings.Cut(locator, "://")
	if !ok {
		return nil, fmt.Errorf("locator %q has no scheme", locator)
	}
	driversMu.RLock()
	drv, found := drivers[scheme]
	driversMu.RUnlock()
	if !found {
		return nil, fmt.Errorf("no driver registered for scheme %q", scheme)
	}
	return drv.Open(locator)
}
