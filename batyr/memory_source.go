// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/twpayne/go-geom"
)

// MemoryDriver serves in-memory datasets, primarily for tests and for
// exercising the engine without an external vendor library.
type MemoryDriver struct {
	mu       sync.RWMutex
	datasets map[string]*MemoryDataset
}

// NewMemoryDriver creates an empty in-memory driver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		datasets: make(map[string]*MemoryDataset),
	}
}

// DefaultMemoryDriver is registered under the "mem" scheme.
var DefaultMemoryDriver = NewMemoryDriver()

func init() {
	RegisterDriver("mem", DefaultMemoryDriver)
}

// Add registers a dataset under the given locator.
func (d *MemoryDriver) Add(locator string, ds *MemoryDataset) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.datasets[locator] = ds
}

// Remove drops the dataset registered under the given locator.
func (d *MemoryDriver) Remove(locator string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.datasets, locator)
}

// Open implements Driver.
func (d *MemoryDriver) Open(locator string) (Dataset, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ds, ok := d.datasets[locator]
	if !ok {
		return nil, fmt.Errorf("no dataset at %q", locator)
	}
	return ds, nil
}

// MemoryDataset holds named in-memory layers.
type MemoryDataset struct {
	layers map[string]*MemoryLayer
}

// NewMemoryDataset creates an empty dataset.
func NewMemoryDataset() *MemoryDataset {
	return &MemoryDataset{
		layers: make(map[string]*MemoryLayer),
	}
}

// AddLayer registers a layer under the given name.
func (d *MemoryDataset) AddLayer(name string, layer *MemoryLayer) {
	d.layers[name] = layer
}

// Layer implements Dataset.
func (d *MemoryDataset) Layer(name string) (SourceLayer, error) {
	layer, ok := d.layers[name]
	if !ok {
		return nil, fmt.Errorf("no layer %q in dataset", name)
	}
	return layer, nil
}

// Close implements Dataset. In-memory datasets survive Close so they can
// be reopened by later jobs.
func (d *MemoryDataset) Close() error {
	return nil
}

// MemoryFeature is one in-memory record. Values are indexed by FieldDef
// index and hold string, int64 or float64 entries.
type MemoryFeature struct {
	Geom   geom.T
	Values []any
}

func (f *MemoryFeature) Geometry() geom.T { return f.Geom }

func (f *MemoryFeature) StringField(i int) string {
	v, _ := f.Values[i].(string)
	return v
}

func (f *MemoryFeature) IntField(i int) int64 {
	v, _ := f.Values[i].(int64)
	return v
}

func (f *MemoryFeature) RealField(i int) float64 {
	v, _ := f.Values[i].(float64)
	return v
}

// MemoryLayer is a slice-backed source layer with a simple
// "field = value" attribute filter.
type MemoryLayer struct {
	fields     []FieldDef
	features   []*MemoryFeature
	geomFields int
	filter     func(*MemoryFeature) bool
	pos        int
}

// NewMemoryLayer creates a layer with one geometry field.
func NewMemoryLayer(fields []FieldDef, features []*MemoryFeature) *MemoryLayer {
	return &MemoryLayer{
		fields:     fields,
		features:   features,
		geomFields: 1,
	}
}

// SetGeometryFieldCount overrides the reported geometry field count.
func (l *MemoryLayer) SetGeometryFieldCount(n int) {
	l.geomFields = n
}

func (l *MemoryLayer) Fields() []FieldDef      { return l.fields }
func (l *MemoryLayer) GeometryFieldCount() int { return l.geomFields }

// Reset rewinds iteration to the first feature.
func (l *MemoryLayer) Reset() {
	l.pos = 0
}

// SetFilter accepts expressions of the form "field = 'text'" or
// "field = number". An empty expression clears the filter.
func (l *MemoryLayer) SetFilter(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		l.filter = nil
		return nil
	}
	lhs, rhs, ok := strings.Cut(expr, "=")
	if !ok {
		return fmt.Errorf("unable to parse filter expression near %q", expr)
	}
	name := strings.TrimSpace(lhs)
	value := strings.TrimSpace(rhs)
	if name == "" || value == "" {
		return fmt.Errorf("unable to parse filter expression near %q", expr)
	}
	if strings.HasPrefix(value, "'") {
		if !strings.HasSuffix(value, "'") || len(value) < 2 {
			return fmt.Errorf("unterminated string literal in filter %q", expr)
		}
		value = value[1 : len(value)-1]
	}
	var field *FieldDef
	for i := range l.fields {
		if l.fields[i].Name == name {
			field = &l.fields[i]
			break
		}
	}
	if field == nil {
		return fmt.Errorf("unknown field %q in filter", name)
	}
	idx := field.Index
	kind := field.Kind
	l.filter = func(f *MemoryFeature) bool {
		switch kind {
		case FieldString:
			return f.StringField(idx) == value
		case FieldInteger:
			return strconv.FormatInt(f.IntField(idx), 10) == value
		case FieldReal:
			return strconv.FormatFloat(f.RealField(idx), 'g', -1, 64) == value
		default:
			return false
		}
	}
	return nil
}

// Next returns the next feature matching the filter.
func (l *MemoryLayer) Next() (Feature, bool) {
	for l.pos < len(l.features) {
		f := l.features[l.pos]
		l.pos++
		if l.filter == nil || l.filter(f) {
			return f, true
		}
	}
	return nil, false
}
