package metacard

import (
	"github.com/spf13/cast"
)

// Record is a single catalog entry ("metacard"). Property values are scalars
// (string, float64, bool, date strings) or slices of scalars for multivalued
// attributes. Geometry carries the record's primary location as GeoJSON or
// WKT, if it has one.
type Record struct {
	Properties map[string]any `json:"properties"`
	Geometry   any            `json:"geometry,omitempty"`
}

// NewRecord creates a record with the given properties.
func NewRecord(props map[string]any) *Record {
	if props == nil {
		props = map[string]any{}
	}
	return &Record{Properties: props}
}

// ID returns the record identifier, or "" if it has none.
func (r *Record) ID() string {
	if r == nil {
		return ""
	}
	return cast.ToString(r.Properties["id"])
}

// Get returns the raw value of a property.
func (r *Record) Get(name string) (any, bool) {
	if r == nil || r.Properties == nil {
		return nil, false
	}
	v, ok := r.Properties[name]
	return v, ok
}
