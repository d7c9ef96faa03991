package models

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Snapshot is a point-in-time record of host telemetry, keyed by category name.
// A Snapshot is never modified after NewSnapshot returns.
type Snapshot struct {
	categories map[string]any
}

// NewSnapshot copies categories into a new Snapshot. Nil values, including
// typed nil pointers, maps and slices, are dropped.
func NewSnapshot(categories map[string]any) *Snapshot {
	s := &Snapshot{categories: make(map[string]any, len(categories))}
	for name, v := range categories {
		if IsNil(v) {
			continue
		}
		s.categories[name] = v
	}
	return s
}

// IsNil reports whether v is nil or holds a nil pointer, map, slice or
// interface, any of which would serialize as null.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Get returns the value recorded for a category.
func (s *Snapshot) Get(name string) (any, bool) {
	v, ok := s.categories[name]
	return v, ok
}

// Names returns the category names in sorted order.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.categories))
	for name := range s.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of categories.
func (s *Snapshot) Len() int { return len(s.categories) }

// Failed returns the sorted names of categories carrying a CollectionError.
func (s *Snapshot) Failed() []string {
	var failed []string
	for _, name := range s.Names() {
		if IsCollectionError(s.categories[name]) {
			failed = append(failed, name)
		}
	}
	return failed
}

// Valid returns the number of categories holding real data.
func (s *Snapshot) Valid() int {
	return s.Len() - len(s.Failed())
}

// MarshalJSON emits the category map. encoding/json sorts map keys, which makes
// the output canonical for a given set of values.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.categories)
}

// MarshalYAML emits the category map.
func (s *Snapshot) MarshalYAML() (interface{}, error) {
	return s.categories, nil
}

// JSON returns the canonical text form: two-space indent, sorted keys.
func (s *Snapshot) JSON() ([]byte, error) {
	return json.MarshalIndent(s.categories, "", "  ")
}
