// Package models defines the telemetry data structures used throughout the analyst.
// These structures are serialized to JSON for output and for embedding into analysis requests.
package models

// DiskInfo represents usage for a single disk/partition.
type DiskInfo struct {
	Mount       string  `json:"mount" yaml:"mount"`
	Fs          string  `json:"fs,omitempty" yaml:"fs,omitempty"`
	Total       uint64  `json:"total" yaml:"total"`
	Used        uint64  `json:"used" yaml:"used"`
	Free        uint64  `json:"free" yaml:"free"`
	UsedPercent float64 `json:"used_percent" yaml:"used_percent"`
}

// ProcessInfo represents a single process's resource usage.
type ProcessInfo struct {
	PID    int32   `json:"pid" yaml:"pid"`
	Name   string  `json:"name" yaml:"name"`
	CPU    float64 `json:"cpu" yaml:"cpu"`
	Memory float64 `json:"memory" yaml:"memory"`
	Status string  `json:"status" yaml:"status"`
}

// CollectionError marks a category whose source could not be read.
// It replaces the category value entirely; partial data is never kept alongside it.
type CollectionError struct {
	Error string `json:"collection_error" yaml:"collection_error"`
}

// IsCollectionError reports whether v is a collection error marker.
func IsCollectionError(v any) bool {
	switch v.(type) {
	case CollectionError, *CollectionError:
		return true
	default:
		return false
	}
}
