// Package collector defines the Collector interface and the host telemetry
// categories that make up a snapshot.
package collector

import "context"

// Collector gathers one telemetry category.
type Collector interface {
	// Name returns the category name the result is recorded under.
	Name() string

	// Collect reads the category from the host. The returned value must
	// marshal to JSON and YAML.
	Collect(ctx context.Context) (any, error)

	// IsAvailable checks if this collector can run on the current host.
	// Collectors that return false are not registered.
	IsAvailable() bool
}

// Func adapts a plain function into an always-available Collector.
type Func struct {
	CategoryName string
	Fn           func(ctx context.Context) (any, error)
}

// Name returns the category name.
func (f Func) Name() string { return f.CategoryName }

// Collect calls the wrapped function.
func (f Func) Collect(ctx context.Context) (any, error) { return f.Fn(ctx) }

// IsAvailable returns true.
func (f Func) IsAvailable() bool { return true }
