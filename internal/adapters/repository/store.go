// Package repository provides the keyed registry that live match sessions
// are tracked in.
package repository

import "context"

// Store provides concurrent keyed access to live values.
type Store[T any] interface {
	// Put registers v under id.
	// Returns ErrDuplicateID if id is already registered.
	Put(ctx context.Context, id string, v T) error

	// Get returns the value registered under id.
	// Returns ErrNotFound if id is unknown.
	Get(ctx context.Context, id string) (T, error)

	// Delete removes and returns the value registered under id.
	// Returns ErrNotFound if id is unknown.
	Delete(ctx context.Context, id string) (T, error)

	// Range visits registered values until fn returns false. Visits run on
	// a point-in-time copy per shard; iteration order is unspecified.
	Range(ctx context.Context, fn func(id string, v T) bool)

	// Count returns the number of registered values.
	Count(ctx context.Context) int
}
