// Package service defines the narrow data interface resource stores call.
// Stores never touch a backing collection directly; the service owns it.
package service

import "context"

// Record is any entity with a stable, unique identifier.
type Record interface {
	RecordID() string
}

// Resource describes the per-entity data operations a resource store needs.
// Removing or updating an absent identifier is a silent no-op, never an
// error: the visible view is always re-fetched after a mutation anyway.
type Resource[R Record] interface {
	List(ctx context.Context) ([]R, error)
	Create(ctx context.Context, rec R) (R, error)
	Update(ctx context.Context, id string, rec R) (R, error)
	Delete(ctx context.Context, id string) error
}
