package appointment

import (
	"context"
)

// Store is the durable collection of appointments. Create must enforce the
// (date, physician) uniqueness atomically and report a violation as
// ErrConflict; any other failure is a *StorageError.
type Store interface {
	Create(ctx context.Context, c Candidate) (*Appointment, error)
	// List returns every appointment ordered as Less describes.
	List(ctx context.Context) ([]Appointment, error)
}

// ListCache holds ordered listings keyed by a generation counter. Bump must be
// called after a successful write so readers move to a fresh key.
type ListCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64) ([]Appointment, bool, error)
	Put(ctx context.Context, gen int64, list []Appointment) error
	Bump(ctx context.Context) error
}
