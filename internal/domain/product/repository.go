package product

import "context"

// Repository is the product side of the remote table store. Products are
// read-only in this system: nothing here creates, updates or deletes rows.
type Repository interface {
	// List returns every product ordered by creation time, newest first.
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}
