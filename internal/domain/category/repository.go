package category

import "context"

type Repository interface {
	Create(ctx context.Context, c *Category) (*Category, error)
	Update(ctx context.Context, c *Category) (*Category, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Category, error)
	// List returns every category ordered by display order ascending, with
	// a stable tiebreak so repeated fetches agree.
	List(ctx context.Context) ([]Category, error)
}
