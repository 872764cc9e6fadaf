package product

import "time"

// Availability labels derived from the stock column. A missing stock value
// means the quantity is unknown or unlimited, not that the product is gone.
type Availability string

const (
	AvailabilityUnknown    Availability = "unknown"
	AvailabilityOutOfStock Availability = "out_of_stock"
	AvailabilityInStock    Availability = "available"
)

type Product struct {
	ID          string
	Name        string
	Description *string
	Price       float64
	ImageURL    *string
	Category    *string
	Stock       *int64
	CreatedAt   time.Time
}

func (p Product) Availability() Availability {
	switch {
	case p.Stock == nil:
		return AvailabilityUnknown
	case *p.Stock == 0:
		return AvailabilityOutOfStock
	default:
		return AvailabilityInStock
	}
}
