package category

// Category rows are sorted by DisplayOrder ascending wherever they are
// shown. The value is free-form: duplicates and gaps are legal.
type Category struct {
	ID           string
	Name         string
	Description  *string
	DisplayOrder int
}
