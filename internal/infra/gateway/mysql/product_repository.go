package mysql

import (
	"context"
	"database/sql"
	"errors"

	domproduct "example.com/storefront/internal/domain/product"
)

// ProductRepository reads the products table of the remote store. The
// catalog never writes products, so there are no mutation methods.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]domproduct.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, description, price, image_url, category, stock, created_at
        FROM products
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domproduct.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domproduct.Product, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, description, price, image_url, category, stock, created_at
        FROM products
        WHERE id = ?
    `, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domproduct.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domproduct.Product, error) {
	var (
		p           domproduct.Product
		description sql.NullString
		imageURL    sql.NullString
		category    sql.NullString
		stock       sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &imageURL, &category, &stock, &p.CreatedAt)
	if err != nil {
		return domproduct.Product{}, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	if category.Valid {
		p.Category = &category.String
	}
	if stock.Valid {
		p.Stock = &stock.Int64
	}
	return p, nil
}
