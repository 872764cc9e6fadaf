package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domcategory "example.com/storefront/internal/domain/category"
	"example.com/storefront/internal/infra/realtime"
)

const categoriesTable = "categories"

// CategoryRepository is the full CRUD side of the remote store. Mutations
// publish a change event, standing in for the hosted backend's feed.
type CategoryRepository struct {
	db   *sql.DB
	feed realtime.Publisher
	log  *zap.Logger
}

func NewCategoryRepository(db *sql.DB, feed realtime.Publisher, log *zap.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, feed: feed, log: log.Named("gateway.categories")}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domcategory.Category) (*domcategory.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO categories (id, name, description, display_order)
        VALUES (?, ?, ?, ?)
    `, c.ID, c.Name, c.Description, c.DisplayOrder)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, realtime.OpInsert)
	return c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domcategory.Category) (*domcategory.Category, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE categories SET name = ?, description = ?, display_order = ?
        WHERE id = ?
    `, c.Name, c.Description, c.DisplayOrder, c.ID)
	if err != nil {
		return nil, err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, domcategory.ErrCategoryNotFound
	}
	r.publish(ctx, realtime.OpUpdate)
	return c, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domcategory.ErrCategoryNotFound
	}
	r.publish(ctx, realtime.OpDelete)
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domcategory.Category, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, description, display_order
        FROM categories
        WHERE id = ?
    `, id)

	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domcategory.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]domcategory.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, description, display_order
        FROM categories
        ORDER BY display_order ASC, id ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domcategory.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) publish(ctx context.Context, op realtime.Op) {
	if r.feed == nil {
		return
	}
	ev := realtime.Event{Table: categoriesTable, Op: op}
	if err := r.feed.Publish(ctx, ev); err != nil {
		r.log.Warn("change event not published", zap.String("op", string(op)), zap.Error(err))
	}
}

func scanCategory(row rowScanner) (domcategory.Category, error) {
	var (
		c           domcategory.Category
		description sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &description, &c.DisplayOrder)
	if err != nil {
		return domcategory.Category{}, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	return c, nil
}
