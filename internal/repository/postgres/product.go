package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/techstore/internal/domain"
	"github.com/utafrali/techstore/pkg/database"
)

// DBTX is the subset of *pgxpool.Pool the repository needs. pgxmock pools
// satisfy it too.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const listProductsQuery = `
	SELECT id, name, price, image, category, specs, badge
	FROM products
	ORDER BY sort_order, id`

// List returns the whole catalog ordered by sort_order, then id.
func (r *ProductRepository) List(ctx context.Context) (_ []domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "ListProducts", listProductsQuery)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			p     domain.Product
			badge *string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Category, &p.Specs, &badge); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if badge != nil {
			p.Badge = *badge
		}
		if p.Specs == nil {
			p.Specs = []string{}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}

// Ping runs a trivial query; it backs the readiness probe.
func (r *ProductRepository) Ping(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}
