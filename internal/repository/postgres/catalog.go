package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/repository"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/database"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

// CatalogRepository reads products, categories, and offers from PostgreSQL.
type CatalogRepository struct {
	db database.DBTX
}

// NewCatalogRepository creates a PostgreSQL-backed catalog repository.
func NewCatalogRepository(db database.DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListProducts returns a page of products, optionally filtered by category,
// plus the total matching count.
func (r *CatalogRepository) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM products
		WHERE ($1 = '' OR category = $1)`, filter.Category,
	).Scan(&total)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "count products")
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, category, image_url, in_stock,
		       created_at, updated_at
		FROM products
		WHERE ($1 = '' OR category = $1)
		ORDER BY name
		LIMIT $2 OFFSET $3`,
		filter.Category, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "list products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
			&p.ImageURL, &p.InStock, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, 0, apperrors.Wrap(err, "scan product")
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, "iterate products")
	}

	return products, total, nil
}

// GetProduct loads a single product by ID.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, price, category, image_url, in_stock,
		       created_at, updated_at
		FROM products
		WHERE id = $1`, id,
	).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		&p.ImageURL, &p.InStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, apperrors.Wrap(err, "get product")
	}
	return &p, nil
}

// ListCategories returns all categories ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, apperrors.Wrap(err, "list categories")
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, apperrors.Wrap(err, "scan category")
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "iterate categories")
	}
	return categories, nil
}

// ListActiveOffers returns offers whose window covers now.
func (r *CatalogRepository) ListActiveOffers(ctx context.Context) ([]domain.Offer, error) {
	now := time.Now().UTC()
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, image_url, starts_at, ends_at
		FROM offers
		WHERE starts_at <= $1 AND ends_at > $1
		ORDER BY starts_at DESC`, now,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "list offers")
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		var o domain.Offer
		err := rows.Scan(&o.ID, &o.Title, &o.Description, &o.ImageURL, &o.StartsAt, &o.EndsAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "scan offer")
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "iterate offers")
	}
	return offers, nil
}
