package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/database"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

// OrderRepository persists orders in PostgreSQL. The order row and its item
// rows are written in a single transaction.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its items atomically.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, payment_id, status,
			subtotal_amount, delivery_fee, discount_amount, total_amount,
			currency, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		order.ID, order.UserID, order.PaymentID, order.Status,
		order.SubtotalAmount, order.DeliveryFee, order.DiscountAmount, order.TotalAmount,
		order.Currency, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "insert order")
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, name, price, quantity, image_url
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, item.ProductID, item.Name,
			item.Price, item.Quantity, item.ImageURL,
		)
		if err != nil {
			return apperrors.Wrap(err, "insert order item")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, "commit transaction")
	}
	return nil
}

// GetByID loads an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, payment_id, status,
		       subtotal_amount, delivery_fee, discount_amount, total_amount,
		       currency, created_at, updated_at
		FROM orders
		WHERE id = $1`, id,
	).Scan(
		&order.ID, &order.UserID, &order.PaymentID, &order.Status,
		&order.SubtotalAmount, &order.DeliveryFee, &order.DiscountAmount, &order.TotalAmount,
		&order.Currency, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, apperrors.Wrap(err, "get order")
	}

	items, err := r.loadItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

// ListByUser returns the user's orders with items, newest first, and the
// total count for pagination.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "count orders")
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, payment_id, status,
		       subtotal_amount, delivery_fee, discount_amount, total_amount,
		       currency, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "list orders")
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		var order domain.Order
		err := rows.Scan(
			&order.ID, &order.UserID, &order.PaymentID, &order.Status,
			&order.SubtotalAmount, &order.DeliveryFee, &order.DiscountAmount, &order.TotalAmount,
			&order.Currency, &order.CreatedAt, &order.UpdatedAt,
		)
		if err != nil {
			return nil, 0, apperrors.Wrap(err, "scan order")
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.Wrap(err, "iterate orders")
	}

	if len(ids) > 0 {
		items, err := r.loadItems(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}

	return orders, total, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, name, price, quantity, image_url
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`, orderIDs,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "load order items")
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.Price, &item.Quantity, &item.ImageURL,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "scan order item")
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "iterate order items")
	}
	return items, nil
}
