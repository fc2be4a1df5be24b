package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

var orderColumns = []string{
	"id", "user_id", "payment_id", "status",
	"subtotal_amount", "delivery_fee", "discount_amount", "total_amount",
	"currency", "created_at", "updated_at",
}

var orderItemColumns = []string{
	"id", "order_id", "product_id", "name", "price", "quantity", "image_url",
}

func testOrder() *domain.Order {
	return &domain.Order{
		ID:        "order-1",
		UserID:    "user-1",
		PaymentID: "pi_1",
		Status:    domain.OrderStatusPlaced,
		Items: []domain.OrderItem{
			{ID: "item-1", ProductID: "p-1", Name: "Apples", Price: 1000, Quantity: 2},
		},
		SubtotalAmount: 2000,
		DeliveryFee:    5000,
		DiscountAmount: 0,
		TotalAmount:    7000,
		Currency:       "ZAR",
	}
}

func TestOrderRepository_Create(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	order := testOrder()

	pool.ExpectBegin()
	pool.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID, order.UserID, order.PaymentID, order.Status,
			order.SubtotalAmount, order.DeliveryFee, order.DiscountAmount, order.TotalAmount,
			order.Currency, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("INSERT INTO order_items").
		WithArgs("item-1", order.ID, "p-1", "Apples", int64(1000), 2, "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectCommit()

	repo := NewOrderRepository(pool)
	require.NoError(t, repo.Create(context.Background(), order))
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestOrderRepository_Create_RollsBackOnItemFailure(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	order := testOrder()

	pool.ExpectBegin()
	pool.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID, order.UserID, order.PaymentID, order.Status,
			order.SubtotalAmount, order.DeliveryFee, order.DiscountAmount, order.TotalAmount,
			order.Currency, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("INSERT INTO order_items").
		WithArgs("item-1", order.ID, "p-1", "Apples", int64(1000), 2, "").
		WillReturnError(assert.AnError)
	pool.ExpectRollback()

	repo := NewOrderRepository(pool)
	err = repo.Create(context.Background(), order)
	require.Error(t, err)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestOrderRepository_GetByID(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	now := time.Now().UTC()
	pool.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("order-1").
		WillReturnRows(pgxmock.NewRows(orderColumns).AddRow(
			"order-1", "user-1", "pi_1", "placed",
			int64(2000), int64(5000), int64(0), int64(7000),
			"ZAR", now, now,
		))
	pool.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs([]string{"order-1"}).
		WillReturnRows(pgxmock.NewRows(orderItemColumns).AddRow(
			"item-1", "order-1", "p-1", "Apples", int64(1000), 2, "",
		))

	repo := NewOrderRepository(pool)
	order, err := repo.GetByID(context.Background(), "order-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, int64(7000), order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Apples", order.Items[0].Name)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	repo := NewOrderRepository(pool)
	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderRepository_ListByUser(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	now := time.Now().UTC()
	pool.ExpectQuery("SELECT COUNT").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	pool.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("user-1", 20, 0).
		WillReturnRows(pgxmock.NewRows(orderColumns).
			AddRow("order-2", "user-1", "pi_2", "placed",
				int64(500), int64(5000), int64(0), int64(5500), "ZAR", now, now).
			AddRow("order-1", "user-1", "pi_1", "placed",
				int64(2000), int64(5000), int64(0), int64(7000), "ZAR", now.Add(-time.Hour), now.Add(-time.Hour)))
	pool.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs([]string{"order-2", "order-1"}).
		WillReturnRows(pgxmock.NewRows(orderItemColumns).
			AddRow("item-2", "order-2", "p-2", "Bananas", int64(500), 1, "").
			AddRow("item-1", "order-1", "p-1", "Apples", int64(1000), 2, ""))

	repo := NewOrderRepository(pool)
	orders, total, err := repo.ListByUser(context.Background(), "user-1", 20, 0)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-2", orders[0].ID, "newest first")
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Bananas", orders[0].Items[0].Name)
	require.NoError(t, pool.ExpectationsWereMet())
}
