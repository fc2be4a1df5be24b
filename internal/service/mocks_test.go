package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/payment"
)

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if cart := args.Get(0); cart != nil {
		return cart.(*domain.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if order := args.Get(0); order != nil {
		return order.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if orders := args.Get(0); orders != nil {
		return orders.([]domain.Order), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

type mockPaymentGateway struct {
	mock.Mock
}

func (m *mockPaymentGateway) CreateIntent(ctx context.Context, amount int64, currency, description, idempotencyKey string) (*payment.Intent, error) {
	args := m.Called(ctx, amount, currency, description, idempotencyKey)
	if intent := args.Get(0); intent != nil {
		return intent.(*payment.Intent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentGateway) ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (*payment.Confirmation, error) {
	args := m.Called(ctx, intentID, paymentMethodID)
	if confirmation := args.Get(0); confirmation != nil {
		return confirmation.(*payment.Confirmation), args.Error(1)
	}
	return nil, args.Error(1)
}

// noopEvents satisfies both event publisher interfaces.
type noopEvents struct{}

func (noopEvents) CartUpdated(context.Context, *domain.Cart)               {}
func (noopEvents) CartCleared(context.Context, string)                     {}
func (noopEvents) CheckoutCompleted(context.Context, *domain.CheckoutSession) {}
func (noopEvents) OrderCreated(context.Context, *domain.Order)             {}
