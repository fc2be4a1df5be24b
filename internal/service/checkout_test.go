package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/payment"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/repository/memory"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

type checkoutFixture struct {
	svc      *CheckoutService
	carts    *mockCartRepository
	orders   *mockOrderRepository
	gateway  *mockPaymentGateway
	sessions *memory.CheckoutSessionStore
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		carts:    new(mockCartRepository),
		orders:   new(mockOrderRepository),
		gateway:  new(mockPaymentGateway),
		sessions: memory.NewCheckoutSessionStore(),
	}
	f.svc = NewCheckoutService(f.carts, f.sessions, f.orders, f.gateway, noopEvents{}, CheckoutConfig{
		Currency:    "ZAR",
		DeliveryFee: 5000,
		SessionTTL:  time.Hour,
	}, testLogger())
	return f
}

func twoAppleCart() *domain.Cart {
	return storedCart("user-1",
		domain.CartItem{ProductID: "p-1", Name: "Apples", Price: 1000, Quantity: 2},
	)
}

func readyIntent() *payment.Intent {
	return &payment.Intent{
		ID:           "pi_1",
		ClientSecret: "pi_1_secret",
		Status:       payment.IntentStatusRequiresPayment,
	}
}

func TestCheckoutService_Initialize(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(twoAppleCart(), nil)
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(readyIntent(), nil)

	session, err := f.svc.Initialize(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusReady, session.Status)
	assert.Equal(t, int64(2000), session.SubtotalAmount)
	assert.Equal(t, int64(5000), session.DeliveryFee)
	assert.Equal(t, int64(7000), session.TotalAmount)
	assert.Equal(t, "pi_1_secret", session.ClientSecret)
	assert.Equal(t, "pi_1", session.PaymentIntentID)
	require.Len(t, session.Items, 1)
	assert.Equal(t, 2, session.Items[0].Quantity)
}

func TestCheckoutService_Initialize_EmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(storedCart("user-1"), nil)

	_, err := f.svc.Initialize(context.Background(), "user-1")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.gateway.AssertNotCalled(t, "CreateIntent",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_Initialize_CreatesIntentOnce(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(twoAppleCart(), nil)
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(readyIntent(), nil)

	first, err := f.svc.Initialize(context.Background(), "user-1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := f.svc.Initialize(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	}

	f.gateway.AssertNumberOfCalls(t, "CreateIntent", 1)
}

func TestCheckoutService_Initialize_GatewayFailureAllowsRetry(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(twoAppleCart(), nil)
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(nil, apperrors.ServiceUnavailable("payment gateway unreachable")).Once()
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(readyIntent(), nil).Once()

	_, err := f.svc.Initialize(context.Background(), "user-1")
	require.Error(t, err)

	session, err := f.svc.Initialize(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusReady, session.Status)
}

func TestCheckoutService_SubmitPayment(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(twoAppleCart(), nil)
	f.carts.On("Delete", mock.Anything, "user-1").Return(nil)
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(readyIntent(), nil)
	f.gateway.On("ConfirmIntent", mock.Anything, "pi_1", "pm_card").
		Return(&payment.Confirmation{ID: "pi_1", Status: payment.IntentStatusSucceeded}, nil)

	var created *domain.Order
	f.orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Order)
	}).Return(nil)

	session, err := f.svc.Initialize(context.Background(), "user-1")
	require.NoError(t, err)

	result, err := f.svc.SubmitPayment(context.Background(), "user-1", session.ID, "pm_card")

	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusSucceeded, result.Status)
	assert.NotEmpty(t, result.OrderID)

	require.NotNil(t, created)
	assert.Equal(t, result.OrderID, created.ID)
	assert.Equal(t, "pi_1", created.PaymentID)
	assert.Equal(t, int64(2000), created.SubtotalAmount)
	assert.Equal(t, int64(7000), created.TotalAmount)
	assert.Equal(t, domain.OrderStatusPlaced, created.Status)
	require.Len(t, created.Items, 1)

	f.carts.AssertCalled(t, "Delete", mock.Anything, "user-1")
}

func TestCheckoutService_SubmitPayment_DeclineReturnsToReady(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(twoAppleCart(), nil)
	f.carts.On("Delete", mock.Anything, "user-1").Return(nil)
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(readyIntent(), nil)
	f.gateway.On("ConfirmIntent", mock.Anything, "pi_1", "pm_bad").
		Return(nil, apperrors.PaymentDeclined("your card was declined")).Once()
	f.gateway.On("ConfirmIntent", mock.Anything, "pi_1", "pm_good").
		Return(&payment.Confirmation{ID: "pi_1", Status: payment.IntentStatusSucceeded}, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)

	session, err := f.svc.Initialize(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.svc.SubmitPayment(context.Background(), "user-1", session.ID, "pm_bad")
	assert.ErrorIs(t, err, apperrors.ErrPaymentDeclined)

	afterDecline, err := f.svc.Get(context.Background(), "user-1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusReady, afterDecline.Status)
	assert.NotEmpty(t, afterDecline.FailureReason)

	result, err := f.svc.SubmitPayment(context.Background(), "user-1", session.ID, "pm_good")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusSucceeded, result.Status)
}

func TestCheckoutService_SubmitPayment_OrderFailureIsDistinct(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(twoAppleCart(), nil)
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(readyIntent(), nil)
	f.gateway.On("ConfirmIntent", mock.Anything, "pi_1", "pm_card").
		Return(&payment.Confirmation{ID: "pi_1", Status: payment.IntentStatusSucceeded}, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	session, err := f.svc.Initialize(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.svc.SubmitPayment(context.Background(), "user-1", session.ID, "pm_card")

	assert.ErrorIs(t, err, apperrors.ErrOrderNotRecorded)
	assert.NotErrorIs(t, err, apperrors.ErrPaymentDeclined)

	// The payment went through, so the cart must not be cleared.
	f.carts.AssertNotCalled(t, "Delete", mock.Anything, "user-1")

	after, err := f.svc.Get(context.Background(), "user-1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusReady, after.Status)
}

func TestCheckoutService_SubmitPayment_CartChangedSinceInit(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(twoAppleCart(), nil).Once()
	f.carts.On("Get", mock.Anything, "user-1").Return(storedCart("user-1",
		domain.CartItem{ProductID: "p-1", Name: "Apples", Price: 1000, Quantity: 5},
	), nil).Once()
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(readyIntent(), nil)

	session, err := f.svc.Initialize(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.svc.SubmitPayment(context.Background(), "user-1", session.ID, "pm_card")

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.gateway.AssertNotCalled(t, "ConfirmIntent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_SubmitPayment_AlreadyCompleted(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(twoAppleCart(), nil)
	f.carts.On("Delete", mock.Anything, "user-1").Return(nil)
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(readyIntent(), nil)
	f.gateway.On("ConfirmIntent", mock.Anything, "pi_1", "pm_card").
		Return(&payment.Confirmation{ID: "pi_1", Status: payment.IntentStatusSucceeded}, nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)

	session, err := f.svc.Initialize(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.svc.SubmitPayment(context.Background(), "user-1", session.ID, "pm_card")
	require.NoError(t, err)

	_, err = f.svc.SubmitPayment(context.Background(), "user-1", session.ID, "pm_card")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	f.gateway.AssertNumberOfCalls(t, "ConfirmIntent", 1)
}

func TestCheckoutService_Get_WrongUser(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(twoAppleCart(), nil)
	f.gateway.On("CreateIntent", mock.Anything, int64(7000), "ZAR", mock.Anything, mock.Anything).
		Return(readyIntent(), nil)

	session, err := f.svc.Initialize(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), "user-2", session.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCheckoutService_Abandoned(t *testing.T) {
	f := newCheckoutFixture()
	f.carts.On("Get", mock.Anything, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

	ready := &domain.CheckoutSession{UserID: "user-1", Status: domain.CheckoutStatusReady}
	assert.True(t, f.svc.Abandoned(context.Background(), ready),
		"an empty cart mid-checkout means the user abandoned it")

	succeeded := &domain.CheckoutSession{UserID: "user-1", Status: domain.CheckoutStatusSucceeded}
	assert.False(t, f.svc.Abandoned(context.Background(), succeeded),
		"a cart emptied by a successful checkout is not abandonment")
}
