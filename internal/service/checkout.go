package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/payment"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/repository"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

// PaymentGateway abstracts the payment provider's intent API.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, description, idempotencyKey string) (*payment.Intent, error)
	ConfirmIntent(ctx context.Context, intentID, paymentMethodID string) (*payment.Confirmation, error)
}

// CheckoutEventPublisher receives checkout and order lifecycle notifications.
type CheckoutEventPublisher interface {
	CheckoutCompleted(ctx context.Context, session *domain.CheckoutSession)
	OrderCreated(ctx context.Context, order *domain.Order)
	CartCleared(ctx context.Context, userID string)
}

// CheckoutConfig carries the pricing knobs for checkout.
type CheckoutConfig struct {
	Currency    string
	DeliveryFee int64
	SessionTTL  time.Duration
}

// CheckoutService orchestrates the checkout flow: it freezes the cart into a
// session, creates the payment intent exactly once, confirms payment, and
// records the order before clearing the cart.
type CheckoutService struct {
	carts    repository.CartRepository
	sessions repository.CheckoutSessionStore
	orders   repository.OrderRepository
	gateway  PaymentGateway
	events   CheckoutEventPublisher
	cfg      CheckoutConfig
	logger   *slog.Logger
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(
	carts repository.CartRepository,
	sessions repository.CheckoutSessionStore,
	orders repository.OrderRepository,
	gateway PaymentGateway,
	events CheckoutEventPublisher,
	cfg CheckoutConfig,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		sessions: sessions,
		orders:   orders,
		gateway:  gateway,
		events:   events,
		cfg:      cfg,
		logger:   logger,
	}
}

// Initialize starts a checkout for the user's current cart. The cart is
// frozen into the session and a payment intent is created on the gateway.
// If the user already has a live session, that session is returned unchanged
// and no second intent is created, no matter how many times Initialize is
// called.
func (s *CheckoutService) Initialize(ctx context.Context, userID string) (*domain.CheckoutSession, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, apperrors.InvalidInput("cart is empty")
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	now := time.Now().UTC()
	candidate := &domain.CheckoutSession{
		ID:              uuid.New().String(),
		UserID:          userID,
		Status:          domain.CheckoutStatusInitializing,
		Items:           freezeItems(cart.Items),
		DeliveryFee:     s.cfg.DeliveryFee,
		DiscountAmount:  0,
		Currency:        s.cfg.Currency,
		CartFingerprint: cart.Fingerprint(),
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiresAt:       now.Add(s.cfg.SessionTTL),
	}
	candidate.SubtotalAmount = candidate.CalculateSubtotal()
	candidate.TotalAmount = candidate.CalculateTotal()

	session, created, err := s.sessions.Claim(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if !created {
		return session, nil
	}

	intent, err := s.gateway.CreateIntent(ctx,
		session.TotalAmount,
		session.Currency,
		fmt.Sprintf("grocery order for user %s", userID),
		session.ID,
	)
	if err != nil {
		// Free the slot so the user can retry initialization.
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to release checkout session",
				slog.String("session_id", session.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, err
	}

	session.ClientSecret = intent.ClientSecret
	session.PaymentIntentID = intent.ID
	session.Status = domain.CheckoutStatusReady
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "checkout session initialized",
		slog.String("session_id", session.ID),
		slog.String("user_id", userID),
		slog.Int64("total_amount", session.TotalAmount),
	)
	return session, nil
}

// Get returns a checkout session, enforcing ownership. Expired sessions
// report gone so the UI restarts the flow.
func (s *CheckoutService) Get(ctx context.Context, userID, sessionID string) (*domain.CheckoutSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.NotFound("checkout session", sessionID)
	}
	if session.IsExpired() && !session.IsTerminal() {
		return nil, apperrors.Gone("checkout session expired")
	}
	return session, nil
}

// Abandoned reports whether an empty cart should bounce the user off the
// checkout page. A cart emptied by a successful checkout does not count as
// abandonment.
func (s *CheckoutService) Abandoned(ctx context.Context, session *domain.CheckoutSession) bool {
	cart, err := s.carts.Get(ctx, session.UserID)
	if err != nil {
		return session.AbandonedByEmptyCart(0)
	}
	return session.AbandonedByEmptyCart(cart.TotalItems())
}

// SubmitPayment confirms the session's payment intent and, on capture,
// records the order and clears the cart. A declined payment returns the
// session to ready so the user can resubmit. If the payment is captured but
// the order cannot be recorded, the error is reported distinctly and the
// cart is left untouched so support can reconcile.
func (s *CheckoutService) SubmitPayment(ctx context.Context, userID, sessionID, paymentMethodID string) (*domain.CheckoutSession, error) {
	if paymentMethodID == "" {
		return nil, apperrors.InvalidInput("payment method is required")
	}

	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case domain.CheckoutStatusReady:
		// Proceed.
	case domain.CheckoutStatusSubmitting:
		return nil, apperrors.Conflict("payment already in progress")
	case domain.CheckoutStatusSucceeded:
		return nil, apperrors.Conflict("checkout already completed")
	default:
		return nil, apperrors.Conflict("checkout session is not ready for payment")
	}

	// The session's amounts were quoted against the cart as it stood at
	// initialization. A cart that changed since then must be re-quoted.
	cart, err := s.carts.Get(ctx, userID)
	if err != nil || cart.Fingerprint() != session.CartFingerprint {
		return nil, apperrors.Conflict("cart changed since checkout started, restart checkout")
	}

	session.Status = domain.CheckoutStatusSubmitting
	session.FailureReason = ""
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	confirmation, err := s.gateway.ConfirmIntent(ctx, session.PaymentIntentID, paymentMethodID)
	if err != nil {
		s.recordFailure(ctx, session, err.Error())
		return nil, err
	}
	if confirmation.Status != payment.IntentStatusSucceeded {
		declineErr := apperrors.PaymentDeclined("payment was not completed")
		s.recordFailure(ctx, session, declineErr.Message)
		return nil, declineErr
	}

	order := s.buildOrder(session, confirmation.ID)
	if err := s.orders.Create(ctx, order); err != nil {
		// Payment is captured. Leave the cart alone and surface a distinct
		// error so nobody retries the charge against a consumed intent.
		s.logger.ErrorContext(ctx, "order creation failed after payment capture",
			slog.String("session_id", session.ID),
			slog.String("payment_intent_id", session.PaymentIntentID),
			slog.String("error", err.Error()),
		)
		s.recordFailure(ctx, session, "payment captured but order was not recorded")
		return nil, apperrors.OrderNotRecorded("your payment went through but the order could not be recorded, contact support")
	}

	session.OrderID = order.ID
	session.Status = domain.CheckoutStatusSucceeded
	session.FailureReason = ""
	if err := s.sessions.Update(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "failed to finalize checkout session",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	// The cart empties here as a consequence of success, not abandonment.
	if err := s.carts.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	} else {
		s.events.CartCleared(ctx, userID)
	}

	s.events.OrderCreated(ctx, order)
	s.events.CheckoutCompleted(ctx, session)

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", session.ID),
		slog.String("order_id", order.ID),
		slog.Int64("total_amount", session.TotalAmount),
	)
	return session, nil
}

// recordFailure returns the session to ready with the failure noted, so the
// user can correct their payment details and try again.
func (s *CheckoutService) recordFailure(ctx context.Context, session *domain.CheckoutSession, reason string) {
	session.Status = domain.CheckoutStatusReady
	session.FailureReason = reason
	if err := s.sessions.Update(ctx, session); err != nil {
		s.logger.ErrorContext(ctx, "failed to record checkout failure",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CheckoutService) buildOrder(session *domain.CheckoutSession, paymentID string) *domain.Order {
	order := &domain.Order{
		ID:             uuid.New().String(),
		UserID:         session.UserID,
		PaymentID:      paymentID,
		Status:         domain.OrderStatusPlaced,
		Items:          make([]domain.OrderItem, 0, len(session.Items)),
		SubtotalAmount: session.SubtotalAmount,
		DeliveryFee:    session.DeliveryFee,
		DiscountAmount: session.DiscountAmount,
		TotalAmount:    session.TotalAmount,
		Currency:       session.Currency,
	}
	for _, item := range session.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}
	return order
}

func freezeItems(items []domain.CartItem) []domain.CheckoutItem {
	frozen := make([]domain.CheckoutItem, 0, len(items))
	for _, item := range items {
		frozen = append(frozen, domain.CheckoutItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}
	return frozen
}
