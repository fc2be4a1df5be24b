package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	"github.com/macdee501/web-grocery-delivery-version-1/internal/repository"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

// CartEventPublisher receives cart lifecycle notifications.
type CartEventPublisher interface {
	CartUpdated(ctx context.Context, cart *domain.Cart)
	CartCleared(ctx context.Context, userID string)
}

// CartItemInput carries the add-to-cart payload. Name, price, and image are
// snapshotted into the cart line at add time.
type CartItemInput struct {
	ProductID string
	Name      string
	Price     int64
	Quantity  int
	ImageURL  string
}

// CartService manages per-user shopping carts.
type CartService struct {
	repo     repository.CartRepository
	events   CartEventPublisher
	currency string
	logger   *slog.Logger
}

// NewCartService creates a cart service.
func NewCartService(repo repository.CartRepository, events CartEventPublisher, currency string, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		events:   events,
		currency: currency,
		logger:   logger,
	}
}

// GetCart returns the user's cart. A user without a stored cart gets an
// empty one; nothing is persisted until the first mutation.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.emptyCart(userID), nil
		}
		return nil, err
	}
	return cart, nil
}

// AddItem adds a product to the cart. Adding a product already in the cart
// merges into the existing line: the quantity is incremented and the stored
// name, price, and image are kept. The cart never holds two lines for the
// same product.
func (s *CartService) AddItem(ctx context.Context, userID string, input CartItemInput) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItemIndex(input.ProductID); idx >= 0 {
		cart.Items[idx].Quantity += input.Quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: input.ProductID,
			Name:      input.Name,
			Price:     input.Price,
			Quantity:  input.Quantity,
			ImageURL:  input.ImageURL,
		})
	}

	return s.save(ctx, cart)
}

// UpdateQuantity sets the quantity of an existing cart line. Quantities
// below one are rejected; removal is an explicit separate operation.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be at least 1")
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}
	cart.Items[idx].Quantity = quantity

	return s.save(ctx, cart)
}

// RemoveItem deletes a line from the cart regardless of its quantity.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	return s.save(ctx, cart)
}

// ClearCart removes the user's stored cart entirely.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.events.CartCleared(ctx, userID)
	return nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	cart.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	s.events.CartUpdated(ctx, cart)
	return cart, nil
}

func (s *CartService) emptyCart(userID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     []domain.CartItem{},
		Currency:  s.currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
