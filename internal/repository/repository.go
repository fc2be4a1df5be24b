package repository

import (
	"context"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
)

// CartRepository persists cart snapshots keyed by user. The serialized form
// must round-trip exactly: item order, ids, names, prices, images, and
// quantities all survive a save/load cycle.
type CartRepository interface {
	// Get retrieves the cart for a user. Returns apperrors.ErrNotFound when
	// the user has no cart.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save overwrites the stored cart for cart.UserID.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the stored cart for the user. Deleting a missing cart
	// is not an error.
	Delete(ctx context.Context, userID string) error
}

// CheckoutSessionStore holds transient checkout sessions. Implementations
// are in-memory by design: sessions do not survive a restart.
type CheckoutSessionStore interface {
	// Claim installs the session for its user unless the user already has a
	// live (non-terminal, non-expired) one. It returns the session that is
	// now active for the user and whether the given session was installed.
	// This is the one-shot latch that prevents duplicate payment intents.
	Claim(ctx context.Context, session *domain.CheckoutSession) (*domain.CheckoutSession, bool, error)

	// GetByID retrieves a session by its ID. Returns apperrors.ErrNotFound
	// for unknown or swept sessions.
	GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error)

	// Update replaces a stored session. Returns apperrors.ErrNotFound when
	// the session is no longer stored.
	Update(ctx context.Context, session *domain.CheckoutSession) error

	// Delete discards a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}

// OrderRepository persists orders and their item snapshots.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error)
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Limit    int
	Offset   int
}

// CatalogRepository reads the product catalog. The storefront never writes
// to it; catalog management happens elsewhere.
type CatalogRepository interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListActiveOffers(ctx context.Context) ([]domain.Offer, error)
}
