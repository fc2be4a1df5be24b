package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

const cartKeyPrefix = "cart:"

// CartRepository stores carts as JSON blobs in Redis, one key per user.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a cart repository. ttl bounds how long an idle
// cart is kept; every Save refreshes it.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return cartKeyPrefix + userID
}

// Get retrieves the cart for a user.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, apperrors.Wrap(err, "get cart")
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal cart")
	}
	return &cart, nil
}

// Save overwrites the stored cart and refreshes its TTL.
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if cart.UserID == "" {
		return apperrors.InvalidInput("cart user id is required")
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return apperrors.Wrap(err, "marshal cart")
	}

	if err := r.client.Set(ctx, cartKey(cart.UserID), data, r.ttl).Err(); err != nil {
		return apperrors.Wrap(err, fmt.Sprintf("save cart for user %s", cart.UserID))
	}
	return nil
}

// Delete removes the stored cart. Missing keys are not an error.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return apperrors.Wrap(err, fmt.Sprintf("delete cart for user %s", userID))
	}
	return nil
}
