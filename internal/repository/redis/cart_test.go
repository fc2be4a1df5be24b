package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	apperrors "github.com/macdee501/web-grocery-delivery-version-1/pkg/errors"
)

func newTestRepo(t *testing.T) *CartRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCartRepository(client, time.Hour)
}

func TestCartRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	cart := &domain.Cart{
		ID:     "cart-1",
		UserID: "user-1",
		Items: []domain.CartItem{
			{ProductID: "p-2", Name: "Bananas", Price: 799, Quantity: 3, ImageURL: "https://img/b.png"},
			{ProductID: "p-1", Name: "Apples", Price: 1000, Quantity: 1},
		},
		Currency:  "ZAR",
		CreatedAt: now,
		UpdatedAt: now,
	}

	require.NoError(t, repo.Save(ctx, cart))

	loaded, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)

	// Everything survives the round trip, including item order.
	assert.Equal(t, cart.ID, loaded.ID)
	assert.Equal(t, cart.Items, loaded.Items)
	assert.Equal(t, cart.TotalItems(), loaded.TotalItems())
	assert.Equal(t, cart.TotalPrice(), loaded.TotalPrice())
	assert.Equal(t, cart.Fingerprint(), loaded.Fingerprint())
}

func TestCartRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_SaveRequiresUser(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Save(context.Background(), &domain.Cart{ID: "cart-1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cart := &domain.Cart{ID: "cart-1", UserID: "user-1", Currency: "ZAR"}
	require.NoError(t, repo.Save(ctx, cart))
	require.NoError(t, repo.Delete(ctx, "user-1"))

	_, err := repo.Get(ctx, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, repo.Delete(ctx, "user-1"))
}
