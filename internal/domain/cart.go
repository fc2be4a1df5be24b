package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Cart holds a user's shopping cart. Items keep insertion order, which is
// also the display order.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CartItem is a single product line in the cart. Name, price, and image are
// captured at add-time and not live-refreshed from the catalog.
type CartItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// TotalItems returns the sum of quantities. Recomputed on every call so it
// can never drift from the item list.
func (c *Cart) TotalItems() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// TotalPrice returns the sum of price*quantity over all items, in minor
// currency units. Recomputed on every call.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// FindItemIndex returns the index of the item with the given product ID, or
// -1 if the cart does not contain it. At most one item per product ID exists.
func (c *Cart) FindItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Fingerprint returns a digest of the ordered (product, price, quantity)
// triples. Checkout uses it to detect cart mutations between payment intent
// creation and submission.
func (c *Cart) Fingerprint() string {
	var b strings.Builder
	for _, item := range c.Items {
		fmt.Fprintf(&b, "%s:%d:%d;", item.ProductID, item.Price, item.Quantity)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
