package domain

import "time"

// Checkout session status constants.
const (
	CheckoutStatusInitializing = "initializing"
	CheckoutStatusReady        = "ready"
	CheckoutStatusSubmitting   = "submitting"
	CheckoutStatusSucceeded    = "succeeded"
	CheckoutStatusFailed       = "failed"
)

// CheckoutSession is the transient state of one checkout attempt. Sessions
// live in memory only: a restart discards them and the payment intent is
// abandoned on the gateway side.
type CheckoutSession struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	Status          string         `json:"status"`
	Items           []CheckoutItem `json:"items"`
	SubtotalAmount  int64          `json:"subtotal_amount"`
	DeliveryFee     int64          `json:"delivery_fee"`
	DiscountAmount  int64          `json:"discount_amount"`
	TotalAmount     int64          `json:"total_amount"`
	Currency        string         `json:"currency"`
	ClientSecret    string         `json:"client_secret,omitempty"`
	PaymentIntentID string         `json:"payment_intent_id,omitempty"`
	OrderID         string         `json:"order_id,omitempty"`
	FailureReason   string         `json:"failure_reason,omitempty"`
	CartFingerprint string         `json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ExpiresAt       time.Time      `json:"expires_at"`
}

// CheckoutItem is a cart line frozen into the session at initialization.
type CheckoutItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// CalculateSubtotal computes price*quantity over the frozen items.
func (s *CheckoutSession) CalculateSubtotal() int64 {
	var subtotal int64
	for _, item := range s.Items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}

// CalculateTotal computes subtotal - discount + delivery fee.
func (s *CheckoutSession) CalculateTotal() int64 {
	return s.SubtotalAmount - s.DiscountAmount + s.DeliveryFee
}

// IsTerminal reports whether the session reached a final state.
func (s *CheckoutSession) IsTerminal() bool {
	return s.Status == CheckoutStatusSucceeded || s.Status == CheckoutStatusFailed
}

// IsExpired reports whether the session passed its expiry time.
func (s *CheckoutSession) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// AbandonedByEmptyCart reports whether an empty cart should send the user
// back to the cart page. A succeeded session empties the cart as a
// consequence of order creation, which must not be mistaken for abandonment.
func (s *CheckoutSession) AbandonedByEmptyCart(itemCount int) bool {
	return itemCount == 0 && s.Status != CheckoutStatusSucceeded
}
