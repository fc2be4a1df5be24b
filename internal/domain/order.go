package domain

import "time"

// Order status constants. Orders are created "placed" once payment has been
// captured; fulfillment transitions beyond that are out of scope here.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
)

// Order is the persisted record created only after payment capture. It links
// the payment identifier, the item snapshot, and the buyer.
type Order struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	PaymentID      string      `json:"payment_id"`
	Status         string      `json:"status"`
	Items          []OrderItem `json:"items"`
	SubtotalAmount int64       `json:"subtotal_amount"`
	DeliveryFee    int64       `json:"delivery_fee"`
	DiscountAmount int64       `json:"discount_amount"`
	TotalAmount    int64       `json:"total_amount"`
	Currency       string      `json:"currency"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OrderItem is one line of the order's item snapshot.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// CalculateSubtotal computes price*quantity over the order items.
func (o *Order) CalculateSubtotal() int64 {
	var subtotal int64
	for _, item := range o.Items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}
