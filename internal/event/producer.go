package event

import (
	"context"
	"log/slog"

	"github.com/macdee501/web-grocery-delivery-version-1/internal/domain"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/kafka"
	"github.com/macdee501/web-grocery-delivery-version-1/pkg/logger"
)

const source = "storefront-service"

// Topics published by the storefront.
var (
	TopicCartUpdated       = kafka.Topic("cart", "updated")
	TopicCartCleared       = kafka.Topic("cart", "cleared")
	TopicCheckoutCompleted = kafka.Topic("checkout", "completed")
	TopicOrderCreated      = kafka.Topic("order", "created")
)

// Publisher is the subset of the Kafka producer the storefront uses.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// Producer publishes storefront domain events. Publish failures are logged
// and swallowed: events are informational and must never fail a request.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(publisher Publisher, log *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: log}
}

// CartUpdated announces a cart mutation with the new totals.
func (p *Producer) CartUpdated(ctx context.Context, cart *domain.Cart) {
	p.publish(ctx, TopicCartUpdated, "cart.updated", cart.UserID, "cart", map[string]any{
		"user_id":     cart.UserID,
		"total_items": cart.TotalItems(),
		"total_price": cart.TotalPrice(),
		"currency":    cart.Currency,
	})
}

// CartCleared announces that a user's cart was emptied.
func (p *Producer) CartCleared(ctx context.Context, userID string) {
	p.publish(ctx, TopicCartCleared, "cart.cleared", userID, "cart", map[string]any{
		"user_id": userID,
	})
}

// CheckoutCompleted announces a successful checkout.
func (p *Producer) CheckoutCompleted(ctx context.Context, session *domain.CheckoutSession) {
	p.publish(ctx, TopicCheckoutCompleted, "checkout.completed", session.ID, "checkout_session", map[string]any{
		"session_id":   session.ID,
		"user_id":      session.UserID,
		"order_id":     session.OrderID,
		"total_amount": session.TotalAmount,
		"currency":     session.Currency,
	})
}

// OrderCreated announces a newly persisted order.
func (p *Producer) OrderCreated(ctx context.Context, order *domain.Order) {
	p.publish(ctx, TopicOrderCreated, "order.created", order.ID, "order", map[string]any{
		"order_id":     order.ID,
		"user_id":      order.UserID,
		"payment_id":   order.PaymentID,
		"total_amount": order.TotalAmount,
		"currency":     order.Currency,
		"item_count":   len(order.Items),
	})
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) {
	evt, err := kafka.NewEvent(eventType, aggregateID, aggregateType, source, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}

	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		evt.WithCorrelationID(cid)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish event",
			slog.String("topic", topic),
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
