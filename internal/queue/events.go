package queue

import (
	"context"
	"time"
)

// Order lifecycle events published to downstream consumers (mail,
// fulfillment). Routing keys follow "order.<event>" on the topic exchange.
const (
	EventsExchange = "storefront.events"

	OrderCreatedKey   = "order.created"
	OrderPaidKey      = "order.paid"
	OrderDeliveredKey = "order.delivered"
)

type OrderEvent struct {
	Event       string    `json:"event"`
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      int64     `json:"userId"`
	TotalPrice  float64   `json:"totalPrice"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// PublishOrderEvent is a no-op when the queue is not configured, so order
// operations never fail because the broker is down in development.
func PublishOrderEvent(ctx context.Context, c *Client, routingKey string, event OrderEvent) error {
	if c == nil {
		return nil
	}
	event.Event = routingKey
	return c.PublishJSON(ctx, EventsExchange, routingKey, event)
}
