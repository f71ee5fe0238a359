// Package events carries order and table changes between the POS backend and
// connected terminals over a RabbitMQ topic exchange.
package events

import "context"

const Exchange = "pos.events"

const (
	KeyOrderCreated   = "order.created"
	KeyOrderUpdated   = "order.updated"
	KeyOrderPaid      = "order.paid"
	KeyOrderCancelled = "order.cancelled"
	KeyTableUpdated   = "table.updated"
)

// TableChange is the body of table.updated. Name is empty when only the
// availability changed.
type TableChange struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	IsAvailable bool   `json:"isAvailable"`
}

type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}

// Nop discards everything. Used when RABBITMQ_URL is unset.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

// Delivery is one message handed to a Handler.
type Delivery struct {
	Key  string
	Body []byte
}

type Handler func(ctx context.Context, d Delivery) error
