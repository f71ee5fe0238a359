package order

import "context"

// Backend is the remote order resource as seen by a POS session. Transport is
// up to the implementation (REST client, direct database, in-memory fake).
type Backend interface {
	// CreateOrder allocates a PENDING order for tableID holding lines.
	CreateOrder(ctx context.Context, tableID string, lines []Line) (*Order, error)
	// UpdateOrderLines replaces the lines and recomputes the total. Status is untouched.
	UpdateOrderLines(ctx context.Context, orderID string, lines []Line) (*Order, error)
	// GetOpenOrderForTable returns the non-terminal order of tableID, or nil when none.
	GetOpenOrderForTable(ctx context.Context, tableID string) (*Order, error)
	// SetOrderStatus transitions an order to PAID or CANCELLED.
	SetOrderStatus(ctx context.Context, orderID string, status Status, reason string) (*Order, error)
}
