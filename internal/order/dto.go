package order

// LineRequest payload of one order line.
// swagger:model LineRequest
type LineRequest struct {
	ProductID string `json:"menuItemId" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"2"`
	// Optional; resolved from the menu when omitted.
	UnitPrice int64 `json:"price,omitempty" example:"20000"`
}

// CreateOrderRequest payload of order creation.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	TableID string        `json:"tableId" example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Items   []LineRequest `json:"items"`
}

// UpdateOrderRequest replaces the line collection of an open order.
// swagger:model UpdateOrderRequest
type UpdateOrderRequest struct {
	Items []LineRequest `json:"items"`
}

// CancelOrderRequest payload of cancellation.
// swagger:model CancelOrderRequest
type CancelOrderRequest struct {
	Reason string `json:"reason" example:"customer left"`
}

// ToLines converts request lines into order lines.
func ToLines(in []LineRequest) []Line {
	out := make([]Line, 0, len(in))
	for _, it := range in {
		out = append(out, Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

// FromLines converts order lines into request lines.
func FromLines(in []Line) []LineRequest {
	out := make([]LineRequest, 0, len(in))
	for _, l := range in {
		out = append(out, LineRequest{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return out
}
