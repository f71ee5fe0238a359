package order

import (
	"errors"
	"strings"
	"time"

	"github.com/MikeMC777/cafe-pos/internal/money"
)

var (
	ErrTerminal      = errors.New("order is already paid or cancelled")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrInvalidLine   = errors.New("invalid order line")
	ErrOpenExists    = errors.New("table already has an open order")
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no further change may target an order in this status.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// ParseStatus accepts any casing and the "canceled" spelling.
func ParseStatus(v string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "PENDING":
		return StatusPending, nil
	case "PAID":
		return StatusPaid, nil
	case "CANCELLED", "CANCELED":
		return StatusCancelled, nil
	}
	return "", ErrInvalidStatus
}

type Order struct {
	ID           string     `json:"id"`
	TableID      string     `json:"tableId"`
	Status       Status     `json:"status"`
	Total        int64      `json:"total"`
	Lines        []Line     `json:"items"`
	CancelReason string     `json:"cancelReason,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`
	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
}

// Line is a persisted order line. UnitPrice is the price recorded when the
// line was written, in integer currency units.
type Line struct {
	ID        string `json:"id,omitempty"`
	ProductID string `json:"menuItemId"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"price"`
}

// Total is Σ UnitPrice × Quantity; an empty collection totals 0.
func Total(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += money.Subtotal(l.UnitPrice, l.Quantity)
	}
	return sum
}
