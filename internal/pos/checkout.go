package pos

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/MikeMC777/cafe-pos/internal/order"
)

// Checkout marks the open order of the current table PAID.
func (s *Session) Checkout(ctx context.Context) error {
	return s.finish(ctx, order.StatusPaid, "")
}

// Cancel marks the open order of the current table CANCELLED with reason.
func (s *Session) Cancel(ctx context.Context, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return s.reject("A cancel reason is required.")
	}
	return s.finish(ctx, order.StatusCancelled, reason)
}

// finish flushes the pending sync so the order carries the latest lines, then
// applies the terminal transition. On success the cart is cleared and the
// table gets a fresh binding, so nothing queued for the closed order can
// reach it. On failure order and cart stay as they were.
func (s *Session) finish(ctx context.Context, status order.Status, reason string) error {
	s.mu.Lock()
	if s.binding == nil {
		s.mu.Unlock()
		return s.reject("Select a table first.")
	}
	s.mu.Unlock()

	if err := s.Flush(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	b := s.binding
	if b.state != OrderOpen {
		s.mu.Unlock()
		return s.reject("There is no order to %s.", verb(status))
	}
	orderID := b.orderID
	s.mu.Unlock()

	s.writeMu.Lock()
	_, err := s.orders.SetOrderStatus(ctx, orderID, status, reason)
	s.writeMu.Unlock()
	if err != nil {
		return s.fail(&BackendError{Op: "set order status", Err: err}, capitalize(verb(status))+" failed. Please try again.")
	}

	s.mu.Lock()
	b.close(orderID)
	s.dropPendingLocked(b)
	if s.binding == b {
		s.binding = newBinding(b.tableID, b.epoch, false)
		s.cart.Clear()
	}
	s.mu.Unlock()

	s.log.Info("order closed", zap.String("order_id", orderID), zap.String("status", string(status)))
	if s.manageAvailability {
		if _, err := s.tables.SetTableAvailability(ctx, b.tableID, true); err != nil {
			s.log.Warn("set table availability", zap.String("table_id", b.tableID), zap.Error(err))
		}
	}
	if err := s.refreshTables(ctx); err != nil {
		s.log.Warn("refresh tables", zap.Error(err))
	}

	if status == order.StatusPaid {
		s.info("Order %s paid.", orderID)
	} else {
		s.info("Order %s cancelled.", orderID)
	}
	return nil
}

func verb(status order.Status) string {
	if status == order.StatusPaid {
		return "pay"
	}
	return "cancel"
}

func capitalize(v string) string {
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}
