package pos

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/cafe-pos/internal/cart"
	"github.com/MikeMC777/cafe-pos/internal/order"
)

const msgSyncFailed = "Could not sync the order. Edit the cart to retry."

// syncRequest is one debounced write of the full cart for a binding.
type syncRequest struct {
	b     *binding
	lines []cart.Line
	seq   uint64 // zero until issued

	create bool
	cancel context.CancelFunc
}

// ScheduleSync debounces a write of lines to the current table's order. Only
// the last state scheduled within the debounce window is sent.
func (s *Session) ScheduleSync(lines []cart.Line) error {
	s.mu.Lock()
	err := s.scheduleLocked(lines)
	s.mu.Unlock()
	return s.report(err)
}

// Flush issues the pending sync now and waits until every issued write has
// finished. Stale writes are not an error.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	req := s.takeLocked()
	s.mu.Unlock()

	var err error
	if req != nil {
		err = s.write(ctx, req)
	}

	s.mu.Lock()
	for s.writes > 0 {
		s.idle.Wait()
	}
	s.mu.Unlock()

	if errors.Is(err, ErrStaleResult) {
		return nil
	}
	return err
}

func (s *Session) scheduleLocked(lines []cart.Line) error {
	if s.binding == nil {
		return validation("Select a table first.")
	}
	if s.closed {
		return validation("Session is closed.")
	}
	s.stopTimerLocked()
	s.pending = &syncRequest{b: s.binding, lines: lines}
	gen := s.timerGen
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen) })
	return nil
}

func (s *Session) stopTimerLocked() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// dropPendingLocked forgets a not yet issued write for b.
func (s *Session) dropPendingLocked(b *binding) {
	if s.pending != nil && s.pending.b == b {
		s.pending = nil
		s.stopTimerLocked()
	}
}

// takeLocked issues the pending request: it gets the next sequence number,
// becomes the latest write of its binding, and cancels an in-flight update of
// the same binding. An in-flight create is never cancelled since the order
// it allocates must not be lost.
func (s *Session) takeLocked() *syncRequest {
	req := s.pending
	if req == nil {
		return nil
	}
	s.pending = nil
	s.stopTimerLocked()

	s.syncSeq++
	req.seq = s.syncSeq
	req.b.latestSeq = req.seq
	s.writes++
	req.b.writes++
	s.tableWrites[req.b.tableID]++

	if in := s.inflight; in != nil && in.b == req.b && !in.create && in.cancel != nil {
		in.cancel()
	}
	return req
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || s.closed {
		s.mu.Unlock()
		return
	}
	req := s.takeLocked()
	if req != nil {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	if req == nil {
		return
	}
	defer s.wg.Done()
	_ = s.write(s.baseCtx, req)
}

// goWriteLocked runs an issued request in the background.
func (s *Session) goWriteLocked(req *syncRequest) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.write(s.baseCtx, req)
	}()
}

func (s *Session) write(ctx context.Context, req *syncRequest) error {
	defer func() {
		s.mu.Lock()
		s.writes--
		req.b.writes--
		if s.tableWrites[req.b.tableID]--; s.tableWrites[req.b.tableID] == 0 {
			delete(s.tableWrites, req.b.tableID)
		}
		s.idle.Broadcast()
		s.mu.Unlock()
	}()
	return s.flush(ctx, req)
}

func (s *Session) flush(ctx context.Context, req *syncRequest) error {
	// The create-vs-update decision must see the hydrated order.
	select {
	case <-req.b.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if req.seq != req.b.latestSeq || req.b.state == OrderClosed {
		s.mu.Unlock()
		s.log.Debug("sync skipped", zap.Uint64("seq", req.seq), zap.String("table_id", req.b.tableID))
		return ErrStaleResult
	}
	state, orderID, tableID := req.b.state, req.b.orderID, req.b.tableID
	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	req.create = state == NoOrder
	req.cancel = cancel
	s.inflight = req
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.inflight == req {
			s.inflight = nil
		}
		s.mu.Unlock()
	}()

	lines := orderLines(req.lines)

	if req.create {
		o, err := s.orders.CreateOrder(opCtx, tableID, lines)
		if errors.Is(err, order.ErrOpenExists) {
			return s.adopt(ctx, opCtx, req, lines, err)
		}
		if err != nil {
			return s.fail(&BackendError{Op: "create order", Err: err}, msgSyncFailed)
		}
		s.mu.Lock()
		committed := req.b.open(o.ID)
		superseded := req.seq != s.syncSeq
		s.mu.Unlock()
		s.log.Info("order created",
			zap.String("order_id", o.ID), zap.String("table_id", tableID),
			zap.Uint64("seq", req.seq), zap.Bool("committed", committed), zap.Bool("superseded", superseded))
		if committed && s.manageAvailability {
			if _, err := s.tables.SetTableAvailability(opCtx, tableID, false); err != nil {
				s.log.Warn("set table availability", zap.String("table_id", tableID), zap.Error(err))
			}
		}
		return nil
	}

	if _, err := s.orders.UpdateOrderLines(opCtx, orderID, lines); err != nil {
		s.mu.Lock()
		superseded := req.seq != req.b.latestSeq
		s.mu.Unlock()
		if superseded && ctx.Err() == nil && errors.Is(opCtx.Err(), context.Canceled) {
			return ErrStaleResult
		}
		return s.fail(&BackendError{Op: "update order", Err: err}, msgSyncFailed)
	}
	s.log.Debug("order synced", zap.String("order_id", orderID), zap.Int("lines", len(lines)), zap.Uint64("seq", req.seq))
	return nil
}

// adopt handles a create rejected because the table already has an open
// order, typically one this terminal created under an earlier selection: the
// binding takes that order and the write is retried as an update.
func (s *Session) adopt(ctx, opCtx context.Context, req *syncRequest, lines []order.Line, cause error) error {
	o, err := s.orders.GetOpenOrderForTable(opCtx, req.b.tableID)
	if err != nil {
		return s.fail(&BackendError{Op: "get open order", Err: err}, msgSyncFailed)
	}
	if o == nil {
		return s.fail(&BackendError{Op: "create order", Err: cause}, msgSyncFailed)
	}

	s.mu.Lock()
	req.b.open(o.ID)
	state, orderID := req.b.state, req.b.orderID
	req.create = false
	stale := req.seq != req.b.latestSeq
	s.mu.Unlock()
	s.log.Info("adopted open order", zap.String("order_id", orderID), zap.String("table_id", req.b.tableID))

	if state != OrderOpen || stale {
		return ErrStaleResult
	}
	if _, err := s.orders.UpdateOrderLines(opCtx, orderID, lines); err != nil {
		if ctx.Err() == nil && errors.Is(opCtx.Err(), context.Canceled) {
			return ErrStaleResult
		}
		return s.fail(&BackendError{Op: "update order", Err: err}, msgSyncFailed)
	}
	return nil
}

func orderLines(lines []cart.Line) []order.Line {
	out := make([]order.Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		out = append(out, order.Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return out
}
