package pos

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/MikeMC777/cafe-pos/internal/cart"
	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/table"
)

// SelectTable makes t the current table at once, then looks up its open order
// and hydrates the cart from it, or clears the cart when there is none.
//
// A sync still pending for the previous selection is issued against that
// selection, in the background when it is another table. A lookup that
// resolves after a newer SelectTable started is discarded and ErrStaleResult
// is returned. A failed lookup leaves the table selected with an empty cart.
func (s *Session) SelectTable(ctx context.Context, t table.Table) error {
	if strings.TrimSpace(t.ID) == "" {
		return s.reject("Unknown table.")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.reject("Session is closed.")
	}
	var sameTable *syncRequest
	if leftover := s.takeLocked(); leftover != nil {
		if leftover.b.tableID == t.ID {
			sameTable = leftover
		} else {
			s.goWriteLocked(leftover)
		}
	}
	if s.hydrateCancel != nil {
		s.hydrateCancel()
	}
	s.tableSeq++
	mySeq := s.tableSeq
	s.idle.Broadcast()
	b := newBinding(t.ID, mySeq, true)
	cur := t
	s.current = &cur
	s.binding = b
	hctx, cancel := context.WithCancel(ctx)
	s.hydrateCancel = cancel
	s.mu.Unlock()

	defer cancel()
	defer b.markReady()

	if sameTable != nil {
		// Let the lookup see what the previous selection of this table wrote.
		_ = s.write(hctx, sameTable)
	}

	// A write issued under an earlier selection of this table may still be
	// creating its order; the lookup has to see that order.
	s.mu.Lock()
	for mySeq == s.tableSeq && s.tableWrites[t.ID] > b.writes {
		s.idle.Wait()
	}
	s.mu.Unlock()

	name := displayName(t)
	o, err := s.orders.GetOpenOrderForTable(hctx, t.ID)
	if err == nil && s.needsCatalog(o) {
		// Lines may name items added to the menu since it was loaded.
		if cerr := s.loadCatalog(hctx); cerr != nil {
			s.log.Debug("reload catalog", zap.Error(cerr))
		}
	}

	s.mu.Lock()
	if mySeq != s.tableSeq {
		s.mu.Unlock()
		s.log.Debug("table lookup discarded", zap.String("table_id", t.ID), zap.Uint64("seq", mySeq))
		return ErrStaleResult
	}
	s.dropPendingLocked(b)
	// Hydration replaces the cart, so every write issued for b before it is stale.
	s.syncSeq++
	b.latestSeq = s.syncSeq

	if err != nil {
		s.cart.Clear()
		s.mu.Unlock()
		return s.fail(&BackendError{Op: "get open order", Err: err},
			fmt.Sprintf("Could not load the order of table %s.", name))
	}
	if o == nil || o.Status.Terminal() {
		s.cart.Clear()
		s.mu.Unlock()
		s.info("Table %s has no order yet. Add items to open one.", name)
		return nil
	}
	b.open(o.ID)
	s.cart.Replace(s.hydrateLinesLocked(o))
	s.mu.Unlock()

	s.info("Opened order %s of table %s.", o.ID, name)
	return nil
}

// needsCatalog reports whether o has a line whose name or price only the
// menu can supply and whose product the menu does not know yet.
func (s *Session) needsCatalog(o *order.Order) bool {
	if o == nil || o.Status.Terminal() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range o.Lines {
		if l.Name != "" && l.UnitPrice > 0 {
			continue
		}
		if _, ok := s.products[l.ProductID]; !ok {
			return true
		}
	}
	return false
}

// hydrateLinesLocked maps order lines to cart lines. The price recorded on the
// order wins over today's menu price; the menu only fills gaps.
func (s *Session) hydrateLinesLocked(o *order.Order) []cart.Line {
	lines := make([]cart.Line, 0, len(o.Lines))
	for _, l := range o.Lines {
		if l.Quantity < 1 {
			continue
		}
		p, known := s.products[l.ProductID]

		name := l.Name
		if name == "" && known {
			name = p.Name
		}
		if name == "" {
			name = "Item #" + l.ProductID
		}
		price := l.UnitPrice
		if price <= 0 && known {
			price = p.UnitPrice()
		}
		lines = append(lines, cart.Line{
			ProductID: l.ProductID,
			Name:      name,
			UnitPrice: price,
			Quantity:  l.Quantity,
		})
	}
	return lines
}

func displayName(t table.Table) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}
