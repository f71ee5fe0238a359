package pos

import "sync"

// OrderState is the remote order state of one table selection.
type OrderState int

const (
	NoOrder OrderState = iota
	OrderOpen
	OrderClosed
)

func (s OrderState) String() string {
	switch s {
	case OrderOpen:
		return "open"
	case OrderClosed:
		return "closed"
	}
	return "none"
}

// binding ties sync requests to the table selection they were issued under.
// A new binding is made by every SelectTable and after every successful pay or
// cancel, so writes queued for an earlier selection can never land on a later
// one. Fields other than ready are guarded by Session.mu.
type binding struct {
	tableID string
	epoch   uint64

	state   OrderState
	orderID string

	// latestSeq is the sync sequence of the newest write issued for this
	// binding; older writes are stale.
	latestSeq uint64
	// writes counts issued writes of this binding that have not finished.
	writes int

	ready     chan struct{} // closed once hydration is settled
	readyOnce sync.Once
}

func newBinding(tableID string, epoch uint64, hydrating bool) *binding {
	b := &binding{tableID: tableID, epoch: epoch, ready: make(chan struct{})}
	if !hydrating {
		b.markReady()
	}
	return b
}

func (b *binding) markReady() { b.readyOnce.Do(func() { close(b.ready) }) }

// open records a created or hydrated order. A binding that already has an
// order keeps it.
func (b *binding) open(orderID string) bool {
	if b.state != NoOrder {
		return false
	}
	b.state = OrderOpen
	b.orderID = orderID
	return true
}

// close marks the order terminal; later writes for this binding are dropped.
func (b *binding) close(orderID string) {
	if b.state == OrderOpen && b.orderID == orderID {
		b.state = OrderClosed
	}
}
