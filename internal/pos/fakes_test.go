package pos

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MikeMC777/cafe-pos/internal/catalog"
	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/table"
)

type backendCall struct {
	Op      string // create, update, lookup, status
	TableID string
	OrderID string
	Lines   []order.Line
	Status  order.Status
	Reason  string
}

// fakeOrders is an in-memory order.Backend. Calls are recorded on entry.
// A gate keyed "create", "update" or "lookup:<tableID>" blocks the matching
// call until released; lookups ignore ctx so a slow lookup really resolves late.
type fakeOrders struct {
	mu      sync.Mutex
	calls   []backendCall
	orders  map[string]*order.Order
	nextID  int
	gates   map[string]chan struct{}
	fail    map[string]error
	entered chan string
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders:  map[string]*order.Order{},
		gates:   map[string]chan struct{}{},
		fail:    map[string]error{},
		entered: make(chan string, 64),
	}
}

// seed stores an open order for tableID and returns its id.
func (f *fakeOrders) seed(tableID string, lines ...order.Line) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("O%d", f.nextID)
	f.orders[id] = &order.Order{
		ID: id, TableID: tableID, Status: order.StatusPending,
		Lines: append([]order.Line(nil), lines...), Total: order.Total(lines),
	}
	return id
}

func (f *fakeOrders) hold(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[key] = g
	return g
}

func (f *fakeOrders) failNext(op string, err error) {
	f.mu.Lock()
	f.fail[op] = err
	f.mu.Unlock()
}

func (f *fakeOrders) enter(c backendCall, key string) (chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if err, ok := f.fail[c.Op]; ok {
		delete(f.fail, c.Op)
		return nil, err
	}
	g := f.gates[key]
	delete(f.gates, key)
	if g != nil {
		f.entered <- key
	}
	return g, nil
}

func waitGate(ctx context.Context, g chan struct{}) error {
	if g == nil {
		return nil
	}
	select {
	case <-g:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeOrders) CreateOrder(ctx context.Context, tableID string, lines []order.Line) (*order.Order, error) {
	g, err := f.enter(backendCall{Op: "create", TableID: tableID, Lines: lines}, "create")
	if err != nil {
		return nil, err
	}
	if err := waitGate(ctx, g); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.TableID == tableID && o.Status == order.StatusPending {
			return nil, order.ErrOpenExists
		}
	}
	f.nextID++
	o := &order.Order{
		ID: fmt.Sprintf("O%d", f.nextID), TableID: tableID, Status: order.StatusPending,
		Lines: append([]order.Line(nil), lines...), Total: order.Total(lines),
	}
	f.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) UpdateOrderLines(ctx context.Context, orderID string, lines []order.Line) (*order.Order, error) {
	g, err := f.enter(backendCall{Op: "update", OrderID: orderID, Lines: lines}, "update")
	if err != nil {
		return nil, err
	}
	if err := waitGate(ctx, g); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, order.ErrNotFound
	}
	if o.Status.Terminal() {
		return nil, order.ErrTerminal
	}
	o.Lines = append([]order.Line(nil), lines...)
	o.Total = order.Total(lines)
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetOpenOrderForTable(_ context.Context, tableID string) (*order.Order, error) {
	g, err := f.enter(backendCall{Op: "lookup", TableID: tableID}, "lookup:"+tableID)
	if err != nil {
		return nil, err
	}
	if g != nil {
		<-g
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.TableID == tableID && o.Status == order.StatusPending {
			cp := *o
			cp.Lines = append([]order.Line(nil), o.Lines...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOrders) SetOrderStatus(_ context.Context, orderID string, status order.Status, reason string) (*order.Order, error) {
	if _, err := f.enter(backendCall{Op: "status", OrderID: orderID, Status: status, Reason: reason}, ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, order.ErrNotFound
	}
	if o.Status.Terminal() {
		return nil, order.ErrTerminal
	}
	o.Status = status
	o.CancelReason = reason
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) callsOf(op string) []backendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []backendCall
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeOrders) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Op)
	}
	return out
}

func (f *fakeOrders) get(id string) order.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		return *o
	}
	return order.Order{}
}

type fakeTables struct {
	mu        sync.Mutex
	list      []table.Table
	lists     int
	available map[string]bool
}

func newFakeTables(tables ...table.Table) *fakeTables {
	return &fakeTables{list: tables, available: map[string]bool{}}
}

func (f *fakeTables) ListTables(context.Context) ([]table.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return append([]table.Table(nil), f.list...), nil
}

func (f *fakeTables) SetTableAvailability(_ context.Context, id string, available bool) (*table.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available[id] = available
	for i := range f.list {
		if f.list[i].ID == id {
			f.list[i].IsAvailable = available
			t := f.list[i]
			return &t, nil
		}
	}
	return nil, errors.New("table not found")
}

type fakeCatalog []catalog.Product

func (c fakeCatalog) ListAvailableProducts(context.Context) ([]catalog.Product, error) {
	return append([]catalog.Product(nil), c...), nil
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *noticeLog) Notify(x Notice) {
	n.mu.Lock()
	n.notices = append(n.notices, x)
	n.mu.Unlock()
}

func (n *noticeLog) at(level Level) []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Notice
	for _, x := range n.notices {
		if x.Level == level {
			out = append(out, x)
		}
	}
	return out
}

// menuFeed is a catalog whose items can change between calls.
type menuFeed struct {
	mu    sync.Mutex
	items []catalog.Product
	calls int
}

func (m *menuFeed) set(items ...catalog.Product) {
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
}

func (m *menuFeed) ListAvailableProducts(context.Context) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return append([]catalog.Product(nil), m.items...), nil
}
