package order

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/catalog"
	"github.com/MikeMC777/cafe-pos/internal/events"
)

// memRepo implements Repository in memory with the same status rules as PGRepo.
type memRepo struct {
	mu     sync.Mutex
	orders map[string]*Order
	busy   map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{orders: map[string]*Order{}, busy: map[string]bool{}}
}

func (m *memRepo) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.orders {
		if cur.TableID == o.TableID && cur.Status == StatusPending {
			return ErrOpenExists
		}
	}
	cp := *o
	m.orders[o.ID] = &cp
	m.busy[o.TableID] = true
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) GetOpenByTable(_ context.Context, tableID string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.TableID == tableID && o.Status == StatusPending {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(_ context.Context, q Query) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Order{}
	for _, o := range m.orders {
		if q.Status == "" || o.Status == q.Status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memRepo) ReplaceLines(_ context.Context, id string, lines []Line, total int64) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status.Terminal() {
		return nil, ErrTerminal
	}
	o.Lines = append([]Line(nil), lines...)
	o.Total = total
	cp := *o
	return &cp, nil
}

func (m *memRepo) SetStatus(_ context.Context, id string, status Status, reason string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if o.Status.Terminal() {
		return nil, ErrTerminal
	}
	o.Status = status
	o.CancelReason = reason
	m.busy[o.TableID] = false
	cp := *o
	return &cp, nil
}

type menuStub map[string]catalog.Product

func (m menuStub) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

type recorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *recorder) Publish(_ context.Context, key string, _ any) error {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	return nil
}

func newTestService() (*Service, *memRepo, *recorder) {
	repo := newMemRepo()
	pub := &recorder{}
	menu := menuStub{
		"coffee": {ID: "coffee", Name: "Cà phê sữa", Price: "20000.00", Available: true},
		"tea":    {ID: "tea", Name: "Trà đào", Price: "35000", Available: true},
	}
	return NewService(repo, menu, pub, nil), repo, pub
}

func TestCreateOrder_ResolvesPricesAndTotals(t *testing.T) {
	svc, repo, pub := newTestService()
	tableID := uuid.NewString()

	o, err := svc.CreateOrder(context.Background(), tableID, []Line{
		{ProductID: "coffee", Quantity: 2},
		{ProductID: "tea", Quantity: 1, UnitPrice: 30000},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(20000), o.Lines[0].UnitPrice)
	assert.Equal(t, "Cà phê sữa", o.Lines[0].Name)
	assert.Equal(t, int64(30000), o.Lines[1].UnitPrice, "explicit price wins")
	assert.Equal(t, int64(70000), o.Total)
	assert.True(t, repo.busy[tableID])
	assert.Equal(t, []string{events.KeyOrderCreated, events.KeyTableUpdated}, pub.keys)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, " ", nil)
	assert.ErrorIs(t, err, ErrTableRequired)

	_, err = svc.CreateOrder(ctx, "t1", []Line{{ProductID: "coffee", Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = svc.CreateOrder(ctx, "t1", []Line{{ProductID: "ghost", Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = svc.CreateOrder(ctx, "t1", []Line{{Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidLine)
}

func TestCreateOrder_SecondOpenOrderForTableIsRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, "t1", []Line{{ProductID: "coffee", Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, "t1", []Line{{ProductID: "tea", Quantity: 1}})
	assert.ErrorIs(t, err, ErrOpenExists)
}

func TestUpdateOrderLines_RecomputesTotal(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()
	o, err := svc.CreateOrder(ctx, "t1", []Line{{ProductID: "coffee", Quantity: 1}})
	require.NoError(t, err)

	o, err = svc.UpdateOrderLines(ctx, o.ID, []Line{{ProductID: "coffee", Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, int64(60000), o.Total)
	assert.Equal(t, StatusPending, o.Status)
	assert.Contains(t, pub.keys, events.KeyOrderUpdated)

	o, err = svc.UpdateOrderLines(ctx, o.ID, []Line{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), o.Total, "empty collection totals 0")
}

func TestTerminalOrders_RejectChanges(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	o, err := svc.CreateOrder(ctx, "t1", []Line{{ProductID: "coffee", Quantity: 1}})
	require.NoError(t, err)

	paid, err := svc.SetOrderStatus(ctx, o.ID, StatusPaid, "")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)
	assert.False(t, repo.busy["t1"])

	_, err = svc.UpdateOrderLines(ctx, o.ID, []Line{{ProductID: "coffee", Quantity: 2}})
	assert.ErrorIs(t, err, ErrTerminal)

	_, err = svc.Cancel(ctx, o.ID, "late")
	assert.ErrorIs(t, err, ErrTerminal)
}

func TestCancel_RequiresReason(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()
	o, err := svc.CreateOrder(ctx, "t1", []Line{{ProductID: "tea", Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.SetOrderStatus(ctx, o.ID, StatusCancelled, "  ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	c, err := svc.SetOrderStatus(ctx, o.ID, StatusCancelled, "customer left")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, c.Status)
	assert.Equal(t, "customer left", c.CancelReason)
	assert.Contains(t, pub.keys, events.KeyOrderCancelled)

	_, err = svc.SetOrderStatus(ctx, o.ID, StatusPending, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGetOpenOrderForTable_NoneIsNil(t *testing.T) {
	svc, _, _ := newTestService()

	o, err := svc.GetOpenOrderForTable(context.Background(), "empty")
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"pending": StatusPending, "PAID": StatusPaid, "cancelled": StatusCancelled, "Canceled": StatusCancelled,
	} {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseStatus("shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
