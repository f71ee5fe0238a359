// Package pos holds the state of one point-of-sale session: the cart, the
// selected table and the remote order it is kept in sync with.
package pos

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/cafe-pos/internal/cart"
	"github.com/MikeMC777/cafe-pos/internal/catalog"
	"github.com/MikeMC777/cafe-pos/internal/events"
	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/payqr"
	"github.com/MikeMC777/cafe-pos/internal/table"
)

const (
	DefaultDebounce = 250 * time.Millisecond
	MinDebounce     = 150 * time.Millisecond
	MaxDebounce     = 400 * time.Millisecond
)

// ClampDebounce maps 0 to DefaultDebounce and clamps everything else to
// [MinDebounce, MaxDebounce].
func ClampDebounce(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultDebounce
	case d < MinDebounce:
		return MinDebounce
	case d > MaxDebounce:
		return MaxDebounce
	}
	return d
}

type Config struct {
	Orders  order.Backend
	Tables  table.Backend
	Catalog catalog.Source

	Debounce time.Duration
	Payee    payqr.Account
	// ManageTableAvailability makes the session flip table availability on
	// order create, pay and cancel. Leave it off when the backend does it.
	ManageTableAvailability bool

	Notifier Notifier
	Logger   *zap.Logger
	Clock    func() time.Time
}

type Session struct {
	orders  order.Backend
	tables  table.Backend
	catalog catalog.Source
	notify  Notifier
	log     *zap.Logger
	payee   payqr.Account

	manageAvailability bool
	debounce           time.Duration
	cart               *cart.Store

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	mu            sync.Mutex
	closed        bool
	current       *table.Table
	binding       *binding
	tableSeq      uint64
	syncSeq       uint64
	hydrateCancel context.CancelFunc

	timer    *time.Timer
	timerGen uint64
	pending  *syncRequest
	inflight *syncRequest
	writes   int        // issued writes not yet finished
	idle     *sync.Cond // broadcast whenever an issued write finishes
	// tableWrites counts unfinished issued writes per table id, across bindings.
	tableWrites map[string]int

	tableList []table.Table
	products  map[string]catalog.Product
	menu      []catalog.Product

	// writeMu serializes order writes of this session.
	writeMu sync.Mutex
}

func NewSession(cfg Config) *Session {
	s := &Session{
		orders:   cfg.Orders,
		tables:   cfg.Tables,
		catalog:  cfg.Catalog,
		notify:   cfg.Notifier,
		log:      cfg.Logger,
		payee:    cfg.Payee,
		debounce: ClampDebounce(cfg.Debounce),
		products: map[string]catalog.Product{},

		tableWrites: map[string]int{},

		manageAvailability: cfg.ManageTableAvailability,
	}
	if s.notify == nil {
		s.notify = nopNotifier{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if cfg.Clock != nil {
		s.cart = cart.NewStoreWithClock(cfg.Clock)
	} else {
		s.cart = cart.NewStore()
	}
	s.idle = sync.NewCond(&s.mu)
	s.baseCtx, s.baseCancel = context.WithCancel(context.Background())
	return s
}

// Close flushes a pending sync, waits for background writes and stops the session.
func (s *Session) Close(ctx context.Context) error {
	err := s.Flush(ctx)

	s.mu.Lock()
	s.closed = true
	if s.hydrateCancel != nil {
		s.hydrateCancel()
	}
	s.pending = nil
	s.stopTimerLocked()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() { s.wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-ctx.Done():
		s.baseCancel()
		<-done
		return ctx.Err()
	}
	s.baseCancel()
	return err
}

func (s *Session) Debounce() time.Duration { return s.debounce }

func (s *Session) CurrentTable() (table.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return table.Table{}, false
	}
	return *s.current, true
}

// OrderID returns the open order of the current table, if any.
func (s *Session) OrderID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding == nil || s.binding.state != OrderOpen {
		return "", false
	}
	return s.binding.orderID, true
}

func (s *Session) OrderState() OrderState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.binding == nil {
		return NoOrder
	}
	return s.binding.state
}

func (s *Session) Cart() []cart.Line { return s.cart.Snapshot() }

func (s *Session) Total() int64 { return s.cart.Total() }

// Tables returns the last fetched table list.
func (s *Session) Tables() []table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]table.Table(nil), s.tableList...)
}

func (s *Session) RefreshTables(ctx context.Context) error {
	if err := s.refreshTables(ctx); err != nil {
		return s.fail(err, "Could not load tables.")
	}
	return nil
}

func (s *Session) refreshTables(ctx context.Context) error {
	list, err := s.tables.ListTables(ctx)
	if err != nil {
		return &BackendError{Op: "list tables", Err: err}
	}
	s.mu.Lock()
	s.tableList = append([]table.Table(nil), list...)
	s.mu.Unlock()
	return nil
}

// ApplyTableEvent merges a realtime table change into the cached list.
func (s *Session) ApplyTableEvent(ch events.TableChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tableList {
		if s.tableList[i].ID != ch.ID {
			continue
		}
		s.tableList[i].IsAvailable = ch.IsAvailable
		if ch.Name != "" {
			s.tableList[i].Name = ch.Name
		}
		return
	}
	if ch.Name == "" {
		return
	}
	s.tableList = append(s.tableList, table.Table{ID: ch.ID, Name: ch.Name, IsAvailable: ch.IsAvailable})
	sort.Slice(s.tableList, func(i, j int) bool { return s.tableList[i].Name < s.tableList[j].Name })
}

// LoadCatalog fetches the products used for adding lines and for name and
// price fallback during hydration.
func (s *Session) LoadCatalog(ctx context.Context) error {
	if err := s.loadCatalog(ctx); err != nil {
		return s.fail(err, "Could not load the menu.")
	}
	return nil
}

func (s *Session) loadCatalog(ctx context.Context) error {
	items, err := s.catalog.ListAvailableProducts(ctx)
	if err != nil {
		return &BackendError{Op: "list products", Err: err}
	}
	byID := make(map[string]catalog.Product, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	s.mu.Lock()
	s.menu = items
	s.products = byID
	s.mu.Unlock()
	return nil
}

func (s *Session) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Product(nil), s.menu...)
}

func (s *Session) Product(id string) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Session) info(format string, args ...any) {
	s.notify.Notify(Notice{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

// fail reports err to the notifier with msg and returns it. Must be called
// without s.mu held.
func (s *Session) fail(err error, msg string) error {
	level := LevelError
	if IsValidation(err) {
		level = LevelWarn
	} else {
		s.log.Warn(msg, zap.Error(err))
	}
	s.notify.Notify(Notice{Level: level, Message: msg, Err: err})
	return err
}
