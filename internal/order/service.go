package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MikeMC777/cafe-pos/internal/catalog"
	"github.com/MikeMC777/cafe-pos/internal/events"
)

var (
	ErrTableRequired  = errors.New("tableId is required")
	ErrReasonRequired = errors.New("cancel reason is required")
)

// ProductLookup resolves menu items for lines sent without a price or name.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*catalog.Product, error)
}

// Service applies the server-side order rules on top of a Repository and
// publishes every change. It satisfies Backend, so a session can drive it
// in-process as well as over REST.
type Service struct {
	repo Repository
	menu ProductLookup
	pub  events.Publisher
	log  *zap.Logger
}

var _ Backend = (*Service)(nil)

func NewService(repo Repository, menu ProductLookup, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, menu: menu, pub: pub, log: log}
}

func (s *Service) CreateOrder(ctx context.Context, tableID string, lines []Line) (*Order, error) {
	tableID = strings.TrimSpace(tableID)
	if tableID == "" {
		return nil, ErrTableRequired
	}
	resolved, err := s.resolve(ctx, lines)
	if err != nil {
		return nil, err
	}
	o := &Order{
		ID:      uuid.NewString(),
		TableID: tableID,
		Status:  StatusPending,
		Lines:   resolved,
		Total:   Total(resolved),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.String("order_id", o.ID), zap.String("table_id", o.TableID),
		zap.Int("lines", len(o.Lines)), zap.Int64("total", o.Total))

	s.publish(ctx, events.KeyOrderCreated, o)
	s.publish(ctx, events.KeyTableUpdated, events.TableChange{ID: o.TableID, IsAvailable: false})
	return o, nil
}

func (s *Service) UpdateOrderLines(ctx context.Context, orderID string, lines []Line) (*Order, error) {
	resolved, err := s.resolve(ctx, lines)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.ReplaceLines(ctx, orderID, resolved, Total(resolved))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.KeyOrderUpdated, o)
	return o, nil
}

// GetOpenOrderForTable returns nil, nil when the table has no open order.
func (s *Service) GetOpenOrderForTable(ctx context.Context, tableID string) (*Order, error) {
	o, err := s.repo.GetOpenByTable(ctx, tableID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return o, err
}

func (s *Service) SetOrderStatus(ctx context.Context, orderID string, status Status, reason string) (*Order, error) {
	switch status {
	case StatusPaid:
		return s.Pay(ctx, orderID)
	case StatusCancelled:
		return s.Cancel(ctx, orderID, reason)
	}
	return nil, ErrInvalidStatus
}

func (s *Service) Pay(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.repo.SetStatus(ctx, orderID, StatusPaid, "")
	if err != nil {
		return nil, err
	}
	s.log.Info("order paid", zap.String("order_id", o.ID), zap.Int64("total", o.Total))
	s.publish(ctx, events.KeyOrderPaid, o)
	s.publish(ctx, events.KeyTableUpdated, events.TableChange{ID: o.TableID, IsAvailable: true})
	return o, nil
}

func (s *Service) Cancel(ctx context.Context, orderID, reason string) (*Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	o, err := s.repo.SetStatus(ctx, orderID, StatusCancelled, reason)
	if err != nil {
		return nil, err
	}
	s.log.Info("order cancelled", zap.String("order_id", o.ID), zap.String("reason", reason))
	s.publish(ctx, events.KeyOrderCancelled, o)
	s.publish(ctx, events.KeyTableUpdated, events.TableChange{ID: o.TableID, IsAvailable: true})
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q Query) ([]Order, error) {
	return s.repo.List(ctx, q)
}

// resolve validates quantities and fills missing prices and names from the menu.
func (s *Service) resolve(ctx context.Context, lines []Line) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	for i, l := range lines {
		l.ProductID = strings.TrimSpace(l.ProductID)
		if l.ProductID == "" {
			return nil, fmt.Errorf("%w: line %d has no menuItemId", ErrInvalidLine, i)
		}
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: line %d quantity must be >= 1", ErrInvalidLine, i)
		}
		if l.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: line %d price must be >= 0", ErrInvalidLine, i)
		}
		if (l.UnitPrice == 0 || l.Name == "") && s.menu != nil {
			p, err := s.menu.GetByID(ctx, l.ProductID)
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown menu item %s", ErrInvalidLine, l.ProductID)
			}
			if err != nil {
				return nil, err
			}
			if l.UnitPrice == 0 {
				l.UnitPrice = p.UnitPrice()
			}
			if l.Name == "" {
				l.Name = p.Name
			}
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, key string, payload any) {
	if err := s.pub.Publish(ctx, key, payload); err != nil {
		s.log.Warn("publish failed", zap.String("key", key), zap.Error(err))
	}
}
