package cart

import (
	"sync"
	"time"

	"github.com/MikeMC777/cafe-pos/internal/money"
)

// Product is the part of a catalog entry the cart snapshots when a line is added.
type Product struct {
	ID        string
	Name      string
	UnitPrice int64
}

// Line is one product in the cart. Quantity is always >= 1.
type Line struct {
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unitPrice"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() int64 { return money.Subtotal(l.UnitPrice, l.Quantity) }

// Store is the ordered, in-memory line collection of one POS session.
// Mutators return the resulting snapshot so callers can hand it to a sync
// without a second lookup. Unknown product ids are no-ops.
type Store struct {
	mu    sync.Mutex
	lines []Line
	now   func() time.Time
}

func NewStore() *Store { return &Store{now: time.Now} }

// NewStoreWithClock is NewStore with an injected clock for AddedAt.
func NewStoreWithClock(now func() time.Time) *Store { return &Store{now: now} }

// Add increments the line for p.ID, or appends a new line with quantity 1.
func (s *Store) Add(p Product) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(p.ID); i >= 0 {
		s.lines[i].Quantity++
		return s.snapshotLocked()
	}
	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  1,
		AddedAt:   s.now(),
	})
	return s.snapshotLocked()
}

func (s *Store) Increment(id string) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		s.lines[i].Quantity++
	}
	return s.snapshotLocked()
}

// Decrement floors at 1; removing a line takes an explicit Remove.
func (s *Store) Decrement(id string) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 && s.lines[i].Quantity > 1 {
		s.lines[i].Quantity--
	}
	return s.snapshotLocked()
}

// SetQuantity clamps n to at least 1.
func (s *Store) SetQuantity(id string, n int) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 {
		n = 1
	}
	if i := s.indexLocked(id); i >= 0 {
		s.lines[i].Quantity = n
	}
	return s.snapshotLocked()
}

func (s *Store) Remove(id string) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	return s.snapshotLocked()
}

func (s *Store) Clear() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return []Line{}
}

// Replace swaps the whole collection, dropping lines with quantity < 1 and
// merging duplicate product ids into the first occurrence.
func (s *Store) Replace(lines []Line) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		if i := s.indexLocked(l.ProductID); i >= 0 {
			s.lines[i].Quantity += l.Quantity
			continue
		}
		if l.AddedAt.IsZero() {
			l.AddedAt = s.now()
		}
		s.lines = append(s.lines, l)
	}
	return s.snapshotLocked()
}

func (s *Store) Snapshot() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Total is Σ UnitPrice × Quantity.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.lines)
}

// Total sums a line collection.
func Total(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Subtotal()
	}
	return sum
}

func (s *Store) indexLocked(id string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}
