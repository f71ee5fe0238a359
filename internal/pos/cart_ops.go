package pos

import (
	"fmt"

	"github.com/MikeMC777/cafe-pos/internal/cart"
	"github.com/MikeMC777/cafe-pos/internal/catalog"
	"github.com/MikeMC777/cafe-pos/internal/payqr"
)

// AddProduct adds one unit of p. Without a selected table nothing changes.
func (s *Session) AddProduct(p catalog.Product) error {
	s.mu.Lock()
	if s.binding == nil {
		s.mu.Unlock()
		return s.reject("Select a table first.")
	}
	lines := s.cart.Add(cart.Product{ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice()})
	err := s.scheduleLocked(lines)
	s.mu.Unlock()
	return s.report(err)
}

func (s *Session) Increment(productID string) error {
	return s.mutate(func() []cart.Line { return s.cart.Increment(productID) })
}

func (s *Session) Decrement(productID string) error {
	return s.mutate(func() []cart.Line { return s.cart.Decrement(productID) })
}

func (s *Session) SetQuantity(productID string, n int) error {
	return s.mutate(func() []cart.Line { return s.cart.SetQuantity(productID, n) })
}

func (s *Session) Remove(productID string) error {
	return s.mutate(func() []cart.Line { return s.cart.Remove(productID) })
}

// ClearCart empties the cart. An open order is synced to zero lines and stays
// PENDING.
func (s *Session) ClearCart() error {
	return s.mutate(s.cart.Clear)
}

// RestoreDraft replaces the cart with lines without syncing; the next edit does.
// A sync armed for the replaced lines is dropped.
func (s *Session) RestoreDraft(lines []cart.Line) {
	s.mu.Lock()
	if s.binding != nil {
		s.dropPendingLocked(s.binding)
	}
	s.cart.Replace(lines)
	s.mu.Unlock()
	s.info("Draft restored.")
}

// PaymentQR returns the VietQR image URL for the current cart total.
func (s *Session) PaymentQR() (string, error) {
	t, ok := s.CurrentTable()
	if !ok {
		return "", s.reject("Select a table first.")
	}
	total := s.cart.Total()
	if total <= 0 {
		return "", s.reject("The cart is empty.")
	}
	info := "Table " + displayName(t)
	if id, ok := s.OrderID(); ok {
		info = fmt.Sprintf("ORDER#%s %s", id, info)
	}
	u, err := payqr.ImageURL(s.payee, total, info)
	if err != nil {
		return "", s.fail(validation("%v", err), "Bank account is not configured.")
	}
	return u, nil
}

// mutate applies fn to the cart and schedules a sync of the result under one
// lock, so a concurrent hydration cannot interleave.
func (s *Session) mutate(fn func() []cart.Line) error {
	s.mu.Lock()
	lines := fn()
	err := s.scheduleLocked(lines)
	s.mu.Unlock()
	return s.report(err)
}

func (s *Session) report(err error) error {
	if err == nil {
		return nil
	}
	return s.fail(err, err.Error())
}

func (s *Session) reject(format string, args ...any) error {
	v := validation(format, args...)
	return s.fail(v, v.Reason)
}
