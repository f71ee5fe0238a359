package pos

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"

	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/table"
)

type syncTestContext struct {
	s       *Session
	orders  *fakeOrders
	tables  map[string]table.Table
	orderID string
	err     error
}

func (c *syncTestContext) reset() {
	if c.s != nil {
		_ = c.s.Close(context.Background())
	}
	*c = syncTestContext{}
}

func (c *syncTestContext) aTerminalWithTables(a, b string) error {
	c.orders = newFakeOrders()
	c.tables = map[string]table.Table{
		a: {ID: a, Name: "Bàn " + a, IsAvailable: true},
		b: {ID: b, Name: "Bàn " + b, IsAvailable: true},
	}
	c.s = NewSession(Config{
		Orders:   c.orders,
		Tables:   newFakeTables(c.tables[a], c.tables[b]),
		Catalog:  fakeCatalog{coffee, tea},
		Debounce: MinDebounce,
	})
	return c.s.LoadCatalog(context.Background())
}

func (c *syncTestContext) tableHasAnOpenOrder(tableID string, qty int, productID string) error {
	p, ok := c.s.Product(productID)
	if !ok {
		return fmt.Errorf("unknown product %q", productID)
	}
	c.orderID = c.orders.seed(tableID, order.Line{ProductID: productID, Quantity: qty, UnitPrice: p.UnitPrice()})
	return nil
}

func (c *syncTestContext) iSelectTable(tableID string) error {
	t, ok := c.tables[tableID]
	if !ok {
		return fmt.Errorf("unknown table %q", tableID)
	}
	return c.s.SelectTable(context.Background(), t)
}

func (c *syncTestContext) iAdd(qty int, productID string) error {
	p, ok := c.s.Product(productID)
	if !ok {
		return fmt.Errorf("unknown product %q", productID)
	}
	for i := 0; i < qty; i++ {
		if err := c.s.AddProduct(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *syncTestContext) iIncrement(productID string) error { return c.s.Increment(productID) }

func (c *syncTestContext) iDecrement(productID string) error { return c.s.Decrement(productID) }

func (c *syncTestContext) iClearTheCart() error { return c.s.ClearCart() }

func (c *syncTestContext) theSyncSettles() error { return c.s.Flush(context.Background()) }

func (c *syncTestContext) iCheckOut() error { return c.s.Checkout(context.Background()) }

func (c *syncTestContext) iCancelWithReason(reason string) error {
	c.err = c.s.Cancel(context.Background(), reason)
	return nil
}

func (c *syncTestContext) theLastActionWasRejected() error {
	if !IsValidation(c.err) {
		return fmt.Errorf("expected a validation error, got %v", c.err)
	}
	return nil
}

// current resolves the order the scenario is about: the seeded one, or the
// one created for the selected table.
func (c *syncTestContext) current() (order.Order, error) {
	if c.orderID != "" {
		return c.orders.get(c.orderID), nil
	}
	if id, ok := c.s.OrderID(); ok {
		return c.orders.get(id), nil
	}
	return order.Order{}, fmt.Errorf("no order in scope")
}

func (c *syncTestContext) ordersWereCreatedForTable(n int, tableID string) error {
	got := 0
	for _, call := range c.orders.callsOf("create") {
		if call.TableID == tableID {
			got++
		}
	}
	if got != n {
		return fmt.Errorf("expected %d creates for %s, got %d", n, tableID, got)
	}
	return nil
}

func (c *syncTestContext) updatesWereSent(n int) error {
	if got := len(c.orders.callsOf("update")); got != n {
		return fmt.Errorf("expected %d updates, got %d", n, got)
	}
	return nil
}

func (c *syncTestContext) theOrderHas(qty int, productID string) error {
	o, err := c.current()
	if err != nil {
		return err
	}
	for _, l := range o.Lines {
		if l.ProductID == productID {
			if l.Quantity != qty {
				return fmt.Errorf("expected %d x %s, got %d", qty, productID, l.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("order %s has no line for %s", o.ID, productID)
}

func (c *syncTestContext) theOrderTotalIs(total int64) error {
	o, err := c.current()
	if err != nil {
		return err
	}
	if o.Total != total {
		return fmt.Errorf("expected total %d, got %d", total, o.Total)
	}
	return nil
}

func (c *syncTestContext) theOrderStatusIs(status string) error {
	o, err := c.current()
	if err != nil {
		return err
	}
	if string(o.Status) != status {
		return fmt.Errorf("expected status %s, got %s", status, o.Status)
	}
	return nil
}

func (c *syncTestContext) theCancelReasonIs(reason string) error {
	o, err := c.current()
	if err != nil {
		return err
	}
	if o.CancelReason != reason {
		return fmt.Errorf("expected reason %q, got %q", reason, o.CancelReason)
	}
	return nil
}

func (c *syncTestContext) theCartIsEmpty() error {
	if n := len(c.s.Cart()); n != 0 {
		return fmt.Errorf("expected an empty cart, got %d lines", n)
	}
	return nil
}

func (c *syncTestContext) theCartHas(qty int, productID string) error {
	for _, l := range c.s.Cart() {
		if l.ProductID == productID && l.Quantity == qty {
			return nil
		}
	}
	return fmt.Errorf("cart has no %d x %s: %+v", qty, productID, c.s.Cart())
}

func (c *syncTestContext) noOrderIsOpen() error {
	if id, ok := c.s.OrderID(); ok {
		return fmt.Errorf("expected no open order, got %s", id)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &syncTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a terminal with tables "([^"]*)" and "([^"]*)"$`, tc.aTerminalWithTables)
	ctx.Step(`^table "([^"]*)" has an open order with (\d+) x "([^"]*)"$`, tc.tableHasAnOpenOrder)
	ctx.Step(`^I select table "([^"]*)"$`, tc.iSelectTable)

	// When steps
	ctx.Step(`^I add (\d+) x "([^"]*)"$`, tc.iAdd)
	ctx.Step(`^I increment "([^"]*)"$`, tc.iIncrement)
	ctx.Step(`^I decrement "([^"]*)"$`, tc.iDecrement)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)
	ctx.Step(`^the sync settles$`, tc.theSyncSettles)
	ctx.Step(`^I check out$`, tc.iCheckOut)
	ctx.Step(`^I cancel with reason "([^"]*)"$`, tc.iCancelWithReason)

	// Then steps
	ctx.Step(`^the last action was rejected$`, tc.theLastActionWasRejected)
	ctx.Step(`^(\d+) orders? (?:was|were) created for table "([^"]*)"$`, tc.ordersWereCreatedForTable)
	ctx.Step(`^(\d+) updates? (?:was|were) sent$`, tc.updatesWereSent)
	ctx.Step(`^the order has (\d+) x "([^"]*)"$`, tc.theOrderHas)
	ctx.Step(`^the order total is (\d+)$`, tc.theOrderTotalIs)
	ctx.Step(`^the order status is "([^"]*)"$`, tc.theOrderStatusIs)
	ctx.Step(`^the cancel reason is "([^"]*)"$`, tc.theCancelReasonIs)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart has (\d+) x "([^"]*)"$`, tc.theCartHas)
	ctx.Step(`^no order is open$`, tc.noOrderIsOpen)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
