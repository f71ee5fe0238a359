package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/MikeMC777/cafe-pos/internal/cart"
	"github.com/MikeMC777/cafe-pos/internal/draft"
	"github.com/MikeMC777/cafe-pos/internal/money"
	"github.com/MikeMC777/cafe-pos/internal/pos"
	"github.com/MikeMC777/cafe-pos/internal/table"
)

const helpText = `commands:
  tables                    list tables
  table <id|name>           select a table
  menu [refresh]            list available items
  add <itemId>              add one unit
  inc|dec|rm <itemId>       change or remove a line
  set <itemId> <qty>        set a quantity
  clear                     empty the cart
  cart                      show the cart
  pay                       check out the open order
  cancel <reason>           cancel the open order
  qr                        payment QR link
  draft save|list           park the cart / list drafts
  draft restore|delete <id>
  quit`

type draftStore interface {
	Save(ctx context.Context, lines []cart.Line, total int64) (draft.Draft, error)
	List(ctx context.Context) ([]draft.Draft, error)
	Get(ctx context.Context, id string) (draft.Draft, error)
	Delete(ctx context.Context, id string) error
}

// console serializes writes from the prompt loop and from notices raised by
// background syncs.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	fmt.Fprintf(c.w, format, args...)
	c.mu.Unlock()
}

// Notify prints a notice as a toast line.
func (c *console) Notify(n pos.Notice) {
	mark := "·"
	switch n.Level {
	case pos.LevelWarn:
		mark = "!"
	case pos.LevelError:
		mark = "✗"
	}
	c.printf("%s %s\n", mark, n.Message)
}

// menuCache is the cache in front of the session's catalog.
type menuCache interface {
	Invalidate()
}

type terminal struct {
	s      *pos.Session
	drafts draftStore
	menu   menuCache
	out    *console
}

// run reads commands from in until quit, EOF or ctx is done.
func (t *terminal) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
		close(lines)
	}()

	t.out.printf("> ")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			if t.exec(ctx, line) {
				return nil
			}
			t.out.printf("> ")
		}
	}
}

// exec runs one command line. Session failures are already reported through
// the notifier, so their errors are not printed again.
func (t *terminal) exec(ctx context.Context, line string) bool {
	f := strings.Fields(line)
	if len(f) == 0 {
		return false
	}
	cmd, args := strings.ToLower(f[0]), f[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help", "?":
		t.out.printf("%s\n", helpText)
	case "tables":
		if t.s.RefreshTables(ctx) == nil {
			t.printTables()
		}
	case "table":
		if len(args) == 0 {
			t.out.printf("usage: table <id|name>\n")
			return false
		}
		tb, ok := t.findTable(ctx, strings.Join(args, " "))
		if !ok {
			t.out.printf("unknown table %q\n", strings.Join(args, " "))
			return false
		}
		if err := t.s.SelectTable(ctx, tb); err == nil {
			t.printCart()
		}
	case "menu":
		if len(args) == 1 && args[0] == "refresh" && t.menu != nil {
			t.menu.Invalidate()
		}
		if t.s.LoadCatalog(ctx) != nil {
			return false
		}
		for _, p := range t.s.Products() {
			t.out.printf("  %-36s %-24s %12s\n", p.ID, p.Name, money.Format(p.UnitPrice()))
		}
	case "add":
		if id, ok := t.arg(args, "add <itemId>"); ok {
			p, known := t.s.Product(id)
			if !known {
				t.out.printf("unknown item %q\n", id)
				return false
			}
			_ = t.s.AddProduct(p)
		}
	case "inc", "dec", "rm":
		if id, ok := t.arg(args, cmd+" <itemId>"); ok {
			switch cmd {
			case "inc":
				_ = t.s.Increment(id)
			case "dec":
				_ = t.s.Decrement(id)
			default:
				_ = t.s.Remove(id)
			}
		}
	case "set":
		if len(args) != 2 {
			t.out.printf("usage: set <itemId> <qty>\n")
			return false
		}
		// Anything that is not a positive number means 1.
		_ = t.s.SetQuantity(args[0], money.Quantity(args[1]))
	case "clear":
		_ = t.s.ClearCart()
	case "cart":
		t.printCart()
	case "pay":
		_ = t.s.Checkout(ctx)
	case "cancel":
		_ = t.s.Cancel(ctx, strings.Join(args, " "))
	case "qr":
		if u, err := t.s.PaymentQR(); err == nil {
			t.out.printf("%s\n", u)
		}
	case "draft":
		t.draft(ctx, args)
	default:
		t.out.printf("unknown command %q, try help\n", cmd)
	}
	return false
}

func (t *terminal) draft(ctx context.Context, args []string) {
	if len(args) == 0 {
		t.out.printf("usage: draft save|list|restore <id>|delete <id>\n")
		return
	}
	switch args[0] {
	case "save":
		d, err := t.drafts.Save(ctx, t.s.Cart(), t.s.Total())
		if errors.Is(err, draft.ErrEmpty) {
			t.out.printf("! The cart is empty, nothing to save.\n")
			return
		}
		if err != nil {
			t.out.printf("✗ could not save draft: %v\n", err)
			return
		}
		t.out.printf("· Draft %s saved.\n", d.ID)
	case "list":
		list, err := t.drafts.List(ctx)
		if err != nil {
			t.out.printf("✗ could not list drafts: %v\n", err)
			return
		}
		for _, d := range list {
			t.out.printf("  %s  %s  %d lines  %s\n",
				d.ID, d.CreatedAt.Local().Format("02/01 15:04"), len(d.Lines), money.Format(d.Total))
		}
	case "restore", "delete":
		if len(args) != 2 {
			t.out.printf("usage: draft %s <id>\n", args[0])
			return
		}
		if args[0] == "delete" {
			if err := t.drafts.Delete(ctx, args[1]); err != nil {
				t.out.printf("✗ %v\n", err)
			}
			return
		}
		d, err := t.drafts.Get(ctx, args[1])
		if err != nil {
			t.out.printf("✗ %v\n", err)
			return
		}
		t.s.RestoreDraft(d.Lines)
		t.printCart()
	default:
		t.out.printf("usage: draft save|list|restore <id>|delete <id>\n")
	}
}

func (t *terminal) arg(args []string, usage string) (string, bool) {
	if len(args) != 1 {
		t.out.printf("usage: %s\n", usage)
		return "", false
	}
	return args[0], true
}

func (t *terminal) findTable(ctx context.Context, key string) (table.Table, bool) {
	list := t.s.Tables()
	if len(list) == 0 {
		if t.s.RefreshTables(ctx) != nil {
			return table.Table{}, false
		}
		list = t.s.Tables()
	}
	for _, tb := range list {
		if tb.ID == key || strings.EqualFold(tb.Name, key) {
			return tb, true
		}
	}
	return table.Table{}, false
}

func (t *terminal) printTables() {
	cur, _ := t.s.CurrentTable()
	for _, tb := range t.s.Tables() {
		state := "free"
		if !tb.IsAvailable {
			state = "busy"
		}
		mark := " "
		if tb.ID == cur.ID {
			mark = "*"
		}
		t.out.printf("%s %-12s %-36s %s\n", mark, tb.Name, tb.ID, state)
	}
}

func (t *terminal) printCart() {
	tb, ok := t.s.CurrentTable()
	if !ok {
		t.out.printf("no table selected\n")
		return
	}
	header := tb.Name
	if id, ok := t.s.OrderID(); ok {
		header += " · order " + id
	}
	t.out.printf("%s\n", header)
	for _, l := range t.s.Cart() {
		t.out.printf("  %3d x %-24s %12s\n", l.Quantity, l.Name, money.Format(l.Subtotal()))
	}
	t.out.printf("  total %34s\n", money.Format(t.s.Total()))
}
