package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/cafe-pos/internal/money"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrUnknownTable = errors.New("table not found")
)

type Query struct {
	Status  Status
	TableID string
	Limit   int
	Offset  int
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetOpenByTable(ctx context.Context, tableID string) (*Order, error)
	List(ctx context.Context, q Query) ([]Order, error)
	ReplaceLines(ctx context.Context, id string, lines []Line, total int64) (*Order, error)
	SetStatus(ctx context.Context, id string, status Status, reason string) (*Order, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderColumns = `id, table_id, status, total::text, COALESCE(cancel_reason,''),
       created_at, updated_at, paid_at, cancelled_at`

// Create inserts the order and its lines and marks the table busy, in one tx.
// A second open order for the same table violates orders_one_open_per_table.
func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    INSERT INTO orders (id, table_id, status, total, created_at, updated_at)
    VALUES ($1,$2,$3,$4,NOW(),NOW())
  `, o.ID, o.TableID, o.Status, o.Total); err != nil {
		return mapPgError(err, ErrUnknownTable)
	}
	if err := insertLines(ctx, tx, o.ID, o.Lines); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE dining_tables SET is_available = FALSE, updated_at = NOW() WHERE id = $1
  `, o.TableID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	saved, err := r.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	*o = *saved
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if o.Lines, err = r.lines(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOpenByTable returns ErrNotFound when the table has no PENDING order.
func (r *PGRepo) GetOpenByTable(ctx context.Context, tableID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `
    SELECT `+orderColumns+`
    FROM orders WHERE table_id=$1 AND status='PENDING'
    ORDER BY created_at DESC LIMIT 1
  `, tableID))
	if err != nil {
		return nil, err
	}
	if o.Lines, err = r.lines(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
    SELECT `+orderColumns+`
    FROM orders
    WHERE ($1 = '' OR status = $1) AND ($2 = '' OR table_id::text = $2)
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, string(q.Status), q.TableID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Lines, err = r.lines(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReplaceLines swaps the line collection of a PENDING order.
func (r *PGRepo) ReplaceLines(ctx context.Context, id string, lines []Line, total int64) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, _, err := lockStatus(ctx, tx, id); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id=$1`, id); err != nil {
		return nil, err
	}
	if err := insertLines(ctx, tx, id, lines); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE orders SET total = $2, updated_at = NOW() WHERE id = $1
  `, id, total); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetStatus moves a PENDING order to PAID or CANCELLED and frees its table.
func (r *PGRepo) SetStatus(ctx context.Context, id string, status Status, reason string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, tableID, err := lockStatus(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	switch status {
	case StatusPaid:
		_, err = tx.Exec(ctx, `
      UPDATE orders SET status = $2, paid_at = NOW(), updated_at = NOW() WHERE id = $1
    `, id, status)
	case StatusCancelled:
		_, err = tx.Exec(ctx, `
      UPDATE orders SET status = $2, cancel_reason = $3, cancelled_at = NOW(), updated_at = NOW()
      WHERE id = $1
    `, id, status, reason)
	default:
		return nil, ErrInvalidStatus
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
    UPDATE dining_tables SET is_available = TRUE, updated_at = NOW() WHERE id = $1
  `, tableID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PGRepo) lines(ctx context.Context, orderID string) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
    SELECT id, product_id, name, quantity, price::text
    FROM order_items
    WHERE order_id = $1
    ORDER BY position
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var (
			l     Line
			price string
		)
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Name, &l.Quantity, &price); err != nil {
			return nil, err
		}
		l.UnitPrice = money.Amount(price)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func lockStatus(ctx context.Context, tx pgx.Tx, id string) (Status, string, error) {
	var (
		status  Status
		tableID string
	)
	err := tx.QueryRow(ctx, `SELECT status, table_id FROM orders WHERE id=$1 FOR UPDATE`, id).
		Scan(&status, &tableID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", mapPgError(err, ErrNotFound)
	}
	if status.Terminal() {
		return status, tableID, ErrTerminal
	}
	return status, tableID, nil
}

func insertLines(ctx context.Context, tx pgx.Tx, orderID string, lines []Line) error {
	for i, l := range lines {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO order_items (id, order_id, product_id, name, quantity, price, position)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, l.ID, orderID, l.ProductID, l.Name, l.Quantity, l.UnitPrice, i); err != nil {
			return err
		}
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		total string
	)
	err := row.Scan(&o.ID, &o.TableID, &o.Status, &total, &o.CancelReason,
		&o.CreatedAt, &o.UpdatedAt, &o.PaidAt, &o.CancelledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, mapPgError(err, ErrNotFound)
	}
	o.Total = money.Amount(total)
	return &o, nil
}

// mapPgError maps constraint violations to domain errors. A malformed id
// (invalid_text_representation) becomes malformed: nothing can match it.
func mapPgError(err error, malformed error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return ErrOpenExists
	case "23503":
		return ErrUnknownTable
	case "22P02":
		return malformed
	}
	return err
}
