package table

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("table not found")
	ErrNameTaken = errors.New("table name already exists")
)

type Table struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	IsAvailable bool      `json:"isAvailable"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateTableRequest payload of creation.
// swagger:model CreateTableRequest
type CreateTableRequest struct {
	Name string `json:"name" example:"Bàn 1"`
}

// AvailabilityRequest payload of an availability change.
// swagger:model AvailabilityRequest
type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" example:"true"`
}

// Backend is the table resource as seen by a POS session.
type Backend interface {
	ListTables(ctx context.Context) ([]Table, error)
	SetTableAvailability(ctx context.Context, id string, available bool) (*Table, error)
}

type Repository interface {
	Create(ctx context.Context, t *Table) error
	List(ctx context.Context) ([]Table, error)
	SetAvailability(ctx context.Context, id string, available bool) (*Table, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, t *Table) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
    INSERT INTO dining_tables (id, name, is_available, created_at, updated_at)
    VALUES ($1,$2,$3,NOW(),NOW())
    RETURNING updated_at
  `, t.ID, t.Name, t.IsAvailable).Scan(&t.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrNameTaken
	}
	return err
}

func (r *PGRepo) List(ctx context.Context) ([]Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT id, name, is_available, updated_at FROM dining_tables ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Table{}
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.ID, &t.Name, &t.IsAvailable, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetAvailability(ctx context.Context, id string, available bool) (*Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    UPDATE dining_tables SET is_available = $2, updated_at = NOW()
    WHERE id = $1
    RETURNING id, name, is_available, updated_at
  `, id, available)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	var t Table
	if err := rows.Scan(&t.ID, &t.Name, &t.IsAvailable, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
