// Package draft keeps cart snapshots in a local SQLite file so a cashier can
// park a cart and restore it later. Drafts never touch remote orders.
package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MikeMC777/cafe-pos/internal/cart"
)

// MaxDrafts is how many drafts are kept; saving more evicts the oldest.
const MaxDrafts = 50

var (
	ErrNotFound = errors.New("draft not found")
	ErrEmpty    = errors.New("cart is empty")
)

type Draft struct {
	ID        string      `json:"id"`
	Lines     []cart.Line `json:"items"`
	Total     int64       `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
}

type record struct {
	Seq       uint        `gorm:"primaryKey;autoIncrement"`
	UID       string      `gorm:"column:uid;size:36;uniqueIndex"`
	Lines     []cart.Line `gorm:"serializer:json"`
	Total     int64
	CreatedAt time.Time
}

func (record) TableName() string { return "drafts" }

func (r record) draft() Draft {
	return Draft{ID: r.UID, Lines: r.Lines, Total: r.Total, CreatedAt: r.CreatedAt}
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open opens (or creates) the draft database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open drafts %s: %w", path, err)
	}
	return New(db)
}

// New migrates the drafts table on db.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrate drafts: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save stores a snapshot of lines as the newest draft.
func (s *Store) Save(ctx context.Context, lines []cart.Line, total int64) (Draft, error) {
	if len(lines) == 0 {
		return Draft{}, ErrEmpty
	}
	r := record{
		UID:       uuid.NewString(),
		Lines:     append([]cart.Line(nil), lines...),
		Total:     total,
		CreatedAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		var seqs []uint
		if err := tx.Model(&record{}).Order("seq desc").Pluck("seq", &seqs).Error; err != nil {
			return err
		}
		if len(seqs) <= MaxDrafts {
			return nil
		}
		return tx.Where("seq IN ?", seqs[MaxDrafts:]).Delete(&record{}).Error
	})
	if err != nil {
		return Draft{}, fmt.Errorf("save draft: %w", err)
	}
	return r.draft(), nil
}

// List returns drafts newest first.
func (s *Store) List(ctx context.Context) ([]Draft, error) {
	var rows []record
	if err := s.db.WithContext(ctx).Order("seq desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	out := make([]Draft, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.draft())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (Draft, error) {
	var r record
	err := s.db.WithContext(ctx).Where("uid = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("get draft: %w", err)
	}
	return r.draft(), nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("uid = ?", id).Delete(&record{})
	if res.Error != nil {
		return fmt.Errorf("delete draft: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
