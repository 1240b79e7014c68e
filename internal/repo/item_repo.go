// Package repo: item persistence.
//
// Items live in the relational store. The functions here are thin: they
// compose queries and return raw GORM errors, wrapped with a stack so the
// pipeline boundary can log where a store failure surfaced.
//
// Error semantics:
//   - Missing items yield ErrNotFound (alias of gorm.ErrRecordNotFound).
//   - Any other failure is returned wrapped with github.com/pkg/errors.
package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-crud-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so errors.Is works for both.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateItem inserts an item with a store-generated id and a server-set
// CreatedAt, then re-reads the row so the caller observes exactly what was
// committed.
func CreateItem(ctx context.Context, db *gorm.DB, name string, data datatypes.JSON, now time.Time) (*domain.Item, error) {
	it := &domain.Item{
		Name:      name,
		Data:      data,
		CreatedAt: now.UTC(),
	}
	if err := db.WithContext(ctx).Create(it).Error; err != nil {
		return nil, errors.Wrap(err, "items: insert")
	}
	return GetItem(ctx, db, it.ID)
}

// ListItems returns every item, most recent first. Ties fall back to id
// descending so the order is stable within a query.
func ListItems(ctx context.Context, db *gorm.DB) ([]domain.Item, error) {
	out := []domain.Item{}
	err := db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "items: list")
	}
	return out, nil
}

// GetItem fetches a single item by id, or ErrNotFound.
func GetItem(ctx context.Context, db *gorm.DB, id uint) (*domain.Item, error) {
	var it domain.Item
	err := db.WithContext(ctx).Where("id = ?", id).First(&it).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "items: get")
	}
	return &it, nil
}
