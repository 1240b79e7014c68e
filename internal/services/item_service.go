// Package services – ItemService
//
// ItemService owns the relational surface: items with store-generated ids,
// listed newest first. Creation optionally honours an idempotency key so a
// retried POST returns the item the first attempt created.
package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-crud-backend/internal/domain"
	"github.com/tbourn/go-crud-backend/internal/repo"
)

// DefaultIdempotencyTTL applies when ItemService.IdempotencyTTL is zero.
const DefaultIdempotencyTTL = 24 * time.Hour

// ItemService coordinates item persistence.
type ItemService struct {
	DB             *gorm.DB
	IdempotencyTTL time.Duration
	Now            func() time.Time
}

func (s *ItemService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ItemService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return DefaultIdempotencyTTL
}

// Create persists in and returns the committed row. With a non-empty
// idemKey, a live record for that key short-circuits creation and the
// original item is returned with replayed set.
func (s *ItemService) Create(ctx context.Context, in ItemInput, idemKey string) (item *domain.Item, replayed bool, err error) {
	tr := otel.Tracer("services/ItemService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Bool("idempotent", idemKey != "")),
	)
	defer span.End()

	now := s.now()
	if idemKey == "" {
		it, err := repo.CreateItem(ctx, s.DB, in.Name, in.Data, now)
		if err != nil {
			span.RecordError(err)
			return nil, false, Store(err)
		}
		return it, false, nil
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := repo.GetIdempotency(ctx, tx, idemKey, now)
		switch {
		case err == nil:
			item, err = repo.GetItem(ctx, tx, rec.ItemID)
			replayed = true
			return err
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		item, err = repo.CreateItem(ctx, tx, in.Name, in.Data, now)
		if err != nil {
			return err
		}
		_, err = repo.CreateIdempotency(ctx, tx, idemKey, item.ID, s.ttl(), now)
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// Lost a race with a concurrent request using the same key.
		return s.replay(ctx, idemKey, now)
	}
	if err != nil {
		span.RecordError(err)
		return nil, false, Store(err)
	}
	span.SetAttributes(attribute.Bool("replayed", replayed))
	return item, replayed, nil
}

func (s *ItemService) replay(ctx context.Context, key string, now time.Time) (*domain.Item, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, key, now)
	if err != nil {
		return nil, false, Store(err)
	}
	it, err := repo.GetItem(ctx, s.DB, rec.ItemID)
	if err != nil {
		return nil, false, Store(err)
	}
	return it, true, nil
}

// List returns every item, newest first.
func (s *ItemService) List(ctx context.Context) ([]domain.Item, error) {
	tr := otel.Tracer("services/ItemService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	items, err := repo.ListItems(ctx, s.DB)
	if err != nil {
		span.RecordError(err)
		return nil, Store(err)
	}
	return items, nil
}

// Get returns the item with id, or a NotFound error.
func (s *ItemService) Get(ctx context.Context, id uint) (*domain.Item, error) {
	tr := otel.Tracer("services/ItemService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("item.id", int64(id))),
	)
	defer span.End()

	it, err := repo.GetItem(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NotFound("Item not found")
	}
	if err != nil {
		span.RecordError(err)
		return nil, Store(err)
	}
	return it, nil
}
