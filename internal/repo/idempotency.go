// Package repo: idempotency keys for safe POST retries on the items surface.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/tbourn/go-crud-backend/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the key.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record for key, or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "idempotency: get")
	}
	return &rec, nil
}

// CreateIdempotency records that key produced itemID, valid for ttl.
// Expired rows for the same key are replaced. A live duplicate yields
// ErrDuplicate.
func CreateIdempotency(ctx context.Context, db *gorm.DB, key string, itemID uint, ttl time.Duration, now time.Time) (*domain.Idempotency, error) {
	now = now.UTC()
	tx := db.WithContext(ctx)
	if err := tx.Where("key = ? AND expires_at <= ?", key, now).Delete(&domain.Idempotency{}).Error; err != nil {
		return nil, errors.Wrap(err, "idempotency: purge expired")
	}

	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		Key:       key,
		ItemID:    itemID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := tx.Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") ||
			strings.Contains(low, "duplicate key") {
			return nil, ErrDuplicate
		}
		return nil, errors.Wrap(err, "idempotency: insert")
	}
	return rec, nil
}
