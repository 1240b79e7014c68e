package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_CreateThenGet(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rec, err := CreateIdempotency(ctx, db, "k-1", 42, time.Hour, now)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.ItemID != 42 || !rec.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "k-1", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.ItemID != 42 {
		t.Fatalf("ItemID = %d, want 42", got.ItemID)
	}
}

func TestIdempotency_GetMissingOrBlank(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := GetIdempotency(ctx, db, "nope", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "   ", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("blank key: want ErrNotFound, got %v", err)
	}
}

func TestIdempotency_ExpiredIsInvisibleAndReplaced(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, err := CreateIdempotency(ctx, db, "k", 1, time.Minute, now); err != nil {
		t.Fatalf("first create: %v", err)
	}
	later := now.Add(2 * time.Minute)
	if _, err := GetIdempotency(ctx, db, "k", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record should be invisible, got %v", err)
	}

	rec, err := CreateIdempotency(ctx, db, "k", 2, time.Minute, later)
	if err != nil {
		t.Fatalf("re-create after expiry: %v", err)
	}
	if rec.ItemID != 2 {
		t.Fatalf("ItemID = %d, want 2", rec.ItemID)
	}
}

func TestIdempotency_LiveDuplicate(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := CreateIdempotency(ctx, db, "dup", 1, time.Hour, now); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "dup", 2, time.Hour, now); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
}

func TestIdempotency_StoreErrorIsWrapped(t *testing.T) {
	db := newTestDB(t, false) // no tables
	ctx := context.Background()

	_, err := GetIdempotency(ctx, db, "k", time.Now())
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("want store error, got %v", err)
	}
}
